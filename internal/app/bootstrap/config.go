// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CaseFlow.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, webhook_secret, etc.
//   - Environment variables: CASEFLOW_MONGO_URI, CASEFLOW_WEBHOOK_SECRET, etc.
//   - Command-line flags: --mongo_uri, --webhook_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "caseflow", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// WhatsApp gateway (Green API)
	{Name: "green_api_id_instance", Default: "", Desc: "Green API instance id"},
	{Name: "green_api_token", Default: "", Desc: "Green API instance token"},
	{Name: "webhook_secret", Default: "", Desc: "Shared secret expected on webhook calls (?token=)"},

	// Phone normalization
	{Name: "default_country_code", Default: "972", Desc: "Country calling code substituted for a leading 0"},

	// Extraction model
	{Name: "anthropic_api_key", Default: "", Desc: "Anthropic API key for document extraction"},
	{Name: "anthropic_model", Default: "", Desc: "Extraction model override (blank uses the adapter default)"},

	// Internal API auth
	{Name: "auth_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HS256 secret for internal bearer tokens (must be strong in production)"},

	// Origins and links
	{Name: "app_origin", Default: "http://localhost:3000", Desc: "Office application origin allowed on internal endpoints"},
	{Name: "public_base_url", Default: "http://localhost:3000", Desc: "Base URL of the public signing page"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/documents", Desc: "Local storage path for document blobs"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "caseflow/", Desc: "S3 key prefix"},

	// Conversation state
	{Name: "pending_selection_expiry", Default: "30m", Desc: "How long a staged document waits for the org choice (e.g., 30m, 1h)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CASEFLOW_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CASEFLOW", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		GreenAPIIDInstance: appValues.String("green_api_id_instance"),
		GreenAPIToken:      appValues.String("green_api_token"),
		WebhookSecret:      appValues.String("webhook_secret"),

		DefaultCountryCode: appValues.String("default_country_code"),

		AnthropicAPIKey: appValues.String("anthropic_api_key"),
		AnthropicModel:  appValues.String("anthropic_model"),

		AuthSecret: appValues.String("auth_secret"),

		AppOrigin:     appValues.String("app_origin"),
		PublicBaseURL: appValues.String("public_base_url"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageS3Region:  appValues.String("storage_s3_region"),
		StorageS3Bucket:  appValues.String("storage_s3_bucket"),
		StorageS3Prefix:  appValues.String("storage_s3_prefix"),

		PendingSelectionExpiry: appValues.Duration("pending_selection_expiry", 30*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Configuration errors must fail startup loudly, never surface later as
// per-request failures.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.GreenAPIIDInstance == "" || appCfg.GreenAPIToken == "" {
		return fmt.Errorf("green_api_id_instance and green_api_token are required")
	}
	if appCfg.WebhookSecret == "" {
		return fmt.Errorf("webhook_secret is required")
	}
	if appCfg.AnthropicAPIKey == "" {
		return fmt.Errorf("anthropic_api_key is required")
	}

	if appCfg.StorageType == "s3" && (appCfg.StorageS3Region == "" || appCfg.StorageS3Bucket == "") {
		return fmt.Errorf("s3 storage requires storage_s3_region and storage_s3_bucket")
	}
	if appCfg.StorageType != "local" && appCfg.StorageType != "s3" {
		return fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}

	if coreCfg.Env == "prod" && appCfg.AuthSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("auth_secret must be changed from the development default in production")
	}

	return nil
}
