// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, body limits); AppConfig is everything specific to this
// service: database, messaging provider, extraction model, storage, and
// signing defaults.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// WhatsApp gateway (Green API) configuration
	GreenAPIIDInstance string // numeric instance id, as a string
	GreenAPIToken      string
	WebhookSecret      string // shared secret carried as ?token= on the webhook URL

	// Phone normalization
	DefaultCountryCode string // country calling code substituted for a leading "0"

	// Extraction model configuration
	AnthropicAPIKey string
	AnthropicModel  string

	// Internal API auth (bearer tokens issued by the office application)
	AuthSecret string

	// AppOrigin is the office application's origin, the only origin allowed
	// on internal endpoints. Public signing endpoints allow any origin.
	AppOrigin string

	// PublicBaseURL is where the signing page is served; access tokens are
	// appended to it to build recipient links.
	PublicBaseURL string

	// File storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string
	StorageS3Region  string
	StorageS3Bucket  string
	StorageS3Prefix  string

	// PendingSelectionExpiry is how long a staged document waits for the
	// sender's organization choice.
	PendingSelectionExpiry time.Duration
}
