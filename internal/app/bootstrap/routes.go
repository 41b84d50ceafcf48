// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	healthfeature "github.com/caseflowhq/caseflow/internal/app/features/health"
	signingfeature "github.com/caseflowhq/caseflow/internal/app/features/signing"
	whatsappfeature "github.com/caseflowhq/caseflow/internal/app/features/whatsapp"
	"github.com/caseflowhq/caseflow/internal/app/storage"
	pendingstore "github.com/caseflowhq/caseflow/internal/app/store/pendingselect"
	scandocstore "github.com/caseflowhq/caseflow/internal/app/store/scandocs"
	signingstore "github.com/caseflowhq/caseflow/internal/app/store/signing"
	"github.com/caseflowhq/caseflow/internal/app/store/signingaudit"
	"github.com/caseflowhq/caseflow/internal/app/system/auth"
	"github.com/caseflowhq/caseflow/internal/app/system/extract"
	"github.com/caseflowhq/caseflow/internal/app/system/greenapi"
	"github.com/caseflowhq/caseflow/internal/app/system/identity"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Three surfaces with three CORS postures:
//   - /webhooks/whatsapp — server-to-server from the messaging provider, no
//     CORS involvement.
//   - /internal/* — the office application only; origin locked to app_origin
//     and bearer-token authenticated.
//   - /public/signing/* — recipients open signing links from anywhere, so
//     any origin is allowed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	store, err := newStorage(appCfg)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	waClient := greenapi.NewClient(appCfg.GreenAPIIDInstance, appCfg.GreenAPIToken, logger)
	extractor := extract.NewClient(appCfg.AnthropicAPIKey, appCfg.AnthropicModel, logger)
	verifier := auth.NewVerifier(appCfg.AuthSecret)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// WhatsApp inbound webhook (provider-to-server, shared-secret guarded)
	waHandler := &whatsappfeature.Handler{
		WA:            waClient,
		Resolver:      identity.NewResolver(deps.MongoDatabase, appCfg.DefaultCountryCode, logger),
		Pending:       pendingstore.New(deps.MongoDatabase, appCfg.PendingSelectionExpiry),
		Docs:          scandocstore.New(deps.MongoDatabase),
		Storage:       store,
		Extractor:     extractor,
		WebhookSecret: appCfg.WebhookSecret,
		Log:           logger,
	}
	r.Mount("/webhooks/whatsapp", whatsappfeature.Routes(waHandler))

	// Signing surfaces
	signingHandler := &signingfeature.Handler{
		Requests:      signingstore.New(deps.MongoDatabase),
		Audit:         signingaudit.New(deps.MongoDatabase),
		Storage:       store,
		WA:            waClient,
		PublicBaseURL: appCfg.PublicBaseURL,
		Log:           logger,
	}

	internalCORS := cors.Handler(cors.Options{
		AllowedOrigins:   []string{appCfg.AppOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	publicCORS := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})

	r.Mount("/internal/signing-requests",
		internalCORS(signingfeature.InternalRoutes(signingHandler, verifier)))
	r.Mount("/public/signing",
		publicCORS(signingfeature.PublicRoutes(signingHandler)))

	// Local storage serves its blobs directly; S3 presigns instead.
	if appCfg.StorageType == "local" {
		r.Handle("/files/*", fileserver.Handler("/files", appCfg.StorageLocalPath))
	}

	return r, nil
}

// newStorage builds the configured blob backend.
func newStorage(appCfg AppConfig) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local":
		return storage.NewLocal(appCfg.StorageLocalPath, appCfg.PublicBaseURL)
	case "s3":
		return storage.NewS3(context.Background(), appCfg.StorageS3Region, appCfg.StorageS3Bucket, appCfg.StorageS3Prefix)
	}
	return nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
}
