// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/caseflowhq/caseflow/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the service's correctness depends on
// (dedup keys, TTLs, unique tokens). Runs before the HTTP handler is built.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
