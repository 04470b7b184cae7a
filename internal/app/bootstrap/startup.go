// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/corefield/opsdesk/internal/app/store/users"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time initialization after DB connections and schema
// setup are complete, but before the HTTP handler is built. OpsDesk uses
// it to seed the initial admin account so a fresh deployment can log in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return seedAdmin(ctx, appCfg, deps, logger)
}

// seedAdmin creates the configured admin account when the users
// collection is empty. It never overwrites existing accounts, so
// redeploys are safe.
func seedAdmin(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return nil
	}

	users := userstore.New(deps.MongoDatabase)
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := users.Create(ctx, models.User{
		FullName:     "Administrator",
		Email:        appCfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         "admin",
		Permissions:  []string{authz.Override},
		Status:       "active",
	})
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	logger.Info("seeded initial admin account",
		zap.String("email", created.Email),
		zap.String("id", created.ID.Hex()))
	return nil
}
