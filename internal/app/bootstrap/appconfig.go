// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to the portal. All
// values come from environment variables, config files, or flags,
// loaded in LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer credential configuration. TokenSecret signs the cookie
	// tokens; rotating it invalidates every outstanding credential at
	// once.
	TokenSecret string
	TokenTTL    time.Duration

	// Base URL of the portal, used when absolute links are needed.
	BaseURL string

	// Initial admin account, created on startup when the users
	// collection is empty. Both must be set for seeding to happen.
	AdminEmail    string
	AdminPassword string
}
