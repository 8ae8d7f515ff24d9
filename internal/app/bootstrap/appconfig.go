// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, CORS, and request size limits.
// AppConfig is where everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	TokenSecret string        // HMAC signing secret (must be strong in production)
	TokenTTL    time.Duration // How long issued tokens stay valid

	// Login throttling
	LoginRateLimit  int           // Attempts allowed per window per client address
	LoginRateWindow time.Duration // Window length

	// Stats snapshot refresh
	StatsInterval time.Duration // How often the background worker recomputes totals
}
