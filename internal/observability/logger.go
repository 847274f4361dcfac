package observability

import (
	"log/slog"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const serviceName = "emergency-dashboard"

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}
