package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/uset82/My-Football-Game/internal/middleware"
)

// Relay is the relay server's settings, read from the environment.
type Relay struct {
	Port    string
	Origins []string
	Limits  middleware.Limits
}

// LoadRelay reads PORT, ALLOWED_ORIGINS and the per-address limits.
// Unset limits keep their middleware defaults.
func LoadRelay() Relay {
	def := middleware.DefaultLimits()
	return Relay{
		Port:    GetEnvDefault("PORT", "3000"),
		Origins: SplitList(os.Getenv("ALLOWED_ORIGINS")),
		Limits: middleware.Limits{
			ConnsPerIP: GetEnvInt("MAX_CONNS_PER_IP", def.ConnsPerIP),
			Messages:   GetEnvInt("MAX_MSGS_PER_WINDOW", def.Messages),
			Window:     GetEnvDuration("MSG_WINDOW", def.Window),
			PruneEvery: GetEnvDuration("LIMITER_PRUNE_EVERY", def.PruneEvery),
		},
	}
}

// GetEnvDuration parses key with time.ParseDuration, or returns def when
// unset, malformed or not positive.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("ignoring malformed env value", "key", key, "value", v)
		return def
	}
	return d
}
