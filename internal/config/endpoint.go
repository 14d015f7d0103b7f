package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/quasilyte/gdata"
)

const endpointKey = "relay-endpoint"

// Cache remembers the last relay endpoint between runs.
type Cache interface {
	Load() (string, error)
	Save(endpoint string) error
}

// GDataCache stores the endpoint in the per-user application data dir.
type GDataCache struct {
	m *gdata.Manager
}

func OpenGDataCache(appName string) (*GDataCache, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open endpoint cache: %w", err)
	}
	return &GDataCache{m: m}, nil
}

func (c *GDataCache) Load() (string, error) {
	data, err := c.m.LoadItem(endpointKey)
	if err != nil {
		return "", fmt.Errorf("load cached endpoint: %w", err)
	}
	return string(data), nil
}

func (c *GDataCache) Save(endpoint string) error {
	if err := c.m.SaveItem(endpointKey, []byte(endpoint)); err != nil {
		return fmt.Errorf("save endpoint: %w", err)
	}
	return nil
}

// ResolveEndpoint picks the relay endpoint: an explicit override wins over
// the global default, which wins over the cached value. A resolved
// override or default is written back to the cache. Cache failures are
// logged and never fatal.
func ResolveEndpoint(override, global string, cache Cache) (string, error) {
	override = strings.TrimSpace(override)
	global = strings.TrimSpace(global)

	endpoint := override
	if endpoint == "" {
		endpoint = global
	}
	if endpoint != "" {
		if cache != nil {
			if err := cache.Save(endpoint); err != nil {
				slog.Warn("could not cache relay endpoint", "err", err)
			}
		}
		return endpoint, nil
	}

	if cache != nil {
		cached, err := cache.Load()
		if err != nil {
			slog.Warn("could not read cached relay endpoint", "err", err)
		}
		if cached = strings.TrimSpace(cached); cached != "" {
			return cached, nil
		}
	}
	return "", ErrNotConfigured
}
