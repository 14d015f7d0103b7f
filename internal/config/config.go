package config

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultRoom is used when the launch query names no room.
const DefaultRoom = "public"

// ErrNotConfigured means no relay endpoint could be resolved.
var ErrNotConfigured = errors.New("relay endpoint not configured")

// LoadEnv reads a .env file from the working directory when one exists.
// A missing file is not an error; the process environment still applies.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not load .env", "err", err)
		}
		return
	}
	slog.Info("loaded environment from .env")
}

func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt returns the integer in key, or def when unset or malformed.
func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring malformed env value", "key", key, "value", v)
		return def
	}
	return n
}

// SplitList splits a comma separated env value, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ResolveRoom picks the room id from the "room" query parameter.
func ResolveRoom(q url.Values) string {
	if room := strings.TrimSpace(q.Get("room")); room != "" {
		return room
	}
	return DefaultRoom
}
