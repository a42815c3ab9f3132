// Package config exposes typed read access to the service configuration.
//
// Values come from a YAML file, may be overridden by environment variables
// (the key with dots replaced by underscores, upper-cased: mail.resend.api_key
// becomes MAIL_RESEND_API_KEY) and fall back to registered defaults.
package config

import (
	"io"
	"time"
)

// Config defines the getters the application reads configuration through.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer and interprets it as seconds.
	GetSecond(key string) time.Duration
	// GetMillisecond reads an integer and interprets it as milliseconds.
	GetMillisecond(key string) time.Duration

	// GetArray reads a YAML list or a comma separated string. Blank items are dropped.
	GetArray(key string) []string
}
