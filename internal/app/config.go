package app

import (
	"os"

	"github.com/shandysiswandi/otpbite/internal/pkg/config"
)

// defaults apply when neither the config file nor the environment sets a key.
var defaults = map[string]any{
	"app.server.http.address":                     ":8080",
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.read_timeout_seconds":        15,
	"app.server.http.write_timeout_seconds":       30,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.max_goroutine":                    100,
	"app.server.goroutine_timeout_seconds":        10,
	"app.node_id":                                 1,

	"instrument.service_name": "otpbite",
	"instrument.log_level":    "info",

	"cache.driver":     "redis",
	"redis.url":        "redis://localhost:6379/0",
	"mail.driver":      "log",
	"mail.from":        "no-reply@otpbite.local",
	"messaging.driver": "noop",

	"modules.otp.enabled":          true,
	"modules.notification.enabled": true,
}

func loadConfig() (config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	return config.NewViper(path, config.WithDefaults(defaults))
}
