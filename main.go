package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/otpbite/internal/app"
)

const shutdownTimeout = 10 * time.Second

// @title           Otpbite API
// @version         1.0
// @description     Otpbite sends transactional email and runs email one-time password login.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	application := app.New()
	runErr := application.Run()
	if runErr != nil {
		slog.Error("http server stopped unexpectedly", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	application.Stop(ctx)
	cancel()

	if runErr != nil {
		os.Exit(1)
	}
}
