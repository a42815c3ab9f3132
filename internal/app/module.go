package app

import (
	"fmt"

	"github.com/shandysiswandi/otpbite/internal/notification"
	"github.com/shandysiswandi/otpbite/internal/otp"
)

func (a *App) initModules() error {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			Store:      a.store,
			Mail:       a.mail,
			Messaging:  a.messaging,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Generator:  a.otp,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			return fmt.Errorf("module otp: %w", err)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			DBConn:      a.dbConn,
			Mail:        a.mail,
			Idempotency: a.idemp,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			return fmt.Errorf("module notification: %w", err)
		}
	}

	return nil
}
