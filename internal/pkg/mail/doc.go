// Package mail defines the contract for sending email and its providers.
//
// Handlers and use cases work with the Mail interface and the Message payload.
// One provider is active at a time, chosen by NewFromDriver:
//
//   - smtp: gopkg.in/gomail.v2 over a dialer with STARTTLS.
//   - resend: the Resend HTTP API.
//   - mailgun: the Mailgun HTTP API.
//   - log: writes the message to slog and returns a generated id; meant for
//     local development only.
//
// Every provider returns a Receipt with the provider message id. A provider
// that answers without an id is treated as a failed delivery (ErrNoMessageID).
package mail
