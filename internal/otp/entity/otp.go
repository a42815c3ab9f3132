package entity

import "time"

// Record is the live one-time code issued to a recipient.
type Record struct {
	Code      string
	CreatedAt time.Time
	Attempts  int64
}

// Expired reports whether the record outlived ttl at now. A record exactly
// ttl old is still valid.
func (r Record) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl
}

// Exhausted reports whether no verification attempts are left.
func (r Record) Exhausted(maxAttempts int64) bool {
	return r.Attempts >= maxAttempts
}

// OTPEmail is the data rendered into the code email.
type OTPEmail struct {
	To         string
	Code       string
	AppName    string
	Subject    string
	TTLMinutes int
}
