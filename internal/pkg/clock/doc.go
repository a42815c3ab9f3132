// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() directly. Expiry checks (OTP age, cache TTL in the memory store)
// read time through it, so tests can use a Manual clock and jump past a
// deadline without sleeping.
package clock
