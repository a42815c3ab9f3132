// Package otp generates numeric one-time codes.
//
// Codes are drawn uniformly from a fixed decimal range with crypto/rand, so
// every value in the range is equally likely and there is no modulo bias.
// Comparison helpers run in constant time.
package otp
