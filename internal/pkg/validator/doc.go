// Package validator provides a small validation abstraction for request
// structs.
//
// Business code depends on the Validator interface. V10Validator implements it
// with go-playground/validator v10, English messages and a few custom rules:
//
//   - otp: exactly six ASCII digits.
//   - trimmed_required: a string that is not blank after trimming spaces.
//
// Field names in messages come from the json tag so they match the request body.
package validator
