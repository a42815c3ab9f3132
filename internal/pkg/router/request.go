package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
)

const maxBodyBytes = 64 << 10

// Request is the inbound view handlers receive.
type Request struct {
	*http.Request
}

// GetHeader returns the header value with surrounding spaces removed.
func (r *Request) GetHeader(key string) string {
	return strings.TrimSpace(r.Header.Get(key))
}

// DecodeBody reads exactly one JSON object into dst. Unknown fields, trailing
// data and bodies over maxBodyBytes are all reported as CodeInvalidFormat.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	body := &io.LimitedReader{R: r.Body, N: maxBodyBytes + 1}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if body.N <= 0 {
		return goerror.NewInvalidFormat("Request body too large")
	}
	if err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
