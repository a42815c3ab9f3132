package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpbite/internal/pkg/config"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type sentResponse struct {
	MessageID string `json:"messageId"`
}

func (sentResponse) Message() string { return "OTP sent successfully" }

func newTestRouter(t *testing.T, yaml string, rl *RateLimiter) *Router {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-generated"), RateLimit: rl})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	r := newTestRouter(t, "app: {}", nil)
	r.POST("/api/request-otp", func(*Request) (any, error) {
		return sentResponse{MessageID: "m-1"}, nil
	})

	rec, body := do(t, r, http.MethodPost, "/api/request-otp", `{}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "messageId": "m-1", "message": "OTP sent successfully"}, body)
	assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_NonObjectPayload(t *testing.T) {
	r := newTestRouter(t, "app: {}", nil)
	r.GET("/list", func(*Request) (any, error) { return []string{"a"}, nil })
	r.GET("/empty", func(*Request) (any, error) { return nil, nil })

	_, body := do(t, r, http.MethodGet, "/list", "", nil)
	assert.Equal(t, map[string]any{"success": true, "data": []any{"a"}}, body)

	_, body = do(t, r, http.MethodGet, "/empty", "", nil)
	assert.Equal(t, map[string]any{"success": true}, body)
}

func TestRouter_Errors(t *testing.T) {
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody map[string]any
	}{
		{
			name:     "business",
			err:      goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidCode),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]any{"success": false, "error": "Invalid OTP"},
		},
		{
			name:     "rate limited",
			err:      goerror.NewBusiness("Too many requests. Please try again later.", goerror.CodeTooManyRequest),
			wantCode: http.StatusTooManyRequests,
			wantBody: map[string]any{"success": false, "error": "Too many requests. Please try again later."},
		},
		{
			name:     "validation",
			err:      goerror.NewInvalidInput(v.Validate(struct{ Email string `json:"email" validate:"required"` }{})),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]any{"success": false, "error": "email is required", "fields": map[string]any{"email": "email is required"}},
		},
		{
			name:     "delivery",
			err:      goerror.NewDelivery(errors.New("smtp: 421"), "Failed to send OTP"),
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]any{"success": false, "error": "Failed to send OTP"},
		},
		{
			name:     "plain error",
			err:      errors.New("leaky detail"),
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]any{"success": false, "error": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app: {}", nil)
			r.POST("/x", func(*Request) (any, error) { return nil, tt.err })

			rec, body := do(t, r, http.MethodPost, "/x", `{}`, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	r := newTestRouter(t, "app: {}", nil)
	r.POST("/api/verify-otp", func(*Request) (any, error) { return nil, nil })

	rec, body := do(t, r, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = do(t, r, http.MethodGet, "/api/verify-otp", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: ["/api/send-email"]
`, nil)
	r.POST("/api/send-email", func(*Request) (any, error) { return nil, nil })

	rec, body := do(t, r, http.MethodPost, "/api/send-email", `{}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service is under maintenance", body["error"])
	assert.Equal(t, "120", rec.Header().Get("Retry-After"))
}

func TestRouter_MaintenanceAll(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    all: true
`, nil)
	r.POST("/api/request-otp", func(*Request) (any, error) { return nil, nil })
	r.GET("/health", func(*Request) (any, error) { return nil, nil })

	rec, _ := do(t, r, http.MethodPost, "/api/request-otp", `{}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Recover(t *testing.T) {
	r := newTestRouter(t, "app: {}", nil)
	r.GET("/panic", func(*Request) (any, error) { panic("boom") })

	rec, body := do(t, r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestRouter_RateLimit(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, time.Minute)
	t.Cleanup(rl.Stop)

	r := newTestRouter(t, "app: {}", rl)
	r.GET("/ping", func(*Request) (any, error) { return nil, nil })

	for range 2 {
		rec, _ := do(t, r, http.MethodGet, "/ping", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := do(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, false, body["success"])

	// spoofed headers are ignored without app.trust_proxy_headers
	rec, _ = do(t, r, http.MethodGet, "/ping", "", map[string]string{"X-Forwarded-For": "10.9.9.9"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_CorrelationIDFromHeader(t *testing.T) {
	r := newTestRouter(t, "app: {}", nil)
	r.GET("/ping", func(*Request) (any, error) { return nil, nil })

	rec, _ := do(t, r, http.MethodGet, "/ping", "", map[string]string{HeaderRequestID: "req-7"})
	assert.Equal(t, "req-7", rec.Header().Get(HeaderCorrelationID))

	rec, _ = do(t, r, http.MethodGet, "/ping", "", map[string]string{HeaderCorrelationID: "bad\x01id"})
	assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "192.0.2.1", clientIP(req, false))
	assert.Equal(t, "203.0.113.7", clientIP(req, true))

	req.Header.Set("X-Real-IP", "198.51.100.3")
	assert.Equal(t, "198.51.100.3", clientIP(req, true))
}

func TestRequest_DecodeBody(t *testing.T) {
	type in struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "ok", body: `{"email":"a@x.com"}`},
		{name: "unknown field", body: `{"email":"a@x.com","x":1}`, wantErr: true},
		{name: "trailing data", body: `{"email":"a@x.com"}{}`, wantErr: true},
		{name: "not json", body: `email=a`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "too large", body: `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}
			var dst in
			err := req.DecodeBody(&dst)
			if tt.wantErr {
				var gerr *goerror.Error
				require.True(t, errors.As(err, &gerr))
				assert.Equal(t, goerror.CodeInvalidFormat, gerr.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", dst.Email)
		})
	}
}

func TestMasker(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`instrument: {log_mask_fields: "password"}`))
	require.NoError(t, err)
	m := newMasker(cfg)

	got := m.body([]byte(`{"email":"a@x.com","otp":"123456","nested":[{"password":"p"}]}`), false)
	assert.Equal(t, map[string]any{
		"email":  "a@x.com",
		"otp":    "***",
		"nested": []any{map[string]any{"password": "***"}},
	}, got)

	h := http.Header{}
	h.Set("Authorization", "Bearer t")
	h.Set("Accept", "application/json")
	assert.Equal(t, map[string]string{"Authorization": "***", "Accept": "application/json"}, m.headers(h))

	assert.Equal(t, map[string]any{"body": "plain", "truncated": true}, m.body([]byte("plain"), true))
	assert.Nil(t, m.body(nil, false))
}
