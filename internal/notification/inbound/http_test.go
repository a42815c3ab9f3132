package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpbite/internal/notification/usecase"
	"github.com/shandysiswandi/otpbite/internal/pkg/config"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
	"github.com/shandysiswandi/otpbite/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUC struct {
	mock.Mock
}

func (m *mockUC) SendEmail(ctx context.Context, in usecase.SendEmailInput) (*usecase.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.SendEmailOutput)
	return out, args.Error(1)
}

type idGen string

func (g idGen) Generate() string { return string(g) }

func TestHTTPEndpoint_SendEmail(t *testing.T) {
	const body = `{"to":"a@x.com","subject":"Hello","text":"Hi there"}`
	in := usecase.SendEmailInput{To: "a@x.com", Subject: "Hello", Text: "Hi there"}

	tests := []struct {
		name       string
		body       string
		key        string
		setup      func(m *mockUC)
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name: "sent",
			body: body,
			setup: func(m *mockUC) {
				m.On("SendEmail", mock.Anything, in).Return(&usecase.SendEmailOutput{MessageID: "<m1>"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"success": true, "messageId": "<m1>"},
		},
		{
			name: "idempotency key passed through",
			body: body,
			key:  "order-42",
			setup: func(m *mockUC) {
				withKey := in
				withKey.IdempotencyKey = "order-42"
				m.On("SendEmail", mock.Anything, withKey).Return(&usecase.SendEmailOutput{MessageID: "<m1>"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"success": true, "messageId": "<m1>"},
		},
		{
			name: "duplicate key",
			body: body,
			key:  "order-42",
			setup: func(m *mockUC) {
				m.On("SendEmail", mock.Anything, mock.Anything).
					Return(nil, goerror.NewBusiness("Request with this Idempotency-Key was already processed", goerror.CodeConflict))
			},
			wantStatus: http.StatusConflict,
			wantBody:   map[string]any{"success": false, "error": "Request with this Idempotency-Key was already processed"},
		},
		{
			name: "validation",
			body: `{"subject":"Hello","text":"Hi there"}`,
			setup: func(m *mockUC) {
				m.On("SendEmail", mock.Anything, mock.Anything).
					Return(nil, goerror.NewInvalidInput(validator.V10ValidationError{"To": "To is required"}))
			},
			wantStatus: http.StatusBadRequest,
			wantBody: map[string]any{
				"success": false,
				"error":   "To is required",
				"fields":  map[string]any{"To": "To is required"},
			},
		},
		{
			name: "provider failure",
			body: body,
			setup: func(m *mockUC) {
				m.On("SendEmail", mock.Anything, mock.Anything).
					Return(nil, goerror.NewDelivery(assert.AnError, "Failed to send email"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"success": false, "error": "Failed to send email"},
		},
		{
			name:       "unknown field",
			body:       `{"to":"a@x.com","cc":"b@x.com"}`,
			setup:      func(*mockUC) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "error": "Invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockUC{}
			tt.setup(m)

			cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
			require.NoError(t, err)
			r := router.NewRouter(router.Config{Config: cfg, UUID: idGen("cid")})
			RegisterHTTPEndpoint(r, m)

			req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.key != "" {
				req.Header.Set(headerIdempotencyKey, tt.key)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, got)
			m.AssertExpectations(t)
		})
	}
}
