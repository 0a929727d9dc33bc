package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	authservice "github.com/magabrotheeeer/secure-notes/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, email, username, password string) (string, error) {
	args := m.Called(ctx, email, username, password)
	return args.String(0), args.Error(1)
}

type AuditorMock struct {
	mock.Mock
}

func (m *AuditorMock) Record(ctx context.Context, entry models.AuditEntry) {
	m.Called(ctx, entry)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockUID        string
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
		wantAudit      bool
	}{
		{
			name:           "valid registration",
			requestBody:    Request{Username: "newuser", Email: "new@example.com", Password: "password123"},
			mockUID:        "uid-new",
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"uid":      "uid-new",
				"username": "newuser",
			},
			wantStatus: "OK",
			wantAudit:  true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "newuser", Email: "new@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - short password",
			requestBody:    Request{Username: "newuser", Email: "new@example.com", Password: "short"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
			wantStatus:     "Error",
		},
		{
			name:           "username taken",
			requestBody:    Request{Username: "taken", Email: "new@example.com", Password: "password123"},
			mockErr:        authservice.ErrUsernameTaken,
			wantStatusCode: http.StatusConflict,
			wantError:      "username already taken",
			wantStatus:     "Error",
		},
		{
			name:           "email taken",
			requestBody:    Request{Username: "newuser", Email: "taken@example.com", Password: "password123"},
			mockErr:        authservice.ErrEmailTaken,
			wantStatusCode: http.StatusConflict,
			wantError:      "email already registered",
			wantStatus:     "Error",
		},
		{
			name:           "internal error",
			requestBody:    Request{Username: "newuser", Email: "new@example.com", Password: "password123"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to register user",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			auditMock := new(AuditorMock)
			handler := New(newNoopLogger(), serviceMock, auditMock)

			if req, ok := tt.requestBody.(Request); ok && tt.wantStatusCode != http.StatusUnprocessableEntity {
				serviceMock.On("Register", mock.Anything, req.Email, req.Username, req.Password).
					Return(tt.mockUID, tt.mockErr).Once()
			}
			if tt.wantAudit {
				auditMock.On("Record", mock.Anything, mock.MatchedBy(func(entry models.AuditEntry) bool {
					return entry.Action == "register" && entry.EntityType == "user"
				})).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			serviceMock.AssertExpectations(t)
			auditMock.AssertExpectations(t)
		})
	}
}
