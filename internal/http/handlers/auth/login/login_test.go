package login

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

func (m *ServiceMock) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
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

func TestLoginHandler_ServeHTTP(t *testing.T) {
	testUser := &models.User{
		UID:      "uid-1",
		Username: "user1",
		Roles:    []string{"user"},
		Enabled:  true,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
		wantAuditLevel string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockToken:      "tok",
			mockUser:       testUser,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":    "tok",
				"username": "user1",
			},
			wantStatus:     "OK",
			wantAuditLevel: models.AuditInfo,
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
			requestBody:    Request{Username: "user1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Username: "user1", Password: "wrongpassword"},
			mockErr:        authservice.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
			wantAuditLevel: models.AuditWarning,
		},
		{
			name:           "disabled account",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        authservice.ErrAccountDisabled,
			wantStatusCode: http.StatusForbidden,
			wantError:      "account disabled",
			wantStatus:     "Error",
			wantAuditLevel: models.AuditWarning,
		},
		{
			name:           "internal error",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal server error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			auditMock := new(AuditorMock)
			handler := New(newNoopLogger(), serviceMock, auditMock)

			if req, ok := tt.requestBody.(Request); ok && tt.wantStatusCode != http.StatusUnprocessableEntity {
				serviceMock.On("Login", mock.Anything, req.Username, req.Password).
					Return(tt.mockToken, tt.mockUser, tt.mockErr).Once()
			}
			if tt.wantAuditLevel != "" {
				auditMock.On("Record", mock.Anything, mock.MatchedBy(func(entry models.AuditEntry) bool {
					return entry.Level == tt.wantAuditLevel && entry.EntityType == "user"
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

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
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

// Ответ на несуществующего пользователя и на неверный пароль должен
// совпадать байт в байт, кроме тел самих запросов.
func TestLoginHandler_UniformDenialBody(t *testing.T) {
	serviceMock := new(ServiceMock)
	auditMock := new(AuditorMock)
	handler := New(newNoopLogger(), serviceMock, auditMock)

	serviceMock.On("Login", mock.Anything, "ghost", "whatever").
		Return("", nil, authservice.ErrInvalidCredentials).Once()
	serviceMock.On("Login", mock.Anything, "real", "wrongpassword").
		Return("", nil, authservice.ErrInvalidCredentials).Once()
	auditMock.On("Record", mock.Anything, mock.Anything).Twice()

	doLogin := func(username, password string) (int, string) {
		body, err := json.Marshal(Request{Username: username, Password: password})
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	codeMissing, bodyMissing := doLogin("ghost", "whatever")
	codeWrong, bodyWrong := doLogin("real", "wrongpassword")

	assert.Equal(t, http.StatusUnauthorized, codeMissing)
	assert.Equal(t, codeMissing, codeWrong)
	assert.Equal(t, bodyMissing, bodyWrong)
}
