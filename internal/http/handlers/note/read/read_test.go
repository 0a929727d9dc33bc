package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	noteservice "github.com/magabrotheeeer/secure-notes/internal/services/note"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, p authz.Principal, id int) (*models.Note, error) {
	args := m.Called(ctx, p, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

func withPrincipal(ctx context.Context, p authz.Principal) context.Context {
	ctx = context.WithValue(ctx, middlewarectx.User, p.Username)
	ctx = context.WithValue(ctx, middlewarectx.Roles, p.Roles)
	return context.WithValue(ctx, middlewarectx.UserUID, p.UID)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	owner := authz.Principal{UID: "owner-uid", Username: "owner", Roles: []string{"user"}}

	tests := []struct {
		name           string
		url            string
		principal      *authz.Principal
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "owner reads own note",
			url:       "/notes/123",
			principal: &owner,
			setupMock: func(m *MockService) {
				note := &models.Note{
					ID:       123,
					Title:    "shopping",
					Content:  "milk, eggs",
					OwnerUID: "owner-uid",
				}
				m.On("Read", mock.Anything, owner, 123).Return(note, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"shopping"`,
		},
		{
			name: "anonymous reads public note",
			url:  "/notes/7",
			setupMock: func(m *MockService) {
				note := &models.Note{ID: 7, Title: "announce", IsPublic: true}
				m.On("Read", mock.Anything, authz.Anonymous(), 7).Return(note, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"announce"`,
		},
		{
			name:           "invalid id in URL",
			url:            "/notes/abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid note id"}`,
		},
		{
			name:      "missing or foreign note",
			url:       "/notes/777",
			principal: &owner,
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, owner, 777).Return(nil, noteservice.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"note not found"}`,
		},
		{
			name:      "storage error",
			url:       "/notes/500",
			principal: &owner,
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, owner, 500).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/notes/"))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.principal != nil {
				ctx = withPrincipal(ctx, *tt.principal)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
