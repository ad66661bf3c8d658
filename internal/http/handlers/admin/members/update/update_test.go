package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UpdateStatus(ctx context.Context, id string, status models.MembershipStatus) (*models.Member, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func TestHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		id         string
		body       string
		setupMocks func(*ServiceMock)
		wantCode   int
	}{
		{
			name: "activate",
			id:   "m-1",
			body: `{"membership_status":"active"}`,
			setupMocks: func(s *ServiceMock) {
				s.On("UpdateStatus", mock.Anything, "m-1", models.StatusActive).
					Return(&models.Member{ID: "m-1", MembershipStatus: models.StatusActive}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{name: "missing id", body: `{"membership_status":"active"}`, setupMocks: func(*ServiceMock) {}, wantCode: http.StatusBadRequest},
		{name: "bad json", id: "m-1", body: `{`, setupMocks: func(*ServiceMock) {}, wantCode: http.StatusBadRequest},
		{name: "unknown status", id: "m-1", body: `{"membership_status":"frozen"}`, setupMocks: func(*ServiceMock) {}, wantCode: http.StatusUnprocessableEntity},
		{
			name: "not found",
			id:   "m-404",
			body: `{"membership_status":"expired"}`,
			setupMocks: func(s *ServiceMock) {
				s.On("UpdateStatus", mock.Anything, "m-404", models.StatusExpired).
					Return(nil, fmt.Errorf("storage.UpdateMemberStatus: %w", repository.ErrNotFound)).Once()
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "storage failure",
			id:   "m-1",
			body: `{"membership_status":"pending"}`,
			setupMocks: func(s *ServiceMock) {
				s.On("UpdateStatus", mock.Anything, "m-1", models.StatusPending).Return(nil, errors.New("db down")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/members/"+tt.id, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
