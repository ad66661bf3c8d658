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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/services/membership"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Apply(ctx context.Context, req models.DummyMemberApplication) (*membership.Application, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Application), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestHandler_ServeHTTP(t *testing.T) {
	valid := models.DummyMemberApplication{
		FullName:       "Kim Ji-won",
		Email:          "kim@x.com",
		Password:       "secret123",
		MembershipType: "student",
	}

	tests := []struct {
		name       string
		body       string
		setupMocks func(*ServiceMock)
		wantCode   int
		wantError  string
		wantData   map[string]any
	}{
		{
			name: "created",
			setupMocks: func(s *ServiceMock) {
				s.On("Apply", mock.Anything, valid).Return(&membership.Application{
					UserID: "u-1", MemberID: "m-1", PaymentLink: "https://paypal.example/student",
				}, nil).Once()
			},
			wantCode: http.StatusCreated,
			wantData: map[string]any{"user_id": "u-1", "member_id": "m-1", "paypal_url": "https://paypal.example/student"},
		},
		{
			name:       "invalid json",
			body:       "{",
			setupMocks: func(*ServiceMock) {},
			wantCode:   http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "short password",
			body:       `{"full_name":"Kim","email":"kim@x.com","password":"123","membership_type":"student"}`,
			setupMocks: func(*ServiceMock) {},
			wantCode:   http.StatusUnprocessableEntity,
			wantError:  "field Password must be at least 6 characters",
		},
		{
			name:       "unknown membership type",
			body:       `{"full_name":"Kim","email":"kim@x.com","password":"secret123","membership_type":"gold"}`,
			setupMocks: func(*ServiceMock) {},
			wantCode:   http.StatusUnprocessableEntity,
			wantError:  "field MembershipType must be one of: professional student",
		},
		{
			name: "account exists",
			setupMocks: func(s *ServiceMock) {
				s.On("Apply", mock.Anything, valid).Return(nil, membership.ErrAccountExists).Once()
			},
			wantCode:  http.StatusConflict,
			wantError: membership.ErrAccountExists.Error(),
		},
		{
			name: "storage failure",
			setupMocks: func(s *ServiceMock) {
				s.On("Apply", mock.Anything, valid).Return(nil, errors.New("db down")).Once()
			},
			wantCode:  http.StatusInternalServerError,
			wantError: "could not create membership application",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			body := []byte(tt.body)
			if tt.body == "" {
				var err error
				body, err = json.Marshal(valid)
				require.NoError(t, err)
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).
				ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/wahs/register", bytes.NewReader(body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}
			if tt.wantData != nil {
				assert.Equal(t, tt.wantData, got["data"])
			}
			svc.AssertExpectations(t)
		})
	}
}
