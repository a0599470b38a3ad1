package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", domain.ErrAccountNotFound, http.StatusNotFound, "not_found", domain.ErrAccountNotFound.Message},
		{"conflict", domain.ErrAccountExists, http.StatusConflict, "conflict", domain.ErrAccountExists.Message},
		{"wrapped validation", fmt.Errorf("%w: unknown role", domain.ErrInvalidInput), http.StatusBadRequest, "validation_failed", "invalid input"},
		{"unauthorized", domain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized", domain.ErrInvalidCredentials.Message},
		{"already active", domain.ErrAlreadyActive, http.StatusConflict, "already_active", domain.ErrAlreadyActive.Message},
		{"code expired", domain.ErrCodeExpired, http.StatusGone, "code_expired", domain.ErrCodeExpired.Message},
		{"code mismatch", domain.ErrCodeMismatch, http.StatusBadRequest, "code_mismatch", domain.ErrCodeMismatch.Message},
		{"old password", domain.ErrOldPasswordIncorrect, http.StatusBadRequest, "old_password_incorrect", domain.ErrOldPasswordIncorrect.Message},
		{"delivery", fmt.Errorf("send: %w: %w", domain.ErrDeliveryFailed, errors.New("smtp 421")), http.StatusBadGateway, "delivery_failed", domain.ErrDeliveryFailed.Message},
		{"storage", fmt.Errorf("find: %w: %w", domain.ErrStorageUnavailable, errors.New("connection refused 10.0.0.1")), http.StatusInternalServerError, "internal", "internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal", "internal server error"},
		{"echo", echo.NewHTTPError(http.StatusForbidden, "forbidden"), http.StatusForbidden, "forbidden", "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.NoContent(http.StatusNoContent)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrAccountNotFound, c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected committed status to be kept, got %d", rec.Code)
	}
}
