package utils

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/gin-gonic/gin"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{errors.ErrCodeValidation, http.StatusBadRequest},
		{errors.ErrCodeSelfReference, http.StatusBadRequest},
		{errors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{errors.ErrCodeForbidden, http.StatusForbidden},
		{errors.ErrCodeBlocked, http.StatusForbidden},
		{errors.ErrCodeNotEntitled, http.StatusForbidden},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeAlreadyExists, http.StatusConflict},
		{errors.ErrCodePrecondition, http.StatusPreconditionFailed},
		{errors.ErrCodeInvalidTransition, http.StatusUnprocessableEntity},
		{errors.ErrCodeQuotaExceeded, http.StatusTooManyRequests},
		{errors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{errors.ErrCodeInternalError, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.code); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "business error keeps its message",
			err:         errors.New(errors.ErrCodeBlocked, "a block exists between these users"),
			wantStatus:  http.StatusForbidden,
			wantCode:    errors.ErrCodeBlocked,
			wantMessage: "a block exists between these users",
		},
		{
			name:        "internal error is masked",
			err:         errors.Wrap(stderrors.New("pq: relation does not exist"), errors.ErrCodeInternalError, "failed to list"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    errors.ErrCodeInternalError,
			wantMessage: "internal server error",
		},
		{
			name:        "plain error is internal",
			err:         stderrors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    errors.ErrCodeInternalError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Error(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantCode || resp.Message != tt.wantMessage {
				t.Errorf("got %s %q, want %s %q", resp.Code, resp.Message, tt.wantCode, tt.wantMessage)
			}
		})
	}
}
