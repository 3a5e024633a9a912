package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	healthuc "github.com/draftzero/draftzero/internal/usecase/health"
)

func newTestServer() *Server {
	return NewServer(nil, nil, nil, nil, nil, zap.NewNop())
}

func TestHandleDomainError_StatusMapping(t *testing.T) {
	s := newTestServer()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"document not found", domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound},
		{"version not found", domain.ErrVersionNotFound, http.StatusNotFound, codeNotFound},
		{"note not found", domain.ErrNoteNotFound, http.StatusNotFound, codeNotFound},
		{"session not found", domain.ErrSessionNotFound, http.StatusNotFound, codeNotFound},
		{"already exists", domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists},
		{"access denied", domain.ErrAccessDenied, http.StatusForbidden, codeAccessDenied},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed},
		{"quota exceeded", domain.ErrAIQuotaExceeded, http.StatusPaymentRequired, codeAIQuotaExceeded},
		{"provider error", domain.ErrAIProviderError, http.StatusBadGateway, codeAIProviderError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.handleDomainError(rr, fmt.Errorf("wrapped: %w", tc.err))

			if rr.Code != tc.status {
				t.Errorf("status: got %d, want %d", rr.Code, tc.status)
			}
			var resp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tc.code {
				t.Errorf("code: got %s, want %s", resp.Code, tc.code)
			}
		})
	}
}

func TestHandleDomainError_HidesInternalDetail(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	s.handleDomainError(rr, errors.New("dial tcp 10.0.0.1:6379: connection refused"))

	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "internal error" {
		t.Errorf("message leaked internals: %q", resp.Message)
	}
}

func TestHandleDomainError_RevisionConflict(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	err := fmt.Errorf("save snapshot: %w", &domain.RevisionConflictError{CurrentRevision: 7})
	s.handleDomainError(rr, err)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if etag := rr.Header().Get("ETag"); etag != `"7"` {
		t.Errorf("ETag: got %s, want %q", etag, `"7"`)
	}

	var resp struct {
		Code            string `json:"code"`
		CurrentRevision int    `json:"current_revision"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != codeRevisionConflict {
		t.Errorf("code: got %s, want %s", resp.Code, codeRevisionConflict)
	}
	if resp.CurrentRevision != 7 {
		t.Errorf("current_revision: got %d, want 7", resp.CurrentRevision)
	}
}

func TestMissingUser_401(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest("POST", "/api/v1/documents", http.NoBody)
	rr := httptest.NewRecorder()
	s.createDocument(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

type stubPinger struct{ err error }

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

func TestGetHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := NewServer(nil, nil, nil, nil, healthuc.New(&stubPinger{}, nil), zap.NewNop())

		req := httptest.NewRequest("GET", "/health", http.NoBody)
		rr := httptest.NewRecorder()
		s.getHealth(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
		}
		var resp healthResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "ok" || resp.Checks["database"] != "ok" {
			t.Errorf("unexpected report: %+v", resp)
		}
	})

	t.Run("database down", func(t *testing.T) {
		s := NewServer(nil, nil, nil, nil,
			healthuc.New(&stubPinger{err: errors.New("down")}, nil), zap.NewNop())

		req := httptest.NewRequest("GET", "/health", http.NoBody)
		rr := httptest.NewRecorder()
		s.getHealth(rr, req)

		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
		}
	})
}
