package scm

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAPIError(t *testing.T) {
	t.Run("stores all fields", func(t *testing.T) {
		wrapped := fmt.Errorf("upstream failure")
		e := NewAPIError(404, "not found", wrapped)
		if e.StatusCode != 404 {
			t.Errorf("StatusCode = %d, want 404", e.StatusCode)
		}
		if e.Message != "not found" {
			t.Errorf("Message = %q, want %q", e.Message, "not found")
		}
		if e.Err != wrapped {
			t.Errorf("Err = %v, want %v", e.Err, wrapped)
		}
	})

	t.Run("nil inner error is accepted", func(t *testing.T) {
		e := NewAPIError(500, "internal error", nil)
		if e.Err != nil {
			t.Errorf("Err = %v, want nil", e.Err)
		}
	})
}

func TestAPIErrorError(t *testing.T) {
	t.Run("with inner error includes both messages", func(t *testing.T) {
		e := NewAPIError(503, "service unavailable", fmt.Errorf("connection refused"))
		if msg := e.Error(); msg != "service unavailable: connection refused" {
			t.Errorf("Error() = %q, want %q", msg, "service unavailable: connection refused")
		}
	})

	t.Run("without inner error returns message only", func(t *testing.T) {
		e := NewAPIError(400, "bad request", nil)
		if e.Error() != "bad request" {
			t.Errorf("Error() = %q, want %q", e.Error(), "bad request")
		}
	})
}

func TestAPIErrorIsInternal(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		if !errors.Is(NewAPIError(500, "boom", nil), ErrInternal) {
			t.Error("errors.Is(apiErr, ErrInternal) = false, want true")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("get repository: %w", WrapRemoteError(0, "dial failed", errors.New("refused")))
		if !errors.Is(err, ErrInternal) {
			t.Error("errors.Is(wrapped apiErr, ErrInternal) = false, want true")
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatal("errors.As(*APIError) = false")
		}
		if apiErr.StatusCode != 0 {
			t.Errorf("StatusCode = %d, want 0", apiErr.StatusCode)
		}
	})

	t.Run("inner sentinel still matches", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		e := NewAPIError(403, "forbidden", sentinel)
		if !errors.Is(e, sentinel) {
			t.Error("errors.Is(apiErr, sentinel) = false, want true")
		}
	})

	t.Run("not found is not internal", func(t *testing.T) {
		if errors.Is(ErrNotFound, ErrInternal) {
			t.Error("ErrNotFound must not match ErrInternal")
		}
	})
}

func TestErrorSentinelsAreDistinct(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrInvalidIdentifier", ErrInvalidIdentifier},
		{"ErrInvalidStateFilter", ErrInvalidStateFilter},
		{"ErrNotFound", ErrNotFound},
		{"ErrInternal", ErrInternal},
		{"ErrInvalidProviderType", ErrInvalidProviderType},
		{"ErrProviderNotSupported", ErrProviderNotSupported},
	}

	seen := make(map[error]string)
	for _, s := range sentinels {
		if prev, ok := seen[s.err]; ok {
			t.Errorf("duplicate sentinel: %s and %s share the same error value", s.name, prev)
		}
		seen[s.err] = s.name
	}
}
