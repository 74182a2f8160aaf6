package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindAndHTTPStatus(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", ErrNotFound)
	if Kind(wrapped) != "not_found" {
		t.Fatalf("expected kind not_found, got %s", Kind(wrapped))
	}
	if HTTPStatus(wrapped) != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", HTTPStatus(wrapped))
	}

	if HTTPStatus(fmt.Errorf("pay: %w", ErrDuplicateTransaction)) != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate transaction")
	}
	if HTTPStatus(fmt.Errorf("pay: %w", ErrAmountMismatch)) != http.StatusBadRequest {
		t.Fatalf("expected 400 for amount mismatch")
	}
	if HTTPStatus(fmt.Errorf("pay: %w", ErrGateway)) != http.StatusBadGateway {
		t.Fatalf("expected 502 for gateway error")
	}

	if Kind(errors.New("boom")) != "internal" {
		t.Fatalf("expected unknown errors to classify as internal")
	}
	if HTTPStatus(nil) != http.StatusOK {
		t.Fatalf("expected 200 for nil error")
	}
}
