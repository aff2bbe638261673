package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	meta := MetadataFor(CodeValidation)
	if meta.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation, got %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("validation errors should expose details")
	}

	unknown := MetadataFor(Code("SOMETHING_ELSE"))
	if unknown.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to internal, got %d", unknown.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("db went away")
	wrapped := Wrap(CodeDependency, cause, "load order")

	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: load order" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsUnwrapsThroughFmt(t *testing.T) {
	base := New(CodeStateConflict, "order already delivered")
	chained := fmt.Errorf("transition: %w", base)

	typed := As(chained)
	if typed == nil {
		t.Fatal("expected typed error from chain")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "override reason required").WithDetails(map[string]string{"group": "fabric"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["group"] != "fabric" {
		t.Fatalf("unexpected details %v", details)
	}
}
