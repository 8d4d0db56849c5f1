package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Resource: "text", ID: "urn:cts:greekLit:tlg0012.tlg001.perseus-grc2"}
	if !strings.Contains(err.Error(), "text not found") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Error("expected NotFoundError to match ErrNotFound")
	}
}

func TestNotFoundError_NoID(t *testing.T) {
	err := &NotFoundError{Resource: "segment"}
	if err.Error() != "segment not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestNotFoundError_WrappedError(t *testing.T) {
	inner := stderrors.New("row missing")
	err := &NotFoundError{Resource: "text", Err: inner}
	if !stderrors.Is(err, inner) {
		t.Error("expected wrapped error to be matchable")
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{Format: "TEI", Path: "tlg0012.xml", Message: "malformed markup"}
	msg := err.Error()
	if !strings.Contains(msg, "TEI") || !strings.Contains(msg, "tlg0012.xml") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestParseError_Unwrap(t *testing.T) {
	err := &ParseError{Format: "TEI", Message: "bad", Err: ErrNoIdentifier}
	if !stderrors.Is(err, ErrNoIdentifier) {
		t.Error("expected ParseError to unwrap to ErrNoIdentifier")
	}
}

func TestIOError(t *testing.T) {
	inner := stderrors.New("permission denied")
	err := &IOError{Operation: "read", Path: "/data/corpus", Err: inner}
	if !strings.Contains(err.Error(), "failed to read /data/corpus") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !stderrors.Is(err, inner) {
		t.Error("expected IOError to unwrap")
	}
}

func TestStoreError(t *testing.T) {
	inner := stderrors.New("disk full")
	err := &StoreError{Operation: "commit", Err: inner}
	if !strings.Contains(err.Error(), "store commit failed") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !stderrors.Is(err, inner) {
		t.Error("expected StoreError to unwrap")
	}
}

func TestIsAndAs(t *testing.T) {
	err := &ParseError{Format: "URN", Message: "empty"}
	var pe *ParseError
	if !As(err, &pe) {
		t.Error("As should find ParseError")
	}
	wrapped := &NotFoundError{Resource: "text"}
	if !Is(wrapped, ErrNotFound) {
		t.Error("Is should match ErrNotFound")
	}
}
