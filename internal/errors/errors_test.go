package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCodeOfWalksChain(t *testing.T) {
	base := New(CodeNotFound, "no results", nil)
	wrapped := fmt.Errorf("fetch: %w", base)

	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Fatalf("CodeOf = %q, want %q", got, CodeNotFound)
	}
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatal("IsCode should match wrapped structured error")
	}
	if IsCode(wrapped, CodeVersionNotFound) {
		t.Fatal("IsCode should not match a different code")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(stderrors.New("boom")); got != CodeUnknown {
		t.Fatalf("CodeOf = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf(nil) = %q, want %q", got, CodeUnknown)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  Error
		want string
	}{
		{"message wins", Error{Code: CodeNetwork, Message: "dial failed", Err: stderrors.New("inner")}, "dial failed"},
		{"wrapped error", Error{Code: CodeNetwork, Err: stderrors.New("inner")}, "inner"},
		{"code only", Error{Code: CodeMalformedResponse}, "malformed_response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	err := fmt.Errorf("lookup: %w", HTTPStatus(503, "catalog returned 503"))
	if !IsCode(err, CodeHTTPStatus) {
		t.Fatalf("expected http_status code, got %q", CodeOf(err))
	}
	if got := StatusOf(err); got != 503 {
		t.Fatalf("StatusOf = %d, want 503", got)
	}
	if got := StatusOf(stderrors.New("x")); got != 0 {
		t.Fatalf("StatusOf plain error = %d, want 0", got)
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := New(CodeLaunchFailed, "open failed", inner)
	if !stderrors.Is(err, inner) {
		t.Fatal("errors.Is should see wrapped error")
	}
}
