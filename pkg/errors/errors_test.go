package errors

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeAuth, 401, "login required")
	expected := "auth error (code 401): login required"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		retryable bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeUnknown, true},
		{ErrorTypeAuth, false},
		{ErrorTypePrivate, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeParsing, true},
		{ErrorType("bogus"), true},
	}

	for _, test := range tests {
		if got := IsRetryable(test.errorType); got != test.retryable {
			t.Errorf("IsRetryable(%s) = %v, want %v", test.errorType, got, test.retryable)
		}
	}
}

func TestTypeForStatusCode(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorType
	}{
		{0, ErrorTypeNetwork},
		{401, ErrorTypeAuth},
		{403, ErrorTypePrivate},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{418, ErrorTypeUnknown},
	}

	for _, test := range tests {
		if got := TypeForStatusCode(test.code); got != test.expected {
			t.Errorf("TypeForStatusCode(%d) = %s, want %s", test.code, got, test.expected)
		}
	}
}

func TestErrorsAsUnwrapping(t *testing.T) {
	var apiErr *Error
	wrapped := errors.Join(errors.New("context"), New(ErrorTypeNotFound, 404, "profile does not exist"))
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("Expected errors.As to find the typed error")
	}
	if apiErr.Type != ErrorTypeNotFound {
		t.Errorf("Expected not_found, got %s", apiErr.Type)
	}
}
