package errors

import "testing"

func TestSentinelErrors(t *testing.T) {
	if ErrInvalidHierarchy == nil {
		t.Error("ErrInvalidHierarchy should not be nil")
	}
	if ErrForbidden == nil {
		t.Error("ErrForbidden should not be nil")
	}
	if ErrAlreadyAccepted == nil {
		t.Error("ErrAlreadyAccepted should not be nil")
	}
}
