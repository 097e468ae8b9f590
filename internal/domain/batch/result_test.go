package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("65f1a2b3c4d5e6f708192a3b")
	if r.ID() != "65f1a2b3c4d5e6f708192a3b" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusOK || !r.OK() {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("duplicate key")
	r := NewError("doc-2", err)
	if r.Status() != StatusError || r.OK() {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestCountOK(t *testing.T) {
	results := []Result{NewOK("a"), NewError("b", errors.New("x")), NewOK("c")}
	if n := CountOK(results); n != 2 {
		t.Errorf("CountOK() = %d, want 2", n)
	}
	if n := CountOK(nil); n != 0 {
		t.Errorf("CountOK(nil) = %d, want 0", n)
	}
}
