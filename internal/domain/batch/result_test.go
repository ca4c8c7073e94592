package batch

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

func TestNewOK(t *testing.T) {
	key := profile.NewKey("jane", platform.Instagram)
	r := NewOK(key)
	if r.Key() != key {
		t.Errorf("Key() = %v", r.Key())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	key := profile.NewKey("jane", platform.TikTok)
	r := NewError(key, err)
	if r.Key() != key {
		t.Errorf("Key() = %v", r.Key())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusOK != "ok" {
		t.Errorf("StatusOK = %q", StatusOK)
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q", StatusError)
	}
}

func TestPartition(t *testing.T) {
	a := profile.NewKey("a", platform.Instagram)
	b := profile.NewKey("b", platform.TikTok)
	c := profile.NewKey("c", platform.Instagram)

	saved, failed := Partition([]Result{NewOK(a), NewError(b, errors.New("oom")), NewOK(c)})

	if len(saved) != 2 || saved[0].Key() != a || saved[1].Key() != c {
		t.Errorf("saved = %+v", saved)
	}
	if len(failed) != 1 || failed[0].Key() != b || failed[0].OK() {
		t.Errorf("failed = %+v", failed)
	}

	if s, f := Partition(nil); s != nil || f != nil {
		t.Errorf("Partition(nil) = %v, %v", s, f)
	}
}
