package common

import (
	"errors"
	"testing"
)

func TestIsStore(t *testing.T) {
	err := NewStoreErr("State", Conflict, "abc")

	if !IsStore(err, Conflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}

	if IsStore(err, KeyNotFound) {
		t.Fatalf("Conflict should not match KeyNotFound")
	}

	if IsStore(errors.New("State, abc, Conflict"), Conflict) {
		t.Fatalf("plain errors are not StoreErr")
	}

	if err.Error() != "State, abc, Conflict" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
