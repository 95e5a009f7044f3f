package core

import (
	"slices"
	"strings"
	"testing"
)

func TestIdentifierLifecycle(t *testing.T) {
	base := IdentifierLiveCount()

	id1 := IdentifierAcquire("test buffer")
	id2 := IdentifierAcquire("test image")
	if id1 == id2 {
		t.Fatal("two acquires returned the same id")
	}
	if got := IdentifierLiveCount(); got != base+2 {
		t.Errorf("IdentifierLiveCount() = %d, want %d", got, base+2)
	}

	leaked := IdentifierLeaked()
	if !slices.Contains(leaked, "test buffer") || !slices.Contains(leaked, "test image") {
		t.Errorf("IdentifierLeaked() = %v, want it to list both test resources", leaked)
	}

	if err := IdentifierRelease(id1); err != nil {
		t.Errorf("IdentifierRelease() error = %v", err)
	}
	if err := IdentifierRelease(id2); err != nil {
		t.Errorf("IdentifierRelease() error = %v", err)
	}
	if got := IdentifierLiveCount(); got != base {
		t.Errorf("IdentifierLiveCount() after release = %d, want %d", got, base)
	}
}

func TestIdentifierDoubleRelease(t *testing.T) {
	id := IdentifierAcquire("once")
	if err := IdentifierRelease(id); err != nil {
		t.Fatalf("first IdentifierRelease() error = %v", err)
	}
	if err := IdentifierRelease(id); err == nil {
		t.Error("second IdentifierRelease() returned no error")
	}
}

func TestIdentifierReleaseEmpty(t *testing.T) {
	// Wrappers that were never fully constructed release an empty id.
	if err := IdentifierRelease(""); err != nil {
		t.Errorf("IdentifierRelease(\"\") error = %v", err)
	}
}

func TestIdentifierDefaultName(t *testing.T) {
	id := IdentifierAcquire("")
	defer IdentifierRelease(id)

	leaked := IdentifierLeaked()
	found := false
	for _, name := range leaked {
		if strings.HasPrefix(name, "resource-") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("IdentifierLeaked() = %v, want a generated resource- name", leaked)
	}
}

func TestIdentifierLeakedSorted(t *testing.T) {
	idB := IdentifierAcquire("zz-second")
	idA := IdentifierAcquire("aa-first")
	defer IdentifierRelease(idA)
	defer IdentifierRelease(idB)

	leaked := IdentifierLeaked()
	if !slices.IsSorted(leaked) {
		t.Errorf("IdentifierLeaked() = %v, want sorted output", leaked)
	}
}
