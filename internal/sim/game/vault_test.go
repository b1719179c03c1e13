package game

import (
	"errors"
	"fmt"
	"testing"
)

// checkVault verifies the slice/map invariant: every item maps to its own
// index and the map holds nothing else.
func checkVault(t *testing.T, v *PrizeVault) {
	t.Helper()
	if len(v.items) != len(v.position) {
		t.Fatalf("items=%d position=%d", len(v.items), len(v.position))
	}
	for i, p := range v.items {
		if got, ok := v.position[p]; !ok || got != i {
			t.Fatalf("prize %s at %d indexed as %d (ok=%v)", p, i, got, ok)
		}
	}
}

func TestVaultAddRemove(t *testing.T) {
	v := NewPrizeVault(3)

	for _, p := range []string{"a", "b", "c"} {
		if err := v.Add(p); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	checkVault(t, v)

	if err := v.Add("d"); !errors.Is(err, ErrVaultFull) {
		t.Fatalf("add over capacity: %v", err)
	}
	if err := v.Add("a"); !errors.Is(err, ErrPrizeHeld) {
		t.Fatalf("duplicate add: %v", err)
	}

	// Removing the head swaps the tail into its place.
	if err := v.RemoveByID("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	checkVault(t, v)
	if v.items[0] != "c" {
		t.Fatalf("swap-and-pop moved %q, want c", v.items[0])
	}

	if err := v.RemoveByID("a"); !errors.Is(err, ErrPrizeNotFound) {
		t.Fatalf("remove missing: %v", err)
	}
	if !v.Contains("b") || v.Contains("a") {
		t.Fatalf("membership drifted")
	}
}

func TestVaultAwardFIFO(t *testing.T) {
	v := NewPrizeVault(4)
	for _, p := range []string{"a", "b", "c"} {
		_ = v.Add(p)
	}

	p, err := v.AwardFIFO()
	if err != nil || p != "a" {
		t.Fatalf("award = %q, %v; want a", p, err)
	}
	checkVault(t, v)

	// After the swap, "c" is the new head.
	p, _ = v.AwardFIFO()
	if p != "c" {
		t.Fatalf("second award = %q, want c", p)
	}
	checkVault(t, v)

	_, _ = v.AwardFIFO()
	if _, err := v.AwardFIFO(); !errors.Is(err, ErrVaultEmpty) {
		t.Fatalf("empty award: %v", err)
	}
}

func TestVaultAwardRandomUsesIndexSlice(t *testing.T) {
	v := NewPrizeVault(5)
	for _, p := range []string{"a", "b", "c", "d", "e"} {
		_ = v.Add(p)
	}

	// award index = 7 % 5 = 2 -> "c"
	p, err := v.AwardRandom(randomnessFor(0, 7, 0, 0))
	if err != nil || p != "c" {
		t.Fatalf("award = %q, %v; want c", p, err)
	}
	checkVault(t, v)
	if v.Len() != 4 {
		t.Fatalf("len=%d want=4", v.Len())
	}
}

func TestVaultMixedSequenceInvariant(t *testing.T) {
	v := NewPrizeVault(64)
	next := 0
	add := func() {
		if v.Len() == v.Capacity() {
			return
		}
		next++
		_ = v.Add(fmt.Sprintf("p%d", next))
	}

	for i := 0; i < 200; i++ {
		switch i % 5 {
		case 0, 1, 2:
			add()
		case 3:
			if v.Len() > 0 {
				_, _ = v.AwardRandom(randomnessFor(uint64(i), uint64(i*31), 0, 0))
			}
		case 4:
			if v.Len() > 1 {
				_ = v.RemoveByID(v.Items()[v.Len()/2])
			}
		}
		checkVault(t, v)
	}
}
