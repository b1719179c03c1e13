package game

import (
	"errors"
	"testing"
)

func TestRegistrySpawnDespawn(t *testing.T) {
	r := newRegistry(4, 999)

	if err := r.spawn(0, Critter{ID: 1, X: 10, Y: 20}); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := r.spawn(0, Critter{ID: 2, X: 0, Y: 0}); !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("occupied spawn: %v", err)
	}
	if err := r.spawn(9, Critter{ID: 3}); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("bad slot: %v", err)
	}
	if err := r.spawn(1, Critter{ID: 4, X: 1000, Y: 0}); !errors.Is(err, ErrInvalidCoord) {
		t.Fatalf("bad coord: %v", err)
	}
	if r.activeCount() != 1 {
		t.Fatalf("active=%d want=1", r.activeCount())
	}

	c, err := r.despawn(0)
	if err != nil || c.ID != 1 {
		t.Fatalf("despawn = %+v, %v", c, err)
	}
	if _, err := r.despawn(0); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("empty despawn: %v", err)
	}
	if r.activeCount() != 0 {
		t.Fatalf("active=%d want=0", r.activeCount())
	}
}

func TestRegistryRepositionForgivesMisses(t *testing.T) {
	r := newRegistry(2, 999)
	_ = r.spawn(1, Critter{ID: 7, X: 5, Y: 5})

	for i := 0; i < 2; i++ {
		if _, err := r.recordMiss(1); err != nil {
			t.Fatalf("miss: %v", err)
		}
	}
	if c, _ := r.get(1); c.MissCount != 2 {
		t.Fatalf("misses=%d want=2", c.MissCount)
	}

	if err := r.reposition(1, 100, 200); err != nil {
		t.Fatalf("reposition: %v", err)
	}
	c, _ := r.get(1)
	if c.X != 100 || c.Y != 200 {
		t.Fatalf("pos=(%d,%d) want=(100,200)", c.X, c.Y)
	}
	if c.MissCount != 0 {
		t.Fatalf("misses=%d want=0 after reposition", c.MissCount)
	}
	if c.ID != 7 {
		t.Fatalf("id changed on reposition: %d", c.ID)
	}
}

func TestRegistryFindByID(t *testing.T) {
	r := newRegistry(3, 999)
	_ = r.spawn(2, Critter{ID: 42, X: 1, Y: 1})

	if i, ok := r.findByID(42); !ok || i != 2 {
		t.Fatalf("findByID = %d, %v", i, ok)
	}
	if _, ok := r.findByID(43); ok {
		t.Fatalf("found nonexistent critter")
	}
	_, _ = r.despawn(2)
	if _, ok := r.findByID(42); ok {
		t.Fatalf("found despawned critter")
	}
}
