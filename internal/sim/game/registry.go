package game

import "time"

// Critter is one spawned creature. Owned exclusively by its slot.
type Critter struct {
	ID        uint64
	X         int
	Y         int
	MissCount int
	SpawnedAt time.Time
}

type slot struct {
	active  bool
	critter Critter
}

// registry holds the fixed spawn slots. Capacity is the hard cap; the
// engine's maxActive soft cap is enforced by the callers.
type registry struct {
	slots      []slot
	fieldBound int
	active     int
}

func newRegistry(capacity, fieldBound int) registry {
	return registry{
		slots:      make([]slot, capacity),
		fieldBound: fieldBound,
	}
}

func (r *registry) validSlot(i int) bool { return i >= 0 && i < len(r.slots) }

func (r *registry) validCoord(x, y int) bool {
	return x >= 0 && x <= r.fieldBound && y >= 0 && y <= r.fieldBound
}

func (r *registry) get(i int) (Critter, bool) {
	if !r.validSlot(i) || !r.slots[i].active {
		return Critter{}, false
	}
	return r.slots[i].critter, true
}

func (r *registry) activeCount() int { return r.active }

func (r *registry) spawn(i int, c Critter) error {
	if !r.validSlot(i) {
		return ErrInvalidSlot
	}
	if r.slots[i].active {
		return ErrSlotOccupied
	}
	if !r.validCoord(c.X, c.Y) {
		return ErrInvalidCoord
	}
	r.slots[i] = slot{active: true, critter: c}
	r.active++
	return nil
}

func (r *registry) despawn(i int) (Critter, error) {
	if !r.validSlot(i) {
		return Critter{}, ErrInvalidSlot
	}
	if !r.slots[i].active {
		return Critter{}, ErrSlotEmpty
	}
	c := r.slots[i].critter
	r.slots[i] = slot{}
	r.active--
	return c, nil
}

// reposition moves the critter and forgives prior misses.
func (r *registry) reposition(i, x, y int) error {
	if !r.validSlot(i) {
		return ErrInvalidSlot
	}
	if !r.slots[i].active {
		return ErrSlotEmpty
	}
	if !r.validCoord(x, y) {
		return ErrInvalidCoord
	}
	c := &r.slots[i].critter
	c.X, c.Y = x, y
	c.MissCount = 0
	return nil
}

func (r *registry) recordMiss(i int) (int, error) {
	if !r.validSlot(i) {
		return 0, ErrInvalidSlot
	}
	if !r.slots[i].active {
		return 0, ErrSlotEmpty
	}
	r.slots[i].critter.MissCount++
	return r.slots[i].critter.MissCount, nil
}

// findByID scans all slots. Linear is fine: capacity is at most HardCapSlots.
func (r *registry) findByID(critterID uint64) (int, bool) {
	for i := range r.slots {
		if r.slots[i].active && r.slots[i].critter.ID == critterID {
			return i, true
		}
	}
	return 0, false
}
