package game

// PrizeVault holds unique prize ids with O(1) add, O(1) remove-by-id and
// O(1) remove-at-random-index. The backing slice and the position index are
// mutated only by removeAt/Add so they can never drift apart.
type PrizeVault struct {
	items    []string
	position map[string]int
	capacity int
}

func NewPrizeVault(capacity int) *PrizeVault {
	return &PrizeVault{
		position: map[string]int{},
		capacity: capacity,
	}
}

func (v *PrizeVault) Len() int      { return len(v.items) }
func (v *PrizeVault) Capacity() int { return v.capacity }

func (v *PrizeVault) Contains(prize string) bool {
	_, ok := v.position[prize]
	return ok
}

// Items returns a copy in storage order (diagnostics only).
func (v *PrizeVault) Items() []string {
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

// Add admits a prize. Membership is checked before capacity: re-adding a
// held prize is a duplicate even when the vault is full.
func (v *PrizeVault) Add(prize string) error {
	if _, ok := v.position[prize]; ok {
		return ErrPrizeHeld
	}
	if len(v.items) >= v.capacity {
		return ErrVaultFull
	}
	v.position[prize] = len(v.items)
	v.items = append(v.items, prize)
	return nil
}

func (v *PrizeVault) RemoveByID(prize string) error {
	i, ok := v.position[prize]
	if !ok {
		return ErrPrizeNotFound
	}
	v.removeAt(i)
	return nil
}

// AwardFIFO removes and returns the oldest prize.
func (v *PrizeVault) AwardFIFO() (string, error) {
	if len(v.items) == 0 {
		return "", ErrVaultEmpty
	}
	prize := v.items[0]
	v.removeAt(0)
	return prize, nil
}

// AwardRandom removes the prize at the index derived from the randomness
// (awardIndex). The reuse of one draw for several outcomes is statistically
// correlated; kept deliberately for compatibility with recorded game history.
func (v *PrizeVault) AwardRandom(randomness [64]byte) (string, error) {
	if len(v.items) == 0 {
		return "", ErrVaultEmpty
	}
	idx := awardIndex(randomness, len(v.items))
	prize := v.items[idx]
	v.removeAt(idx)
	return prize, nil
}

// removeAt is the single mutation point for both structures: swap-and-pop the
// slice, fix the moved item's index, drop the removed id from the map.
func (v *PrizeVault) removeAt(i int) {
	last := len(v.items) - 1
	removed := v.items[i]
	if i != last {
		moved := v.items[last]
		v.items[i] = moved
		v.position[moved] = i
	}
	v.items = v.items[:last]
	delete(v.position, removed)
}
