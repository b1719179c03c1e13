package game

import "encoding/binary"

// One 64-byte randomness value feeds several outcomes through disjoint byte
// ranges: catch roll 0..8, award index 8..16 (vault.go), spawn position
// 0..2/2..4, relocation 16..18/18..20. The slices are disjoint but the draws
// are still correlated; see DESIGN.md.

func catchRoll(randomness [64]byte) int {
	return int(binary.LittleEndian.Uint64(randomness[0:8]) % 100)
}

func spawnPos(randomness [64]byte, fieldBound int) (x, y int) {
	m := uint16(fieldBound) + 1
	x = int(binary.LittleEndian.Uint16(randomness[0:2]) % m)
	y = int(binary.LittleEndian.Uint16(randomness[2:4]) % m)
	return x, y
}

// awardIndex selects a vault position from bytes 8..16, a different slice
// than the catch roll uses.
func awardIndex(randomness [64]byte, vaultLen int) int {
	return int(binary.LittleEndian.Uint64(randomness[8:16]) % uint64(vaultLen))
}

func relocPos(randomness [64]byte, fieldBound int) (x, y int) {
	m := uint16(fieldBound) + 1
	x = int(binary.LittleEndian.Uint16(randomness[16:18]) % m)
	y = int(binary.LittleEndian.Uint16(randomness[18:20]) % m)
	return x, y
}

// caught applies the strict-inequality catch test: a roll equal to the rate
// fails, so rate 2 succeeds only on rolls 0 and 1.
func caught(roll, catchRate int) bool {
	return roll < catchRate
}
