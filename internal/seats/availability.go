// Package seats derives seat availability for a schedule.
package seats

import "sort"

// Available returns the seat numbers 1..totalSeats that are not occupied, in
// ascending order. Occupied values outside [1, totalSeats] have no effect.
func Available(totalSeats int, occupied []int) []int {
	if totalSeats <= 0 {
		return []int{}
	}

	taken := make(map[int]struct{}, len(occupied))
	for _, seat := range occupied {
		taken[seat] = struct{}{}
	}

	available := make([]int, 0, totalSeats)
	for seat := 1; seat <= totalSeats; seat++ {
		if _, ok := taken[seat]; ok {
			continue
		}
		available = append(available, seat)
	}
	return available
}

// IsAvailable reports whether seat is in the available list
func IsAvailable(available []int, seat int) bool {
	for _, s := range available {
		if s == seat {
			return true
		}
	}
	return false
}

// NormalizeOccupied drops out-of-range and duplicate seat numbers and sorts
// the rest
func NormalizeOccupied(totalSeats int, occupied []int) []int {
	seen := make(map[int]struct{}, len(occupied))
	normalized := make([]int, 0, len(occupied))
	for _, seat := range occupied {
		if seat < 1 || seat > totalSeats {
			continue
		}
		if _, dup := seen[seat]; dup {
			continue
		}
		seen[seat] = struct{}{}
		normalized = append(normalized, seat)
	}
	sort.Ints(normalized)
	return normalized
}

// MarkOccupied returns a copy of available without seat
func MarkOccupied(available []int, seat int) []int {
	remaining := make([]int, 0, len(available))
	for _, s := range available {
		if s != seat {
			remaining = append(remaining, s)
		}
	}
	return remaining
}
