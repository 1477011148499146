package seats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable_NoOccupiedSeats(t *testing.T) {
	available := Available(45, []int{})

	require.Len(t, available, 45)
	for i, seat := range available {
		assert.Equal(t, i+1, seat)
	}
}

func TestAvailable_ExcludesOccupied(t *testing.T) {
	available := Available(45, []int{1, 2, 3})

	assert.Len(t, available, 42)
	assert.Equal(t, 4, available[0])
	assert.False(t, IsAvailable(available, 1))
	assert.True(t, IsAvailable(available, 4))
}

func TestAvailable_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		occupied []int
		expected []int
	}{
		{"Zero capacity", 0, []int{1}, []int{}},
		{"Negative capacity", -3, nil, []int{}},
		{"Out of range ignored", 3, []int{0, -1, 4, 99}, []int{1, 2, 3}},
		{"Duplicates ignored", 4, []int{2, 2, 2}, []int{1, 3, 4}},
		{"Unordered input", 5, []int{5, 1, 3}, []int{2, 4}},
		{"All occupied", 2, []int{1, 2}, []int{}},
		{"Nil occupied", 2, nil, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Available(tt.total, tt.occupied))
		})
	}
}

func TestAvailable_DisjointFromOccupied(t *testing.T) {
	occupied := []int{3, 7, 11, 12, 40, 46, -2}
	available := Available(45, occupied)

	for _, seat := range occupied {
		assert.False(t, IsAvailable(available, seat), "seat %d should not be available", seat)
	}
	// 45 seats minus the 5 in-range occupied ones
	assert.Len(t, available, 40)
	for i := 1; i < len(available); i++ {
		assert.Less(t, available[i-1], available[i])
	}
}

func TestAvailable_Idempotent(t *testing.T) {
	occupied := []int{9, 2, 30}

	first := Available(32, occupied)
	second := Available(32, occupied)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{9, 2, 30}, occupied, "input must not be mutated")
}

func TestNormalizeOccupied(t *testing.T) {
	assert.Equal(t, []int{1, 4, 9}, NormalizeOccupied(10, []int{9, 4, 4, 0, 11, 1}))
	assert.Equal(t, []int{}, NormalizeOccupied(0, []int{1, 2}))
}

func TestMarkOccupied(t *testing.T) {
	available := []int{1, 2, 3}

	remaining := MarkOccupied(available, 2)

	assert.Equal(t, []int{1, 3}, remaining)
	assert.Equal(t, []int{1, 2, 3}, available)
}
