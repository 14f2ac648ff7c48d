package pantry

import (
	"testing"

	"pantry-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairNamed(name string) DuplicatePair {
	return DuplicatePair{
		Existing: common.PantryItem{ID: "p-" + name, Name: name},
		Incoming: common.PantryItemDraft{Name: name, Quantity: 1},
	}
}

func TestConflictQueue_FIFO(t *testing.T) {
	var q conflictQueue

	q.push(pairNamed("A"))
	q.push(pairNamed("B"))
	q.push(pairNamed("C"))
	require.Equal(t, 3, q.len())

	p1, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "A", p1.Existing.Name)

	p2, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "B", p2.Existing.Name)

	p3, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "C", p3.Existing.Name)

	_, ok = q.pop()
	assert.False(t, ok)
}

func TestConflictQueue_PopEmpty(t *testing.T) {
	var q conflictQueue

	_, ok := q.pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.len())
}

func TestConflictQueue_Clear(t *testing.T) {
	var q conflictQueue

	q.push(pairNamed("A"))
	q.push(pairNamed("B"))
	q.clear()

	assert.Equal(t, 0, q.len())
	_, ok := q.pop()
	assert.False(t, ok)
}
