package diag

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBagDedupsByPositionAndKind(t *testing.T) {
	b := NewBag()
	b.Add(TypeMismatchf("a.rego", 1, 1, "first"))
	b.Add(TypeMismatchf("a.rego", 1, 1, "second"))
	assert.Len(t, b.Sorted(), 1)
	assert.Equal(t, "first", b.Sorted()[0].Message, "first recorded diagnostic wins")
}

func TestBagDistinguishesKindAtSamePosition(t *testing.T) {
	b := NewBag()
	b.Add(TypeMismatchf("a.rego", 1, 1, "mismatch"))
	b.Add(SchemaViolationErr("a.rego", 1, 1, "violation"))
	assert.Len(t, b.Sorted(), 2)
}

func TestAddStampsUUIDWhenMissing(t *testing.T) {
	b := NewBag()
	b.Add(UnreachableWarn("a.rego", 1, 1))
	assert.NotEqual(t, uuid.Nil, b.Sorted()[0].ID)
}

func TestSortedOrdering(t *testing.T) {
	b := NewBag()
	b.Add(TypeMismatchf("b.rego", 1, 1, "x"))
	b.Add(TypeMismatchf("a.rego", 5, 1, "y"))
	b.Add(TypeMismatchf("a.rego", 1, 2, "z"))
	b.Add(TypeMismatchf("a.rego", 1, 1, "a"))

	sorted := b.Sorted()
	assert.Equal(t, "a.rego", sorted[0].File)
	assert.Equal(t, 1, sorted[0].Line)
	assert.Equal(t, 1, sorted[0].Col)
	assert.Equal(t, "a.rego", sorted[1].File)
	assert.Equal(t, 1, sorted[1].Line)
	assert.Equal(t, 2, sorted[1].Col)
	assert.Equal(t, "a.rego", sorted[2].File)
	assert.Equal(t, 5, sorted[2].Line)
	assert.Equal(t, "b.rego", sorted[3].File)
}

func TestHumanCount(t *testing.T) {
	assert.Equal(t, "12,345", HumanCount(12345))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
}
