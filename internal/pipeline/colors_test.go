package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorForIsStable(t *testing.T) {
	reg := NewColorRegistry(nil)
	first := reg.ColorFor("p1")
	second := reg.ColorFor("p1")
	assert.Equal(t, first, second)
}

func TestColorForDistinctWithinPalette(t *testing.T) {
	reg := NewColorRegistry(nil)
	seen := make(map[string]string)
	for i := 0; i < len(DefaultPalette); i++ {
		id := fmt.Sprintf("p%d", i)
		color := reg.ColorFor(id)
		for other, c := range seen {
			assert.NotEqual(t, c, color, "ids %s and %s collided", other, id)
		}
		seen[id] = color
	}
}

func TestColorForWrapsAroundPalette(t *testing.T) {
	reg := NewColorRegistry([]string{"red", "green"})
	assert.Equal(t, "red", reg.ColorFor("a"))
	assert.Equal(t, "green", reg.ColorFor("b"))
	// Past the palette size the cursor wraps and colors repeat.
	assert.Equal(t, "red", reg.ColorFor("c"))
}

func TestReleaseDoesNotRestoreOldColor(t *testing.T) {
	reg := NewColorRegistry([]string{"red", "green", "blue"})
	first := reg.ColorFor("p1")
	require.Equal(t, "red", first)

	reg.Release("p1")
	// The cursor has moved on; the id gets the next round-robin color,
	// not its old one.
	assert.Equal(t, "green", reg.ColorFor("p1"))
}

func TestClearResetsCursorAndAssignments(t *testing.T) {
	reg := NewColorRegistry([]string{"red", "green"})
	reg.ColorFor("a")
	reg.ColorFor("b")
	require.Equal(t, 2, reg.Len())

	reg.Clear()
	assert.Zero(t, reg.Len())
	assert.Equal(t, "red", reg.ColorFor("x"))
}
