package dialogue

import (
	"fmt"
	"testing"

	"recipechat/app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMemory_Bound(t *testing.T) {
	memory := NewRollingMemory(3)
	require.Equal(t, 6, memory.Capacity())

	for i := 0; i < 20; i++ {
		memory.Add(model.RoleUser, fmt.Sprintf("q%d", i))
		memory.Add(model.RoleAssistant, fmt.Sprintf("a%d", i))
		assert.LessOrEqual(t, memory.Len(), memory.Capacity())
	}

	turns := memory.Turns()
	require.Len(t, turns, 6)
	assert.Equal(t, model.Turn{Role: model.RoleUser, Text: "q17"}, turns[0])
	assert.Equal(t, model.Turn{Role: model.RoleAssistant, Text: "a19"}, turns[5])
}

func TestRollingMemory_Recent(t *testing.T) {
	memory := NewRollingMemory(12)
	memory.Add(model.RoleUser, "ازيك")
	memory.Add(model.RoleAssistant, "تمام")
	memory.Add(model.RoleUser, "عايز أكل")

	assert.Nil(t, memory.Recent(0))
	assert.Len(t, memory.Recent(10), 3)
	assert.Equal(t, []model.Turn{
		{Role: model.RoleAssistant, Text: "تمام"},
		{Role: model.RoleUser, Text: "عايز أكل"},
	}, memory.Recent(2))
}

func TestRollingMemory_TurnsIsCopy(t *testing.T) {
	memory := NewRollingMemory(1)
	memory.Add(model.RoleUser, "a")

	turns := memory.Turns()
	turns[0].Text = "changed"

	assert.Equal(t, "a", memory.Turns()[0].Text)

	memory.Clear()
	assert.Zero(t, memory.Len())
}

func TestRollingMemory_MinimumWindow(t *testing.T) {
	assert.Equal(t, 2, NewRollingMemory(0).Capacity())
}

func TestFormatTurns(t *testing.T) {
	assert.Equal(t, "لا توجد رسائل سابقة", formatTurns(nil))
	assert.Equal(t, "user: عايز شوربة\nassistant: حاضر", formatTurns([]model.Turn{
		{Role: model.RoleUser, Text: "عايز شوربة"},
		{Role: model.RoleAssistant, Text: "حاضر"},
	}))
}
