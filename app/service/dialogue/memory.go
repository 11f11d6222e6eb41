package dialogue

import (
	"strings"

	"recipechat/app/model"
)

// RollingMemory keeps the most recent exchanges. A window of N exchanges
// holds at most 2N turns; the oldest turn is evicted on every append past that.
type RollingMemory struct {
	capacity int
	turns    []model.Turn
}

func NewRollingMemory(window int) *RollingMemory {
	if window < 1 {
		window = 1
	}

	return &RollingMemory{
		capacity: window * 2,
		turns:    make([]model.Turn, 0, window*2),
	}
}

func (m *RollingMemory) Add(role model.Role, text string) {
	turn := model.Turn{
		Role: role,
		Text: text,
	}

	if len(m.turns) >= m.capacity {
		copy(m.turns, m.turns[1:])
		m.turns[len(m.turns)-1] = turn
		return
	}

	m.turns = append(m.turns, turn)
}

func (m *RollingMemory) Len() int {
	return len(m.turns)
}

func (m *RollingMemory) Capacity() int {
	return m.capacity
}

// Turns returns a copy, oldest first.
func (m *RollingMemory) Turns() []model.Turn {
	result := make([]model.Turn, len(m.turns))
	copy(result, m.turns)
	return result
}

func (m *RollingMemory) Recent(n int) []model.Turn {
	if n <= 0 {
		return nil
	}
	if n > len(m.turns) {
		n = len(m.turns)
	}

	result := make([]model.Turn, n)
	copy(result, m.turns[len(m.turns)-n:])
	return result
}

func (m *RollingMemory) Clear() {
	m.turns = m.turns[:0]
}

func formatTurns(turns []model.Turn) string {
	if len(turns) == 0 {
		return "لا توجد رسائل سابقة"
	}

	var builder strings.Builder

	for _, turn := range turns {
		role := "user"
		if turn.Role == model.RoleAssistant {
			role = "assistant"
		}

		builder.WriteString(role)
		builder.WriteString(": ")
		builder.WriteString(turn.Text)
		builder.WriteString("\n")
	}

	return strings.TrimSuffix(builder.String(), "\n")
}
