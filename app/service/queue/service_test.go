package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Order(t *testing.T) {
	q := New(4)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Add(ctx, Message{Seq: i, Text: "msg"}))
	}
	q.Close()

	var seqs []int
	for msg := range q.Channel() {
		seqs = append(seqs, msg.Seq)
	}

	assert.Equal(t, []int{1, 2, 3}, seqs)
}

func TestQueue_AddAfterClose(t *testing.T) {
	q := New(1)
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Add(context.Background(), Message{Text: "late"}), ErrClosed)
}

func TestQueue_AddBlocksUntilCancelled(t *testing.T) {
	q := New(1)
	require.NoError(t, q.Add(context.Background(), Message{Seq: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, q.Add(ctx, Message{Seq: 2}), context.DeadlineExceeded)
}
