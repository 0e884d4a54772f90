// If you are AI: Covers the cross-thread producer façade: Submit
// delivers Actions to whatever drains the queue, Submit respects context
// cancellation when the queue is full, and each Action's Run does the
// right thing against a live Publication.

package publish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftcast/internal/pubsub"
)

func TestSubmitDeliversToQueue(t *testing.T) {
	queue := make(chan Action, 1)
	h := NewHandle(pubsub.NewName("live", "test"), queue)

	done := make(chan struct{})
	err := h.Submit(context.Background(), Flush{Done: done})
	require.NoError(t, err)

	select {
	case a := <-queue:
		a.Run(nil)
	case <-time.After(time.Second):
		t.Fatal("expected the action to reach the queue")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("expected Flush.Run to close Done")
	}
}

func TestSubmitRespectsContextCancellation(t *testing.T) {
	queue := make(chan Action) // unbuffered, no reader
	h := NewHandle(pubsub.NewName("live", "test"), queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Submit(ctx, Flush{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActionsMutatePublication(t *testing.T) {
	d := pubsub.NewDirectory()
	pub, err := d.Publish(pubsub.NewName("live", "test"), 1)
	require.NoError(t, err)

	SetMetadata{Metadata: map[string]interface{}{"width": 1280}}.Run(pub)
	assert.Equal(t, 1280, pub.Metadata()["width"])

	Reset{}.Run(pub)
	assert.Nil(t, pub.Metadata())

	require.True(t, pub.HasPublisher())
	Unpublish{PublisherID: 1}.Run(pub)
	assert.False(t, pub.HasPublisher())
}
