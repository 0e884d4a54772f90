// If you are AI: Covers the publish/subscribe round trip named in the
// design's testable properties: N-frame ordering and timestamp
// preservation across the ring buffer, plus the publisher-exclusivity and
// not-found error paths.

package pubsub

import "testing"

func TestPublishSubscribeOrderingAndTimestamps(t *testing.T) {
	d := NewDirectory()
	name := NewName("live", "test")

	pub, err := d.Publish(name, 1)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	_, sub, err := d.Subscribe(name, SubscriptionOptions{BufferCapacity: 16, Backpressure: BackpressureDropOldest})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for i := uint32(0); i < 5; i++ {
		msg := AcquireMessage()
		msg.Type = MessageTypeVideo
		msg.Timestamp = i * 40
		msg.SetPayload([]byte{byte(i)})
		pub.Publish(msg)
	}

	for i := uint32(0); i < 5; i++ {
		got, ok := sub.Buffer().Read()
		if !ok {
			t.Fatalf("Expected frame %d, buffer empty", i)
		}
		if got.Timestamp != i*40 {
			t.Errorf("Frame %d: expected timestamp %d, got %d", i, i*40, got.Timestamp)
		}
		if len(got.Payload) != 1 || got.Payload[0] != byte(i) {
			t.Errorf("Frame %d: payload out of order, got %v", i, got.Payload)
		}
	}
}

func TestPublishRejectsSecondPublisher(t *testing.T) {
	d := NewDirectory()
	name := NewName("live", "test")

	if _, err := d.Publish(name, 1); err != nil {
		t.Fatalf("First publish failed: %v", err)
	}
	if _, err := d.Publish(name, 2); err != ErrAlreadyPublished {
		t.Errorf("Expected ErrAlreadyPublished, got %v", err)
	}
}

func TestSubscribeNotFound(t *testing.T) {
	d := NewDirectory()
	_, _, err := d.Subscribe(NewName("live", "missing"), SubscriptionOptions{BufferCapacity: 16})
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUnpublishRemovesEmptyPublication(t *testing.T) {
	d := NewDirectory()
	name := NewName("live", "test")

	pub, err := d.Publish(name, 1)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	d.Unpublish(pub)

	if _, ok := d.Get(name); ok {
		t.Error("Expected publication to be removed once empty")
	}
}
