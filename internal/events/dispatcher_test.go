package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_InvokesAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	boom := errors.New("boom")

	d.Subscribe(EventSLABreached, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventSLABreached, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventSLAWarning, func(context.Context, Event) error {
		t.Fatal("warning handler must not run")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSLABreached, TicketID: "t1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
}
