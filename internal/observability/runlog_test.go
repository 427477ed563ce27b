package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLog_RecordsEventsInOrder(t *testing.T) {
	l := NewRunLog(0)

	l.Info("Analyzing", "picking a topic")
	l.Warn("Designing", "slot %s failed", "section2")
	l.Success("Pipeline", "done")

	events := l.Events()
	require.Len(t, events, 3)
	assert.Equal(t, LevelInfo, events[0].Level)
	assert.Equal(t, "Analyzing", events[0].Stage)
	assert.Equal(t, "slot section2 failed", events[1].Message)
	assert.Equal(t, LevelSuccess, events[2].Level)
	assert.False(t, events[0].Time.IsZero())
}

func TestRunLog_ResetClearsBuffer(t *testing.T) {
	l := NewRunLog(0)
	l.Info("Pipeline", "first run")

	l.Reset()

	assert.Empty(t, l.Events())
}

func TestRunLog_BoundedCapacityDropsOldest(t *testing.T) {
	l := NewRunLog(3)
	for i := 0; i < 5; i++ {
		l.Info("Pipeline", "event %d", i)
	}

	events := l.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "event 2", events[0].Message)
	assert.Equal(t, "event 4", events[2].Message)
}

func TestRunLog_EventsReturnsCopy(t *testing.T) {
	l := NewRunLog(0)
	l.Info("Pipeline", "original")

	events := l.Events()
	events[0].Message = "mutated"

	assert.Equal(t, "original", l.Events()[0].Message)
}

func TestRunLog_SubscribeReceivesEvents(t *testing.T) {
	l := NewRunLog(0)
	ch, cancel := l.Subscribe()
	defer cancel()

	l.Info("Writing", "drafting")

	event := <-ch
	assert.Equal(t, "drafting", event.Message)
	assert.Equal(t, "Writing", event.Stage)
}

func TestRunLog_CancelClosesChannel(t *testing.T) {
	l := NewRunLog(0)
	ch, cancel := l.Subscribe()

	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Logging after cancel must not panic.
	l.Info("Pipeline", "after cancel")
}

func TestRunLog_SlowSubscriberDoesNotBlock(t *testing.T) {
	l := NewRunLog(0)
	_, cancel := l.Subscribe() // never drained
	defer cancel()

	// More events than the subscriber buffer holds; must not deadlock.
	for i := 0; i < 100; i++ {
		l.Info("Pipeline", "event %d", i)
	}

	assert.Len(t, l.Events(), 100)
}

func TestRunLog_ResetKeepsSubscribers(t *testing.T) {
	l := NewRunLog(0)
	ch, cancel := l.Subscribe()
	defer cancel()

	l.Reset()
	l.Info("Pipeline", "new run")

	event := <-ch
	assert.Equal(t, "new run", event.Message)
}

func TestEventString(t *testing.T) {
	l := NewRunLog(0)
	l.Error("Publishing", "cms down")

	s := l.Events()[0].String()
	assert.Contains(t, s, "[ERROR]")
	assert.Contains(t, s, "[Publishing]")
	assert.Contains(t, s, "cms down")
}
