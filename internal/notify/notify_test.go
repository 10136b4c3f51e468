package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyFansOut(t *testing.T) {
	n := New()

	var got []Notification
	n.Subscribe(func(nt Notification) { got = append(got, nt) })
	n.Subscribe(func(nt Notification) { got = append(got, nt) })

	n.Notify("saved", SeveritySuccess)

	assert.Len(t, got, 2)
	assert.Equal(t, "saved", got[0].Message)
	assert.Equal(t, SeveritySuccess, got[0].Severity)
}

func TestNotifyDropsEmptyMessages(t *testing.T) {
	n := New()

	called := false
	n.Subscribe(func(Notification) { called = true })

	n.Notify("", SeverityInfo)

	assert.False(t, called, "empty messages must stay silent")
}

func TestNotifyWithoutSubscribers(t *testing.T) {
	n := New()
	// Must not panic.
	n.Notify("nobody listening", SeverityInfo)
}
