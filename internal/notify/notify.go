// Package notify delivers user-visible outcome events to the presentation
// layer. The core never renders anything itself; it emits notifications and
// whoever owns the terminal (CLI or TUI) subscribes.
package notify

import "sync"

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one user-visible outcome message.
type Notification struct {
	Message  string
	Severity Severity
}

// Handler receives notifications.
type Handler func(Notification)

// Notifier fans notifications out to subscribed handlers.
type Notifier struct {
	mu       sync.Mutex
	handlers []Handler
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler for all future notifications.
func (n *Notifier) Subscribe(h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, h)
}

// Notify delivers a message to every subscriber. Empty messages are dropped
// so silent operations (autosave) never reach the UI.
func (n *Notifier) Notify(message string, severity Severity) {
	if message == "" {
		return
	}
	n.mu.Lock()
	handlers := make([]Handler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	for _, h := range handlers {
		h(Notification{Message: message, Severity: severity})
	}
}
