package session

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithGuestLimit sets the guest send quota. Defaults to 3.
func WithGuestLimit(limit int) Option {
	return func(m *Manager) {
		m.guestLimit = limit
	}
}

// WithGreeting sets the assistant's opening line for fresh sessions.
func WithGreeting(text string) Option {
	return func(m *Manager) {
		m.greeting = text
	}
}

// WithRetention caps the persisted history at the given message and
// token limits, dropping oldest messages first. Zero means unlimited.
func WithRetention(messages, tokens int) Option {
	return func(m *Manager) {
		m.retainMessages = messages
		m.retainTokens = tokens
	}
}
