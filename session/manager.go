// Package session owns the message log of a two-party conversation,
// enforces the guest send quota, coordinates optimistic local updates
// against the asynchronous remote reply, and persists state after every
// committed change.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rumik/ira"
	"github.com/rumik/ira/kvstore"
)

// ReplyProvider produces the assistant's reply to a user message.
// Implemented by chatapi.Client.
type ReplyProvider interface {
	Reply(ctx context.Context, message string) (string, error)
}

// DefaultGuestLimit is the number of messages a guest may send before
// being asked to log in.
const DefaultGuestLimit = 3

// Manager maintains an append-mostly conversation log.
//
// All methods are safe for concurrent use, but callers are expected to
// serialize operations the way a UI event loop does; a Send that
// overlaps another Send is ignored rather than queued.
type Manager struct {
	store kvstore.Store
	api   ReplyProvider

	isGuest        bool
	guestLimit     int
	greeting       string
	retainMessages int
	retainTokens   int

	log *zap.Logger
	now func() time.Time

	mu           sync.Mutex
	messages     []ira.Message
	sentCount    int
	pendingReply *ira.Message
	sending      bool
}

// New creates a Manager for a single chat session. isGuest is fixed for
// the session's lifetime; the caller derives it from how the user
// authenticated (see auth.IsGuest).
func New(store kvstore.Store, api ReplyProvider, isGuest bool, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		api:        api,
		isGuest:    isGuest,
		guestLimit: DefaultGuestLimit,
		greeting:   ira.GreetingText,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load populates the session from the store, or from a synthesized
// greeting when nothing is persisted. Read failures fall back to the
// fresh session and are logged, never surfaced; the greeting is not
// persisted until the next mutating operation.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = nil
	m.sentCount = 0
	m.pendingReply = nil

	raw, err := m.store.Get(ctx, kvstore.KeyChatHistory)
	if err != nil {
		m.log.Warn("failed to load chat history, starting fresh", zap.Error(err))
		m.messages = []ira.Message{ira.NewAssistantMessage(m.greeting, m.now())}
		return
	}
	if raw == nil {
		m.messages = []ira.Message{ira.NewAssistantMessage(m.greeting, m.now())}
	} else {
		var msgs []ira.Message
		if err := json.Unmarshal(raw, &msgs); err != nil {
			m.log.Warn("corrupt chat history, starting fresh", zap.Error(err))
			m.messages = []ira.Message{ira.NewAssistantMessage(m.greeting, m.now())}
			return
		}
		m.messages = msgs
	}

	rawCount, err := m.store.Get(ctx, kvstore.KeyMessageCount)
	if err != nil {
		m.log.Warn("failed to load message count", zap.Error(err))
		return
	}
	if rawCount == nil {
		return
	}
	count, err := strconv.Atoi(string(rawCount))
	if err != nil {
		m.log.Warn("corrupt message count", zap.String("value", string(rawCount)))
		return
	}
	m.sentCount = count
}

// Send appends the user's message optimistically, requests the
// assistant's reply, and commits or rolls back. See SendOutcome for the
// possible results.
//
// The guest quota is checked before any mutation: the counter is
// incremented on the optimistic append and restored on failure, so a
// failed send never consumes quota.
func (m *Manager) Send(ctx context.Context, text string) SendOutcome {
	trimmed, err := ira.ValidateText(text)
	if err != nil {
		if !errors.Is(err, ira.ErrEmptyMessage) {
			m.log.Warn("rejected message", zap.Error(err))
		}
		return SendIgnored
	}

	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return SendIgnored
	}

	nextCount := m.sentCount + 1
	if m.isGuest && nextCount > m.guestLimit {
		m.mu.Unlock()
		return SendQuotaExceeded
	}

	userMsg := ira.NewUserMessage(trimmed, m.now(), m.pendingReply)
	prevMessages := m.messages
	prevCount := m.sentCount

	m.messages = append(m.messages, userMsg)
	m.pendingReply = nil
	m.sentCount = nextCount
	m.sending = true
	m.mu.Unlock()

	// Single request, no retry; the transport's default timeout applies.
	replyText, err := m.api.Reply(ctx, trimmed)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sending = false

	if err != nil {
		m.log.Warn("send failed, rolling back", zap.Error(err))
		m.messages = prevMessages
		m.sentCount = prevCount
		return SendFailed
	}

	for i := range m.messages {
		if m.messages[i].ID == userMsg.ID {
			m.messages[i].Status = ira.StatusRead
			break
		}
	}
	m.messages = append(m.messages, ira.NewAssistantMessage(replyText, m.now()))

	if m.retainMessages > 0 || m.retainTokens > 0 {
		m.messages = ira.TruncateHistory(m.messages, m.retainTokens, m.retainMessages)
	}

	// The send already committed in memory; a failed write is logged,
	// not surfaced, favoring UI consistency over strict durability.
	if err := m.persistLocked(ctx); err != nil {
		m.log.Warn("failed to persist session after send", zap.Error(err))
	}
	return SendSent
}

// Delete removes the message with the given id and persists the updated
// list. The sent-message count is unchanged: deleting a sent message
// must not restore guest quota. No-op if the id is absent.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.messages {
		if m.messages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	m.messages = append(m.messages[:idx], m.messages[idx+1:]...)

	if err := m.persistLocked(ctx); err != nil {
		return fmt.Errorf("failed to persist after delete: %w", err)
	}
	return nil
}

// Clear purges the persisted history and count and resets the session
// to a single fresh greeting. Idempotent. A store failure is returned
// so the caller can tell the user the purge may not have stuck; the
// in-memory reset happens regardless.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = []ira.Message{ira.NewAssistantMessage(m.greeting, m.now())}
	m.sentCount = 0
	m.pendingReply = nil

	if err := m.store.Delete(ctx, kvstore.KeyChatHistory, kvstore.KeyMessageCount); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// SetReplyTarget stages msg as the reply target for the next send, or
// cancels the staged target when msg is nil. Transient UI intent, never
// persisted.
func (m *Manager) SetReplyTarget(msg *ira.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg == nil {
		m.pendingReply = nil
		return
	}
	copied := *msg
	m.pendingReply = &copied
}

// ReplyTarget returns a copy of the staged reply target, or nil.
func (m *Manager) ReplyTarget() *ira.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pendingReply == nil {
		return nil
	}
	copied := *m.pendingReply
	return &copied
}

// Messages returns a copy of the message log in display order.
func (m *Manager) Messages() []ira.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ira.Message, len(m.messages))
	copy(out, m.messages)
	for i := range out {
		if out[i].ReplyTo != nil {
			ref := *out[i].ReplyTo
			out[i].ReplyTo = &ref
		}
	}
	return out
}

// Find returns the message with the given id, if it is still in the
// log. Used by the scroll-to-original affordance; a deleted original
// simply fails the lookup.
func (m *Manager) Find(id string) (ira.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.messages {
		if m.messages[i].ID == id {
			return m.messages[i], true
		}
	}
	return ira.Message{}, false
}

// SentCount returns the number of user sends initiated this session.
func (m *Manager) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sentCount
}

// IsGuest reports whether this session is subject to the guest quota.
func (m *Manager) IsGuest() bool {
	return m.isGuest
}

// persistLocked writes the history and then the count. The count lands
// last so a partial failure under-counts, never over-counts, relative
// to the stored messages. Caller must hold mu.
func (m *Manager) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(m.messages)
	if err != nil {
		return fmt.Errorf("failed to encode chat history: %w", err)
	}
	if err := m.store.Set(ctx, kvstore.KeyChatHistory, raw); err != nil {
		return fmt.Errorf("failed to write chat history: %w", err)
	}
	if err := m.store.Set(ctx, kvstore.KeyMessageCount, []byte(strconv.Itoa(m.sentCount))); err != nil {
		return fmt.Errorf("failed to write message count: %w", err)
	}
	return nil
}
