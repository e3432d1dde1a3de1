package ira_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumik/ira"
)

func TestValidateText(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, err := ira.ValidateText("  hello  ")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("rejects empty and whitespace-only input", func(t *testing.T) {
		_, err := ira.ValidateText("")
		assert.ErrorIs(t, err, ira.ErrEmptyMessage)

		_, err = ira.ValidateText("   \n\t ")
		assert.ErrorIs(t, err, ira.ErrEmptyMessage)
	})

	t.Run("accepts exactly the maximum length", func(t *testing.T) {
		got, err := ira.ValidateText(strings.Repeat("a", ira.MaxMessageLength))
		require.NoError(t, err)
		assert.Len(t, got, ira.MaxMessageLength)
	})

	t.Run("rejects over-long input", func(t *testing.T) {
		_, err := ira.ValidateText(strings.Repeat("a", ira.MaxMessageLength+1))
		assert.ErrorIs(t, err, ira.ErrMessageTooLong)
	})

	t.Run("length bound counts runes, not bytes", func(t *testing.T) {
		_, err := ira.ValidateText(strings.Repeat("ñ", ira.MaxMessageLength))
		assert.NoError(t, err)
	})
}

func TestNewUserMessage(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("without reply target", func(t *testing.T) {
		msg := ira.NewUserMessage("hi", now, nil)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, ira.SenderUser, msg.Sender)
		assert.Equal(t, ira.StatusSending, msg.Status)
		assert.Nil(t, msg.ReplyTo)
	})

	t.Run("snapshots the reply target", func(t *testing.T) {
		original := ira.NewAssistantMessage("original text", now)
		msg := ira.NewUserMessage("hi", now, &original)

		require.NotNil(t, msg.ReplyTo)
		assert.Equal(t, original.ID, msg.ReplyTo.ID)
		assert.Equal(t, "original text", msg.ReplyTo.Text)
		assert.Equal(t, ira.SenderIra, msg.ReplyTo.Sender)
	})

	t.Run("ids are unique", func(t *testing.T) {
		a := ira.NewUserMessage("a", now, nil)
		b := ira.NewUserMessage("b", now, nil)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestTruncateHistory(t *testing.T) {
	now := time.Now()
	history := make([]ira.Message, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, ira.NewAssistantMessage(strings.Repeat("x", 40), now))
	}

	t.Run("zero limits mean unlimited", func(t *testing.T) {
		got := ira.TruncateHistory(history, 0, 0)
		assert.Len(t, got, 10)
	})

	t.Run("message limit keeps most recent", func(t *testing.T) {
		got := ira.TruncateHistory(history, 0, 4)
		require.Len(t, got, 4)
		assert.Equal(t, history[6].ID, got[0].ID)
	})

	t.Run("token limit drops oldest first", func(t *testing.T) {
		// 40 ASCII chars is 10 tokens per message.
		got := ira.TruncateHistory(history, 25, 0)
		assert.Len(t, got, 2)
	})

	t.Run("empty history passes through", func(t *testing.T) {
		assert.Empty(t, ira.TruncateHistory(nil, 10, 10))
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 1, ira.EstimateTokens("abcd"))
	assert.Equal(t, 1, ira.EstimateTokens("你"))
	assert.Equal(t, 0, ira.EstimateTokens(""))
}
