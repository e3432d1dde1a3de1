package kvstore

import "context"

// Well-known keys used by the chat session and login flows.
const (
	KeyChatHistory  = "chatHistory"
	KeyMessageCount = "messageCount"
	KeyPhoneNumber  = "phoneNumber"
	KeyAuthToken    = "authToken"
)

// Store defines the interface for durable key-value storage.
type Store interface {
	// Get retrieves the value for a key.
	// Returns (nil, nil) if the key is not present (not an error).
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for a key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Close closes the store and releases any resources.
	Close() error
}
