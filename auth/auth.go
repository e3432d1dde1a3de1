// Package auth handles phone-OTP login through Supabase, guest
// sessions, and the logout purge of locally persisted state.
package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/rumik/ira/kvstore"
)

// GuestSentinel is stored under the phone-number key for sessions that
// skipped login.
const GuestSentinel = "guest"

// Config holds Supabase connection configuration.
type Config struct {
	URL    string
	APIKey string
}

// otpAPI is the slice of the GoTrue surface the login flow uses.
type otpAPI interface {
	OTP(req types.OTPRequest) error
	VerifyForUser(req types.VerifyForUserRequest) (*types.VerifyForUserResponse, error)
}

// Client implements the phone-OTP login flow backed by Supabase and a
// local store for the resulting identity.
type Client struct {
	sb    *supabase.Client
	otp   otpAPI
	store kvstore.Store
	log   *zap.Logger
}

// New creates a new auth client.
func New(cfg Config, store kvstore.Store) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		sb:    client,
		otp:   client.Auth,
		store: store,
		log:   zap.NewNop(),
	}, nil
}

// WithLogger sets the logger and returns the client.
func (c *Client) WithLogger(log *zap.Logger) *Client {
	c.log = log
	return c
}

// RequestOTP asks Supabase to text a one-time code to the given phone
// number, creating the user on first login.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	err := c.otp.OTP(types.OTPRequest{
		Phone:      phone,
		CreateUser: true,
	})
	if err != nil {
		return fmt.Errorf("failed to request OTP: %w", err)
	}
	return nil
}

// VerifyOTP checks the one-time code and, on success, persists the
// phone number and access token locally. Presence of the phone-number
// key is what the chat screen uses to decide guest status.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) error {
	resp, err := c.otp.VerifyForUser(types.VerifyForUserRequest{
		Type:  types.VerificationTypeSMS,
		Phone: phone,
		Token: code,
	})
	if err != nil {
		return fmt.Errorf("failed to verify OTP: %w", err)
	}

	if err := c.store.Set(ctx, kvstore.KeyPhoneNumber, []byte(phone)); err != nil {
		return fmt.Errorf("failed to persist phone number: %w", err)
	}
	if err := c.store.Set(ctx, kvstore.KeyAuthToken, []byte(resp.AccessToken)); err != nil {
		// The login itself succeeded; the token can be re-obtained.
		c.log.Warn("failed to persist auth token", zap.Error(err))
	}

	c.log.Info("phone login verified", zap.String("phone", phone))
	return nil
}

// ContinueAsGuest records a guest session.
func (c *Client) ContinueAsGuest(ctx context.Context) error {
	if err := c.store.Set(ctx, kvstore.KeyPhoneNumber, []byte(GuestSentinel)); err != nil {
		return fmt.Errorf("failed to persist guest session: %w", err)
	}
	return nil
}

// Logout discards the local identity and purges the persisted chat
// session along with it.
func (c *Client) Logout(ctx context.Context) error {
	err := c.store.Delete(ctx,
		kvstore.KeyPhoneNumber,
		kvstore.KeyAuthToken,
		kvstore.KeyChatHistory,
		kvstore.KeyMessageCount,
	)
	if err != nil {
		return fmt.Errorf("failed to purge session on logout: %w", err)
	}
	return nil
}

// IsGuest reports whether the stored identity is absent or the guest
// sentinel.
func IsGuest(ctx context.Context, store kvstore.Store) (bool, error) {
	raw, err := store.Get(ctx, kvstore.KeyPhoneNumber)
	if err != nil {
		return false, fmt.Errorf("failed to read stored identity: %w", err)
	}
	return raw == nil || string(raw) == GuestSentinel, nil
}
