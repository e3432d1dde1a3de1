package auth

import (
	"context"
	"fmt"

	"github.com/rumik/ira/kvstore"
)

// Feedback is a user rating of the app, collected by the feedback
// dialog and stored server-side.
type Feedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Phone   string `json:"phone_number"`
}

// SubmitFeedback stores a feedback row in Supabase, tagged with the
// locally stored identity (or the guest sentinel).
func (c *Client) SubmitFeedback(ctx context.Context, fb Feedback) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}

	if fb.Phone == "" {
		raw, err := c.store.Get(ctx, kvstore.KeyPhoneNumber)
		if err == nil && raw != nil {
			fb.Phone = string(raw)
		} else {
			fb.Phone = GuestSentinel
		}
	}

	_, _, err := c.sb.From("feedback").
		Insert(fb, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to submit feedback: %w", err)
	}
	return nil
}
