package session

// SendOutcome is the discrete result of a Send call. Failures never
// surface as errors; the caller maps the outcome to user-visible
// messaging.
type SendOutcome string

const (
	// SendSent means the message was delivered and the assistant reply
	// appended and persisted.
	SendSent SendOutcome = "sent"

	// SendQuotaExceeded means a guest session has used up its send
	// quota. Nothing was mutated; the caller should prompt for login.
	SendQuotaExceeded SendOutcome = "quota_exceeded"

	// SendFailed means the remote call failed and the session was
	// rolled back to its pre-send state. The user may retry.
	SendFailed SendOutcome = "failed"

	// SendIgnored means the call was a no-op: empty input after
	// trimming, input over the length bound, or another send already
	// in flight.
	SendIgnored SendOutcome = "ignored"
)
