package push

import "context"

// OutcomeKind classifies the per-recipient result of a delivery attempt.
type OutcomeKind int

const (
	// Delivered means the provider accepted the message for the token.
	Delivered OutcomeKind = iota
	// TransientFailure means a retry at a later time might succeed
	// (rate limit, quota, provider outage, timeout, unknown errors).
	TransientFailure
	// PermanentFailure means the token will never work again
	// (unregistered, malformed, wrong sender). The only kind that may
	// trigger token invalidation.
	PermanentFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case TransientFailure:
		return "transient_failure"
	case PermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Message contains the data to send in a push notification
type Message struct {
	Title    string
	Body     string
	ImageURL string            // Optional notification image
	Data     map[string]string // Custom data payload
	// Click action
	ClickAction string // URL to open when notification is clicked
}

// Outcome is the per-recipient result of a delivery attempt.
type Outcome struct {
	Token     string
	Kind      OutcomeKind
	MessageID string // provider message id, set when delivered
	Err       error  // underlying provider error, set on failure
}

// Recipient pairs a user with their current device token.
type Recipient struct {
	UserID string
	Token  string
}

// Gateway is the delivery-provider capability consumed by the dispatch
// engine. Implementations never return an error from SendOne/SendMany;
// failures are carried per recipient in the outcomes.
type Gateway interface {
	SendOne(ctx context.Context, token string, msg Message) Outcome
	SendMany(ctx context.Context, tokens []string, msg Message) []Outcome
	// MaxBatchSize is the provider-defined multicast limit; callers must
	// chunk token lists to at most this size per SendMany call.
	MaxBatchSize() int
}
