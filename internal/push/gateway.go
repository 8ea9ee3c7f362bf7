// Package push delivers notifications to device tokens through an external
// multicast gateway. Delivery is best-effort: the caller persists its
// notification before pushing and treats per-token failures as cleanup
// input, not as errors.
package push

// Message is one logical notification multicast to many device tokens.
type Message struct {
	Tokens   []string
	Title    string
	Body     string
	Data     map[string]string
	Priority string // "high" or "normal"
}

// Result is the gateway's verdict for one token, index-aligned with
// Message.Tokens.
type Result struct {
	Success   bool
	ErrorCode string
}

// Gateway is the multicast push transport.
type Gateway interface {
	// SendMulticast pushes msg to every token. A non-nil error means the
	// whole call failed (transport); otherwise the per-token results carry
	// individual failures.
	SendMulticast(msg Message) ([]Result, error)
}

// Error codes reported by the gateway for tokens that should be deleted
// rather than retried.
const (
	ErrCodeInvalidToken  = "InvalidRegistration"
	ErrCodeNotRegistered = "NotRegistered"
)

// IsDeadToken reports whether a result's error code means the token is
// permanently invalid.
func IsDeadToken(code string) bool {
	return code == ErrCodeInvalidToken || code == ErrCodeNotRegistered
}
