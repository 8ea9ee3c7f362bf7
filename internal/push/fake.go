package push

import "sync"

// FakeGateway records sends and answers with canned per-token results.
// Used in tests and as the gateway when no FCM key is configured.
type FakeGateway struct {
	mu      sync.Mutex
	Sent    []Message
	Results map[string]Result // token -> result; missing tokens succeed
	SendErr error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Results: map[string]Result{}}
}

func (g *FakeGateway) SendMulticast(msg Message) ([]Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SendErr != nil {
		return nil, g.SendErr
	}
	g.Sent = append(g.Sent, msg)
	results := make([]Result, len(msg.Tokens))
	for i, tok := range msg.Tokens {
		if r, ok := g.Results[tok]; ok {
			results[i] = r
		} else {
			results[i] = Result{Success: true}
		}
	}
	return results, nil
}

// LastSent returns the most recent message, or nil.
func (g *FakeGateway) LastSent() *Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Sent) == 0 {
		return nil
	}
	m := g.Sent[len(g.Sent)-1]
	return &m
}
