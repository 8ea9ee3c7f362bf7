package push

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFCMSendMulticast(t *testing.T) {
	var gotAuth string
	var gotReq fcmRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(fcmResponse{
			Success: 2,
			Failure: 1,
			Results: []fcmResult{
				{MessageID: "m1"},
				{Error: ErrCodeNotRegistered},
				{MessageID: "m3"},
			},
		})
	}))
	defer srv.Close()

	c := NewFCMClient(srv.URL, "test-key")
	results, err := c.SendMulticast(Message{
		Tokens:   []string{"t1", "t2", "t3"},
		Title:    "Bus",
		Body:     "En route",
		Priority: "high",
	})
	if err != nil {
		t.Fatalf("SendMulticast: %v", err)
	}

	if gotAuth != "key=test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotReq.RegistrationIDs) != 3 {
		t.Errorf("sent %d registration ids, want 3", len(gotReq.RegistrationIDs))
	}
	if gotReq.Notification.Title != "Bus" || gotReq.Notification.Body != "En route" {
		t.Errorf("notification payload = %+v", gotReq.Notification)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].Success || results[1].Success || !results[2].Success {
		t.Errorf("result successes = %v,%v,%v", results[0].Success, results[1].Success, results[2].Success)
	}
	if !IsDeadToken(results[1].ErrorCode) {
		t.Errorf("NotRegistered not treated as dead token")
	}
}

func TestFCMSendMulticastPadsTruncatedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fcmResponse{Results: []fcmResult{{MessageID: "m1"}}})
	}))
	defer srv.Close()

	c := NewFCMClient(srv.URL, "k")
	results, err := c.SendMulticast(Message{Tokens: []string{"t1", "t2", "t3"}})
	if err != nil {
		t.Fatalf("SendMulticast: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[1].Success || results[2].Success {
		t.Error("padded results should be failures")
	}
}

func TestFCMSendMulticastServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFCMClient(srv.URL, "k")
	if _, err := c.SendMulticast(Message{Tokens: []string{"t1"}}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestIsDeadToken(t *testing.T) {
	if !IsDeadToken(ErrCodeInvalidToken) || !IsDeadToken(ErrCodeNotRegistered) {
		t.Error("registration error codes should be dead tokens")
	}
	if IsDeadToken("Unavailable") || IsDeadToken("") {
		t.Error("transient codes should not be dead tokens")
	}
}
