package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FCMClient talks to the FCM legacy HTTP endpoint. One POST carries the
// whole multicast; the response holds a result per registration id in
// request order.
type FCMClient struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

func NewFCMClient(endpoint, serverKey string) *FCMClient {
	return &FCMClient{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
	Priority        string            `json:"priority,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int         `json:"success"`
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

type fcmResult struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func (c *FCMClient) SendMulticast(msg Message) ([]Result, error) {
	reqID := uuid.NewString()

	body, err := json.Marshal(fcmRequest{
		RegistrationIDs: msg.Tokens,
		Notification:    fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:            msg.Data,
		Priority:        msg.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal fcm request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fcm send: unexpected status %d", resp.StatusCode)
	}

	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode fcm response: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"request_id": reqID,
		"tokens":     len(msg.Tokens),
		"success":    parsed.Success,
		"failure":    parsed.Failure,
	}).Info("Push multicast sent.")

	results := make([]Result, len(parsed.Results))
	for i, r := range parsed.Results {
		results[i] = Result{Success: r.Error == "", ErrorCode: r.Error}
	}
	// Gateways may truncate the result list on malformed requests; pad so
	// callers can always index by token position.
	for len(results) < len(msg.Tokens) {
		results = append(results, Result{Success: false})
	}
	return results, nil
}
