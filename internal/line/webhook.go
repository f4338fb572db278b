package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Line-Signature"

type (
	// WebhookRequest is the subset of the webhook payload the bot reads.
	WebhookRequest struct {
		Destination string  `json:"destination"`
		Events      []Event `json:"events"`
	}

	Event struct {
		Type       string   `json:"type"`
		ReplyToken string   `json:"replyToken"`
		Timestamp  int64    `json:"timestamp"`
		Message    *Message `json:"message,omitempty"`
	}

	Message struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Text string `json:"text"`
	}
)

// ParseWebhook decodes a webhook body.
func ParseWebhook(body []byte) (*WebhookRequest, error) {
	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &req, nil
}

// FirstEvent returns the first event, or nil when there is none.
func (r *WebhookRequest) FirstEvent() *Event {
	if r == nil || len(r.Events) == 0 {
		return nil
	}
	return &r.Events[0]
}

// Text returns the message text, or "" for non-text events.
func (e *Event) Text() string {
	if e == nil || e.Message == nil {
		return ""
	}
	return e.Message.Text
}

// VerifySignature reports whether signature matches body.
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, bodyMAC(channelSecret, body))
}

func bodyMAC(channelSecret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return mac.Sum(nil)
}
