package line

import (
	"encoding/base64"
	"testing"
)

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"destination":"U1","events":[
		{"type":"message","replyToken":"rt-1","message":{"id":"m1","type":"text","text":"カード支払い"}},
		{"type":"message","replyToken":"rt-2","message":{"type":"text","text":"ignored"}}
	]}`)

	req, err := ParseWebhook(body)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	ev := req.FirstEvent()
	if ev == nil || ev.ReplyToken != "rt-1" || ev.Text() != "カード支払い" {
		t.Fatalf("FirstEvent = %+v", ev)
	}
}

func TestParseWebhook_NoEvents(t *testing.T) {
	req, err := ParseWebhook([]byte(`{"events":[]}`))
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if req.FirstEvent() != nil {
		t.Fatal("expected no event")
	}
}

func TestParseWebhook_Malformed(t *testing.T) {
	if _, err := ParseWebhook([]byte(`{"events":`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestEventText_NonTextEvent(t *testing.T) {
	ev := &Event{Type: "follow", ReplyToken: "rt"}
	if ev.Text() != "" {
		t.Fatalf("Text() = %q, want empty", ev.Text())
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := base64.StdEncoding.EncodeToString(bodyMAC("secret", body))

	tests := []struct {
		name   string
		secret string
		body   []byte
		sig    string
		want   bool
	}{
		{"valid", "secret", body, sig, true},
		{"wrong secret", "other", body, sig, false},
		{"tampered body", "secret", []byte(`{"events":[{}]}`), sig, false},
		{"not base64", "secret", body, "!!!", false},
		{"empty", "secret", body, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.secret, tt.body, tt.sig); got != tt.want {
				t.Fatalf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}
