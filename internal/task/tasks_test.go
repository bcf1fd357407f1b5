package task

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestNewRunSessionTask(t *testing.T) {
	tk, err := NewRunSessionTask("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", asynq.MaxRetry(0), asynq.Timeout(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tk.Type() != TypeRunSession {
		t.Errorf("type = %q; want %q", tk.Type(), TypeRunSession)
	}
	if got := string(tk.Payload()); got != `{"session_id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"}` {
		t.Errorf("payload = %s", got)
	}

	p, err := ParseRunSessionPayload(tk)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if p.SessionID != "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee" {
		t.Errorf("session id = %q", p.SessionID)
	}
}

func TestParseRunSessionPayload_Invalid(t *testing.T) {
	tk := asynq.NewTask(TypeRunSession, []byte("not-json"))
	if _, err := ParseRunSessionPayload(tk); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
