package cooldown

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter_HeaderSeconds(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"12"}}}
	d := ParseRetryAfter(resp, nil)
	if d == nil || *d != 12*time.Second {
		t.Errorf("expected 12s, got %v", d)
	}
}

func TestParseRetryAfter_HeaderHTTPDate(t *testing.T) {
	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	resp := &http.Response{Header: http.Header{"Retry-After": []string{future}}}
	d := ParseRetryAfter(resp, nil)
	if d == nil || *d < 25*time.Second || *d > 31*time.Second {
		t.Errorf("expected ~30s, got %v", d)
	}
}

func TestParseRetryAfter_BodyRetryAfterMs(t *testing.T) {
	body := []byte(`{"error":{"retry_after_ms":1500}}`)
	d := ParseRetryAfter(nil, body)
	if d == nil || *d != 1500*time.Millisecond {
		t.Errorf("expected 1500ms, got %v", d)
	}
}

func TestParseRetryAfter_BodyRetryAfterSeconds(t *testing.T) {
	body := []byte(`{"retry_after_seconds": 4}`)
	d := ParseRetryAfter(nil, body)
	if d == nil || *d != 4*time.Second {
		t.Errorf("expected 4s, got %v", d)
	}
}

func TestParseRetryAfter_BodyCamelCase(t *testing.T) {
	body := []byte(`{"error":{"retryAfter": 2}}`)
	d := ParseRetryAfter(nil, body)
	if d == nil || *d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
}

func TestParseRetryAfter_HeaderWinsOverBody(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"5"}}}
	body := []byte(`{"retry_after_seconds": 99}`)
	d := ParseRetryAfter(resp, body)
	if d == nil || *d != 5*time.Second {
		t.Errorf("expected header's 5s to win, got %v", d)
	}
}

func TestParseRetryAfter_NothingPresent(t *testing.T) {
	if d := ParseRetryAfter(nil, nil); d != nil {
		t.Errorf("expected nil, got %v", d)
	}
}
