package cooldown

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// ParseRetryAfter reads a Retry-After duration from an upstream 429/503
// response, per spec §4.4: the header may be a decimal seconds count or an
// HTTP-date, and several vendors instead (or additionally) embed the wait
// time in the JSON error body under one of a few common field names. Header
// wins when both are present. Returns nil when nothing usable was found.
func ParseRetryAfter(resp *http.Response, body []byte) *time.Duration {
	if resp != nil {
		if d := parseHeaderRetryAfter(resp.Header.Get("Retry-After")); d != nil {
			return d
		}
	}
	return parseBodyRetryAfter(body)
}

func parseHeaderRetryAfter(value string) *time.Duration {
	if value == "" {
		return nil
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		d := time.Duration(secs * float64(time.Second))
		return &d
	}
	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}

// retryAfterBody covers the handful of JSON shapes vendors nest a retry hint
// in. All fields are optional; the first one present wins.
type retryAfterBody struct {
	Error *struct {
		RetryAfterMs      *float64 `json:"retry_after_ms"`
		RetryAfterSeconds *float64 `json:"retry_after_seconds"`
		RetryAfter        *float64 `json:"retryAfter"`
	} `json:"error"`
	RetryAfterMs      *float64 `json:"retry_after_ms"`
	RetryAfterSeconds *float64 `json:"retry_after_seconds"`
	RetryAfter        *float64 `json:"retryAfter"`
}

func parseBodyRetryAfter(body []byte) *time.Duration {
	if len(body) == 0 {
		return nil
	}
	var parsed retryAfterBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	if parsed.Error != nil {
		if d := fromMillis(parsed.Error.RetryAfterMs); d != nil {
			return d
		}
		if d := fromSeconds(parsed.Error.RetryAfterSeconds); d != nil {
			return d
		}
		if d := fromSeconds(parsed.Error.RetryAfter); d != nil {
			return d
		}
	}
	if d := fromMillis(parsed.RetryAfterMs); d != nil {
		return d
	}
	if d := fromSeconds(parsed.RetryAfterSeconds); d != nil {
		return d
	}
	if d := fromSeconds(parsed.RetryAfter); d != nil {
		return d
	}
	return nil
}

func fromMillis(v *float64) *time.Duration {
	if v == nil {
		return nil
	}
	d := time.Duration(*v * float64(time.Millisecond))
	return &d
}

func fromSeconds(v *float64) *time.Duration {
	if v == nil {
		return nil
	}
	d := time.Duration(*v * float64(time.Second))
	return &d
}
