package credential

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	c := Credential{Kind: KindOAuth, Expiry: time.Now().Add(-time.Minute)}
	if !c.Expired() {
		t.Error("expected expired credential to report Expired()")
	}

	fresh := Credential{Kind: KindOAuth, Expiry: time.Now().Add(time.Hour)}
	if fresh.Expired() {
		t.Error("expected fresh credential to not report Expired()")
	}

	apiKey := Credential{Kind: KindAPIKey, APIKey: "sk-test"}
	if apiKey.Expired() {
		t.Error("api key credentials never expire")
	}
}

func TestStaticProvider(t *testing.T) {
	s := NewStatic(map[string][]Credential{
		"openai_chat": {{Kind: KindAPIKey, APIKey: "sk-1"}},
	})

	tok, err := s.GetAccessToken("openai_chat")
	if err != nil {
		t.Fatalf("GetAccessToken: %v", err)
	}
	if tok != "sk-1" {
		t.Errorf("got token %q", tok)
	}

	if tok, _ := s.GetAccessToken("unknown"); tok != "" {
		t.Errorf("expected empty token for unknown provider, got %q", tok)
	}

	all, err := s.GetAllCredentials()
	if err != nil {
		t.Fatalf("GetAllCredentials: %v", err)
	}
	if len(all["openai_chat"]) != 1 {
		t.Errorf("got %d credentials", len(all["openai_chat"]))
	}
}
