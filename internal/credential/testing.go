package credential

import "sync"

// Static is an in-memory Provider test double seeded with fixed
// credentials, used by internal/handler's tests in place of a real
// file-backed or vault-backed implementation.
type Static struct {
	mu    sync.Mutex
	creds map[string][]Credential
}

// NewStatic builds a Static provider from an initial provider -> accounts
// map. Callers may mutate it further via Set.
func NewStatic(creds map[string][]Credential) *Static {
	if creds == nil {
		creds = map[string][]Credential{}
	}
	return &Static{creds: creds}
}

// Set replaces the credential list for providerID.
func (s *Static) Set(providerID string, creds []Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[providerID] = creds
}

func (s *Static) GetCredential(providerID string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.creds[providerID]
	if len(list) == 0 {
		return nil, nil
	}
	c := list[0]
	return &c, nil
}

func (s *Static) GetAccessToken(providerID string) (string, error) {
	c, err := s.GetCredential(providerID)
	if err != nil || c == nil {
		return "", err
	}
	if c.Kind == KindOAuth {
		return c.AccessToken, nil
	}
	return c.APIKey, nil
}

func (s *Static) GetAllCredentials() (map[string][]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]Credential, len(s.creds))
	for k, v := range s.creds {
		out[k] = append([]Credential(nil), v...)
	}
	return out, nil
}

func (s *Static) EnsureFresh(providerID string) ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Credential(nil), s.creds[providerID]...), nil
}
