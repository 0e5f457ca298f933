// Package credential defines the read-only credential provider contract
// this gateway consumes (spec §6, C10). Credential-file persistence and
// OAuth device/refresh flows are out of scope (spec §1 Non-goals) — this
// package only shares the Credential shape and the Provider interface a
// real implementation plugs in behind.
//
// The oauth variant's field names mirror golang.org/x/oauth2.Token
// (AccessToken/RefreshToken/Expiry) so a Provider backed by that package's
// TokenSource slots in without an adaptation layer, following the pattern
// of the teacher's provider packages (e.g. pkg/providers/bedrock) which
// accept pre-built credential structs rather than performing auth
// themselves.
package credential

import "time"

// Kind discriminates the Credential tagged union.
type Kind string

const (
	KindAPIKey Kind = "api"
	KindOAuth  Kind = "oauth"
)

// Credential is one account's authentication material for a provider.
type Credential struct {
	Kind Kind

	// api
	APIKey string

	// oauth — field names mirror golang.org/x/oauth2.Token.
	AccessToken    string
	RefreshToken   string
	Expiry         time.Time
	Email          string
	AccountID      string
	ProjectID      string
	QuotaProjectID string
}

// Expired reports whether an oauth credential's access token has already
// passed its expiry, per golang.org/x/oauth2.Token.Valid's convention.
func (c Credential) Expired() bool {
	return c.Kind == KindOAuth && !c.Expiry.IsZero() && !c.Expiry.After(time.Now())
}

// Provider is the read-only interface this gateway consumes to obtain
// credentials (spec §6's "Credential provider (consumed contract)"). A
// concrete implementation (file-backed, vault-backed, ...) lives outside
// this module's scope; internal/handler only calls through this
// interface.
type Provider interface {
	// GetCredential returns the first/primary credential for providerID,
	// or nil if none is configured.
	GetCredential(providerID string) (*Credential, error)

	// GetAccessToken returns a bearer token for providerID, or "" if the
	// provider has no credential.
	GetAccessToken(providerID string) (string, error)

	// GetAllCredentials returns every configured provider's ordered
	// credential list, used by the account rotator (C6) to know how many
	// accounts exist per provider.
	GetAllCredentials() (map[string][]Credential, error)

	// EnsureFresh returns providerID's credentials, refreshing any
	// expiring OAuth tokens first.
	EnsureFresh(providerID string) ([]Credential, error)
}
