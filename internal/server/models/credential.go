package models

import "time"

// CredentialType is a closed set of bearer-credential kinds. Issuance
// strategy and TTL are selected per type in the token service.
type CredentialType string

const (
	CredentialAccess     CredentialType = "ACCESS"
	CredentialRefresh    CredentialType = "REFRESH"
	CredentialActivation CredentialType = "ACTIVATION"
	CredentialRecovery   CredentialType = "RECOVERY"
)

// Credential is the persisted record of an issued bearer credential.
// Records are never deleted; revocation flips the flags and is permanent.
type Credential struct {
	ID        string
	Value     string
	Type      CredentialType
	OwnerID   string
	Revoked   bool
	Expired   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Usable reports whether the credential may still authenticate at the given
// instant. All three conditions are checked every time: the stored flags make
// revocation effective immediately, while ExpiresAt covers records whose
// lifetime lapsed without anyone flipping the Expired flag.
func (c *Credential) Usable(now time.Time) bool {
	return !c.Revoked && !c.Expired && now.Before(c.ExpiresAt)
}
