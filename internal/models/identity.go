package models

// CredentialKind identifies which credential shape produced an identity.
type CredentialKind string

const (
	CredentialPrimaryKey   CredentialKind = "primary_key"
	CredentialSecondaryKey CredentialKind = "secondary_key"
	CredentialSessionToken CredentialKind = "session_token"
)

// ResolvedIdentity is the request-scoped result of credential resolution.
// It is never persisted; it is constructed fresh for every request or
// realtime handshake and only ever for an active tenant.
type ResolvedIdentity struct {
	Tenant      *Tenant
	Permissions PermissionSet
	RateLimit   int
	Kind        CredentialKind
}

// HasPermission reports whether the identity may use the named capability.
// Enterprise tenants bypass all named-permission checks.
func (id *ResolvedIdentity) HasPermission(name string) bool {
	if id.Tenant != nil && id.Tenant.Plan == PlanEnterprise {
		return true
	}
	return id.Permissions.Grants(name)
}
