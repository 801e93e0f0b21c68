package models

// Capability names known to the platform. Permission sets on API keys are
// validated against this registry when keys are created, not re-validated at
// every check.
const (
	CapabilityExecuteQueries    = "execute_queries"
	CapabilityManageKeys        = "manage_keys"
	CapabilityManageConnections = "manage_connections"
	CapabilityExportCode        = "export_code"
	CapabilityViewUsage         = "view_usage"
)

var knownCapabilities = map[string]bool{
	CapabilityExecuteQueries:    true,
	CapabilityManageKeys:        true,
	CapabilityManageConnections: true,
	CapabilityExportCode:        true,
	CapabilityViewUsage:         true,
}

// ValidCapability reports whether name is a registered capability.
func ValidCapability(name string) bool {
	return knownCapabilities[name]
}

// PermissionSet maps capability names to grants. Stored as JSONB on api_keys.
type PermissionSet map[string]bool

// Grants reports whether the set explicitly grants name.
func (p PermissionSet) Grants(name string) bool {
	return p[name]
}
