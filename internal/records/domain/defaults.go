package domain

// DefaultRecordType is the record type tag given to provisioned placeholder records.
const DefaultRecordType = "credentials"

// DefaultDisplayNames lists the placeholder records seeded for every new owner.
// Provisioning is idempotent per (owner, display name).
var DefaultDisplayNames = []string{
	"Gate Code",
	"House Code",
}
