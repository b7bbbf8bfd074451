package enum

// ClientStatus filters client listings by whether a tab has ever been settled
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusArchived ClientStatus = "archived"
	ClientStatusAll      ClientStatus = "all"
)

// ParseClientStatus maps a query value to a status, defaulting to all
func ParseClientStatus(s string) ClientStatus {
	switch ClientStatus(s) {
	case ClientStatusActive, ClientStatusArchived:
		return ClientStatus(s)
	default:
		return ClientStatusAll
	}
}

// Matches reports whether a client with the given archived flag passes the filter
func (s ClientStatus) Matches(archived bool) bool {
	switch s {
	case ClientStatusActive:
		return !archived
	case ClientStatusArchived:
		return archived
	default:
		return true
	}
}
