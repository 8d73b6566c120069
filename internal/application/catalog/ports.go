package catalog

// IDGenerator mints identifiers for new catalog documents.
type IDGenerator interface {
	NewID() string
}
