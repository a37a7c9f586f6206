// Package models contains domain models for the products service.
package models

// Document is a schema-less record read from a collection. Its shape is not validated
// or transformed on the way to the client.
type Document map[string]interface{}

// NewCollectionResult returns an empty, non-nil result so an empty collection
// encodes as a JSON array.
func NewCollectionResult(capacity int) []Document {
	if capacity < 0 {
		capacity = 0
	}
	return make([]Document, 0, capacity)
}
