package model

// Meta describes one page of a list result.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Page is a list result together with its pagination metadata. Fields, when
// set, is the projection requested by the client.
type Page[T any] struct {
	Items  []T
	Meta   Meta
	Fields []string
}
