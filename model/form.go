package model

import "time"

// FormRecord is a form document as stored by the content source.
type FormRecord struct {
	ID        int       `json:"id,omitempty"`
	Version   int       `json:"version,omitempty"`
	Slug      string    `json:"slug"`
	Locale    string    `json:"locale"`
	Title     string    `json:"title"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	Document  *Schema   `json:"document,omitempty"`
}
