package model

type Dish struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price,omitempty"`
	Description string   `json:"description,omitempty"`
}

// AllocationRule tells how many dishes of each category a visitor has to
// pick. A rule applies when the answer of the element referenced by
// SourceReferenceID equals MatchValue; the IsDefault rule applies otherwise.
type AllocationRule struct {
	ID                   ID             `json:"id,omitempty"`
	SourceReferenceID    string         `json:"sourceReferenceId,omitempty"`
	MatchValue           string         `json:"matchValue,omitempty"`
	IsDefault            bool           `json:"isDefault,omitempty"`
	SelectionPerCategory map[string]int `json:"selectionPerCategory"`
}
