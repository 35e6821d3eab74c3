package model

import (
	"time"

	"github.com/goccy/go-json"
)

const DateLayout = "2006-01-02"

// Answer is the value recorded for one element. Its concrete type depends on
// the element variant.
type Answer interface {
	answer()
}

type (
	// Text holds free text, phone numbers, e-mails and single choice ids.
	Text string
	// Number holds slider positions.
	Number float64
	Date   time.Time
	Bool   bool
	// Choices holds the selected ids of a multi select, in selection order.
	Choices []ID
	// Contact maps contact sub-field ids to their values.
	Contact map[ID]string
	// Dishes maps dish ids to the ordered quantity.
	Dishes map[ID]int
)

type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	URL         string `json:"url,omitempty"`
}

func (Text) answer()    {}
func (Number) answer()  {}
func (Date) answer()    {}
func (Bool) answer()    {}
func (Choices) answer() {}
func (Contact) answer() {}
func (Dishes) answer()  {}
func (File) answer()    {}

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) String() string { return time.Time(d).Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Clone returns a copy that can be mutated without touching d.
func (d Dishes) Clone() Dishes {
	clone := make(Dishes, len(d))
	for id, qty := range d {
		clone[id] = qty
	}
	return clone
}
