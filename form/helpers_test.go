package form

import (
	"context"
	"errors"
	"sync"

	"github.com/mbolis/catering-order/model"
)

func boolPtr(b bool) *bool { return &b }

func base(id, question string) model.ElementBase {
	return model.ElementBase{ID: model.ID(id), Question: question}
}

// cateringSchema is a three step order form: event size and guests, a dish
// selection driven by both, and contact details.
func cateringSchema() *model.Schema {
	size := &model.SingleChoice{
		ElementBase: base("1", "Event size"),
		Choices:     []model.Choice{{ID: "10", Name: "Small"}, {ID: "11", Name: "Large"}},
	}
	size.ReferenceID = "size"

	guests := &model.FreeText{ElementBase: base("2", "Guests"), InputType: model.InputNumber}
	guests.ReferenceID = "guests"
	guests.Unit = "people"

	notes := &model.LongText{ElementBase: base("5", "Notes")}
	notes.Required = boolPtr(false)

	return &model.Schema{
		Slug:   "catering",
		Locale: LocaleEN,
		Title:  "Catering order",
		Steps: []model.Step{
			{ID: "event", Title: "Event", Elements: []model.Element{size, guests}},
			{ID: "menu", Title: "Menu", Elements: []model.Element{
				&model.DishSelection{
					ElementBase: base("3", "Dishes"),
					Dishes: []model.Dish{
						{ID: "d1", Name: "Soup", Category: "first"},
						{ID: "d2", Name: "Salad", Category: "first"},
						{ID: "d3", Name: "Roast", Category: "second"},
						{ID: "d4", Name: "Cake", Category: "sweet"},
					},
					Rules: []model.AllocationRule{
						{ID: "large", SourceReferenceID: "size", MatchValue: "Large", SelectionPerCategory: map[string]int{"first": 2, "second": 1}},
						{ID: "default", IsDefault: true, SelectionPerCategory: map[string]int{"first": 1}},
					},
					MultiplierReferenceID: "guests",
				},
			}},
			{ID: "contact", Title: "Contact", Elements: []model.Element{
				&model.ContactGroup{
					ElementBase: base("4", "Contact"),
					Fields: []model.ContactField{
						{ID: "1", Label: "Name", Required: true},
						{ID: "2", Label: "Phone", Type: model.InputPhone},
					},
				},
				notes,
			}},
		},
	}
}

type fakeRelay struct {
	mu        sync.Mutex
	err       error
	sent      []Payload
	recipient string
	subject   string
}

func (r *fakeRelay) Send(ctx context.Context, recipient, subject string, payload Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.recipient = recipient
	r.subject = subject
	r.sent = append(r.sent, payload)
	return nil
}

var errRelayDown = errors.New("relay down")
