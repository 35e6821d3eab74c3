package form

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mbolis/catering-order/model"
)

func newSession(t *testing.T, schema *model.Schema) *Session {
	t.Helper()
	s, err := NewSession("test", schema, "")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func set(t *testing.T, s *Session, kind model.Kind, id model.ID, raw string) {
	t.Helper()
	if err := s.SetAnswer(kind, id, []byte(raw)); err != nil {
		t.Fatalf("SetAnswer(%s:%s, %s) error = %v", kind, id, raw, err)
	}
}

func dishes(s *Session, id model.ID) model.Dishes {
	v, _ := s.answers.Get(model.Key{Kind: model.KindDishSelection, ID: id})
	qty, _ := v.(model.Dishes)
	return qty
}

func TestEmailFormScenario(t *testing.T) {
	email := &model.FreeText{ElementBase: base("1", "Email"), InputType: model.InputEmail}
	schema := &model.Schema{
		Slug:   "contact",
		Title:  "Contact us",
		Steps:  []model.Step{{ID: "only", Elements: []model.Element{email}}},
		Locale: LocaleEN,
	}
	s := newSession(t, schema)

	if s.View().Steps[0].Complete {
		t.Fatal("step complete without an answer")
	}

	err := s.SetAnswer(model.KindFreeText, "1", []byte(`"not-an-email"`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("SetAnswer() error = %v, want a validation error", err)
	}
	if s.View().Steps[0].Complete {
		t.Fatal("invalid answer recorded")
	}

	set(t, s, model.KindFreeText, "1", `"jane@example.com"`)
	view := s.View()
	if !view.Steps[0].Complete || !view.CanSubmit {
		t.Fatalf("step complete = %v, can submit = %v", view.Steps[0].Complete, view.CanSubmit)
	}

	relay := &fakeRelay{}
	if err := s.Submit(context.Background(), relay, "orders@example.com"); err != nil {
		t.Fatal(err)
	}
	want := Payload{{"Email", "jane@example.com"}}
	if len(relay.sent) != 1 || !reflect.DeepEqual(relay.sent[0], want) {
		t.Errorf("sent = %v, want %v", relay.sent, want)
	}
	if relay.subject != "Contact us" || relay.recipient != "orders@example.com" {
		t.Errorf("sent %q to %q", relay.subject, relay.recipient)
	}
}

func TestSessionDishPrefill(t *testing.T) {
	s := newSession(t, cateringSchema())

	if got := dishes(s, "3"); got["d1"] != 1 {
		t.Fatalf("initial pre-fill = %v, want d1:1", got)
	}

	set(t, s, model.KindSingleChoice, "1", `"11"`)
	set(t, s, model.KindFreeText, "2", `"10"`)
	if got := dishes(s, "3"); got["d1"] != 20 || got["d3"] != 10 {
		t.Fatalf("pre-fill = %v, want d1:20 d3:10", got)
	}

	if err := s.AdjustDish("3", "d1", -5); err != nil {
		t.Fatal(err)
	}
	set(t, s, model.KindContactGroup, "4", `{"1":"Jane"}`)
	if got := dishes(s, "3"); got["d1"] != 15 {
		t.Fatalf("manual edit lost: %v", got)
	}

	set(t, s, model.KindFreeText, "2", `12`)
	if got := dishes(s, "3"); got["d1"] != 24 || got["d3"] != 12 {
		t.Errorf("pre-fill = %v, want d1:24 d3:12", got)
	}

	statuses := s.View().Dishes["3"]
	if len(statuses) != 3 || statuses[0].State != RequirementMet || statuses[2].State != NoRequirement {
		t.Errorf("statuses = %+v", statuses)
	}
}

func TestSessionHugeGuestCount(t *testing.T) {
	s := newSession(t, cateringSchema())

	set(t, s, model.KindFreeText, "2", `"1e19"`)
	if got := dishes(s, "3"); got["d1"] != math.MaxInt {
		t.Fatalf("pre-fill = %v, want d1 at MaxInt", got)
	}

	statuses := s.View().Dishes["3"]
	if statuses[0].Required != math.MaxInt || statuses[0].State != RequirementMet {
		t.Errorf("first course = %+v, want a met MaxInt requirement", statuses[0])
	}
}

func TestSessionUnknownElement(t *testing.T) {
	s := newSession(t, cateringSchema())

	err := s.SetAnswer(model.KindFreeText, "1", []byte(`"x"`))
	if !errors.Is(err, ErrUnknownElement) {
		t.Errorf("SetAnswer() error = %v, want ErrUnknownElement", err)
	}
	if err := s.AdjustDish("1", "d1", 1); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("AdjustDish() error = %v, want ErrUnknownElement", err)
	}
}

func TestSessionSubmit(t *testing.T) {
	s := newSession(t, cateringSchema())
	ctx := context.Background()
	relay := &fakeRelay{}

	if err := s.Submit(ctx, relay, "orders@example.com"); !errors.Is(err, ErrNotOnLastStep) {
		t.Fatalf("Submit() error = %v, want ErrNotOnLastStep", err)
	}

	if s.Next() {
		t.Fatal("left an incomplete step")
	}
	set(t, s, model.KindSingleChoice, "1", `"11"`)
	set(t, s, model.KindFreeText, "2", `"10"`)
	if !s.Next() || !s.Next() {
		t.Fatal("could not reach the last step")
	}

	var incomplete *IncompleteError
	if err := s.Submit(ctx, relay, "orders@example.com"); !errors.As(err, &incomplete) || incomplete.Step != 2 {
		t.Fatalf("Submit() error = %v, want step 2 incomplete", err)
	}

	set(t, s, model.KindContactGroup, "4", `{"1":"Jane"}`)
	if err := s.Submit(ctx, relay, ""); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("Submit() error = %v, want ErrNoRecipient", err)
	}

	relay.err = errRelayDown
	if err := s.Submit(ctx, relay, "orders@example.com"); !errors.Is(err, errRelayDown) {
		t.Fatalf("Submit() error = %v, want relay error", err)
	}
	view := s.View()
	if view.Submission != SubmitError || view.SubmitError == "" || !view.CanSubmit {
		t.Fatalf("after failure: %s %q can submit %v", view.Submission, view.SubmitError, view.CanSubmit)
	}
	if len(view.Answers) != 4 {
		t.Fatalf("answers after failure = %v", view.Answers)
	}

	relay.err = nil
	if err := s.Submit(ctx, relay, "orders@example.com"); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	want := Payload{
		{"Event size", "Large"},
		{"Guests", "10 people"},
		{"Dishes", "Soup: 20, Roast: 10"},
		{"Contact", "Name: Jane, Phone: -"},
	}
	if !reflect.DeepEqual(relay.sent[0], want) {
		t.Errorf("sent = %v, want %v", relay.sent[0], want)
	}
	if s.View().Submission != SubmitSuccess {
		t.Errorf("state = %s, want success", s.View().Submission)
	}

	if err := s.Submit(ctx, relay, "orders@example.com"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("Submit() error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSchemaRecipientWins(t *testing.T) {
	schema := &model.Schema{
		Title:     "Order",
		Recipient: "kitchen@example.com",
		Steps:     []model.Step{{ID: "s"}},
	}
	s := newSession(t, schema)
	relay := &fakeRelay{}

	if err := s.Submit(context.Background(), relay, "fallback@example.com"); err != nil {
		t.Fatal(err)
	}
	if relay.recipient != "kitchen@example.com" {
		t.Errorf("recipient = %q", relay.recipient)
	}
}

func TestNewSessionRejectsInvalidSchema(t *testing.T) {
	if _, err := NewSession("x", &model.Schema{}, LocaleEN); !errors.Is(err, model.ErrNoSteps) {
		t.Errorf("NewSession() error = %v, want ErrNoSteps", err)
	}
}
