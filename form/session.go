package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/model"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownElement    = errors.New("unknown element")
	ErrNotOnLastStep     = errors.New("submission is only possible from the last step")
	ErrAlreadySubmitting = errors.New("submission in progress")
	ErrAlreadySubmitted  = errors.New("form already submitted")
	ErrNoRecipient       = errors.New("no recipient configured")
)

// IncompleteError is returned by Submit when a step still misses answers.
type IncompleteError struct {
	Step int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("step %d is incomplete", e.Step)
}

// Relay delivers a formatted submission to its recipient.
type Relay interface {
	Send(ctx context.Context, recipient, subject string, payload Payload) error
}

type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitSubmitting SubmitState = "submitting"
	SubmitSuccess    SubmitState = "success"
	SubmitError      SubmitState = "error"
)

// Session is one visitor filling one form. Answers live only as long as the
// session does.
type Session struct {
	ID     string
	Schema *model.Schema
	Locale string

	mu          sync.Mutex
	index       *Index
	answers     *Answers
	nav         *Navigator
	allocations map[model.ID]*Allocation
	submit      SubmitState
	submitErr   string
	touched     time.Time
}

// NewSession validates schema and opens a session on its first step.
func NewSession(id string, schema *model.Schema, locale string, opts ...NavigatorOption) (*Session, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if locale == "" {
		locale = schema.Locale
	}

	s := &Session{
		ID:          id,
		Schema:      schema,
		Locale:      locale,
		index:       NewIndex(schema),
		answers:     NewAnswers(),
		allocations: map[model.ID]*Allocation{},
		submit:      SubmitIdle,
	}
	s.nav = NewNavigator(len(schema.Steps), schema.AllowSkip, s.stepComplete, opts...)

	for _, el := range schema.Elements() {
		if dishes, ok := el.(*model.DishSelection); ok {
			s.allocations[dishes.ID] = NewAllocation(dishes)
		}
	}
	s.syncAllocations()

	return s, nil
}

func (s *Session) stepComplete(step int) bool {
	return IsStepComplete(s.Schema.Steps[step], s.answers)
}

func (s *Session) syncAllocations() {
	for id, a := range s.allocations {
		if a.Sync(s.answers, s.index) {
			log.Debugf("session %s: dish selection %s pre-filled with %v", s.ID, id, a.Limits())
		}
	}
}

func (s *Session) element(kind model.Kind, id model.ID) (model.Element, error) {
	el, ok := s.index.Element(model.Key{Kind: kind, ID: id})
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s", ErrUnknownElement, kind, id)
	}
	return el, nil
}

// SetAnswer validates raw against the element and records it.
func (s *Session) SetAnswer(kind model.Kind, id model.ID, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.element(kind, id)
	if err != nil {
		return err
	}
	v, err := DecodeAnswer(el, raw)
	if err != nil {
		return err
	}

	s.answers.Set(model.KeyOf(el), v)
	s.syncAllocations()
	return nil
}

// SetFile records an uploaded file for a file element.
func (s *Session) SetFile(id model.ID, file model.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.element(model.KindFileAttach, id)
	if err != nil {
		return err
	}
	if err := CheckFile(el.(*model.FileAttach), file.Name, file.ContentType, file.Size); err != nil {
		return err
	}

	s.answers.Set(model.KeyOf(el), file)
	s.syncAllocations()
	return nil
}

// FileElement returns the file element with the given id, for upload checks
// before the file is stored.
func (s *Session) FileElement(id model.ID) (*model.FileAttach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.element(model.KindFileAttach, id)
	if err != nil {
		return nil, err
	}
	return el.(*model.FileAttach), nil
}

func (s *Session) ClearAnswer(kind model.Kind, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.element(kind, id)
	if err != nil {
		return err
	}

	s.answers.Clear(model.KeyOf(el))
	s.syncAllocations()
	return nil
}

// AdjustDish moves the quantity of one dish of a dish selection by delta.
func (s *Session) AdjustDish(elementID, dishID model.ID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[elementID]
	if !ok {
		return fmt.Errorf("%w: %s:%s", ErrUnknownElement, model.KindDishSelection, elementID)
	}
	return a.Adjust(s.answers, dishID, delta)
}

func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Next()
}

func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Prev()
}

func (s *Session) GoTo(step int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.GoTo(step)
}

// Payload formats the current answers.
func (s *Session) Payload() Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Format(s.Schema, s.answers, s.Locale)
}

// Submit formats the answers and hands them to relay. It is allowed from
// the last step only, once every step is complete. A failed relay leaves the
// answers in place so the visitor can try again.
func (s *Session) Submit(ctx context.Context, relay Relay, recipient string) error {
	s.mu.Lock()
	switch {
	case !s.nav.CanSubmit():
		s.mu.Unlock()
		return ErrNotOnLastStep
	case s.submit == SubmitSubmitting:
		s.mu.Unlock()
		return ErrAlreadySubmitting
	case s.submit == SubmitSuccess:
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if step := FirstIncomplete(s.Schema, s.answers); step >= 0 {
		s.mu.Unlock()
		return &IncompleteError{Step: step}
	}
	if s.Schema.Recipient != "" {
		recipient = s.Schema.Recipient
	}
	if recipient == "" {
		s.mu.Unlock()
		return ErrNoRecipient
	}

	payload := Format(s.Schema, s.answers, s.Locale)
	s.submit = SubmitSubmitting
	s.submitErr = ""
	s.mu.Unlock()

	err := relay.Send(ctx, recipient, s.Schema.Title, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.submit = SubmitError
		s.submitErr = err.Error()
		return err
	}
	s.submit = SubmitSuccess
	return nil
}

type StepView struct {
	ID       model.ID `json:"id"`
	Title    string   `json:"title"`
	Complete bool     `json:"complete"`
}

// View is the state of a session as shown to the visitor.
type View struct {
	ID          string                      `json:"id"`
	Slug        string                      `json:"slug"`
	Locale      string                      `json:"locale"`
	Title       string                      `json:"title"`
	Step        int                         `json:"step"`
	Direction   string                      `json:"direction"`
	Transition  string                      `json:"transition"`
	Steps       []StepView                  `json:"steps"`
	CanSubmit   bool                        `json:"canSubmit"`
	Answers     map[string]model.Answer     `json:"answers"`
	Dishes      map[string][]CategoryStatus `json:"dishes,omitempty"`
	Submission  SubmitState                 `json:"submission"`
	SubmitError string                      `json:"submitError,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:          s.ID,
		Slug:        s.Schema.Slug,
		Locale:      s.Locale,
		Title:       s.Schema.Title,
		Step:        s.nav.Current(),
		Direction:   s.nav.Direction().String(),
		Transition:  s.nav.State().String(),
		CanSubmit:   s.nav.CanSubmit() && s.submit != SubmitSubmitting && s.submit != SubmitSuccess,
		Answers:     s.answers.Snapshot(),
		Submission:  s.submit,
		SubmitError: s.submitErr,
	}
	for i, step := range s.Schema.Steps {
		v.Steps = append(v.Steps, StepView{
			ID:       step.ID,
			Title:    step.Title,
			Complete: s.stepComplete(i),
		})
	}
	if len(s.allocations) > 0 {
		v.Dishes = map[string][]CategoryStatus{}
		for id, a := range s.allocations {
			v.Dishes[string(id)] = a.Statuses(s.answers, s.Locale)
		}
	}
	return v
}
