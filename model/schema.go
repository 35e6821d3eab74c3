package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
)

var (
	ErrNoSteps          = errors.New("schema has no steps")
	ErrDuplicateStep    = errors.New("duplicate step id")
	ErrDuplicateElement = errors.New("duplicate element key")
	ErrNoDishes         = errors.New("dish selection has no dishes")
	ErrNoChoices        = errors.New("choice element has no choices")
)

// ID is a CMS identifier. The content source emits numeric ids for
// components and string ids for documents, both decode to the same type.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return fmt.Errorf("invalid id %s", data)
		}
		*id = ID(data)
	}
	return nil
}

// Schema is a multi-step form as delivered by the content source.
type Schema struct {
	Slug        string `json:"slug"`
	Locale      string `json:"locale"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AllowSkip   bool   `json:"allowSkip,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Steps       []Step `json:"steps"`
}

type Step struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Elements    []Element `json:"elements"`
}

// Validate reports every structural problem of the schema at once.
func (s *Schema) Validate() error {
	var result *multierror.Error

	if len(s.Steps) == 0 {
		result = multierror.Append(result, ErrNoSteps)
	}

	steps := map[ID]bool{}
	keys := map[Key]bool{}
	for i, step := range s.Steps {
		if steps[step.ID] {
			result = multierror.Append(result, fmt.Errorf("step %d: %w %q", i, ErrDuplicateStep, step.ID))
		}
		steps[step.ID] = true

		for _, el := range step.Elements {
			key := KeyOf(el)
			if keys[key] {
				result = multierror.Append(result, fmt.Errorf("step %q: %w %s", step.ID, ErrDuplicateElement, key))
			}
			keys[key] = true

			switch el := el.(type) {
			case *DishSelection:
				if len(el.Dishes) == 0 {
					result = multierror.Append(result, fmt.Errorf("step %q: %s: %w", step.ID, key, ErrNoDishes))
				}
			case *SingleChoice:
				if len(el.Choices) == 0 {
					result = multierror.Append(result, fmt.Errorf("step %q: %s: %w", step.ID, key, ErrNoChoices))
				}
			case *MultiSelect:
				if len(el.Choices) == 0 {
					result = multierror.Append(result, fmt.Errorf("step %q: %s: %w", step.ID, key, ErrNoChoices))
				}
			}
		}
	}

	return result.ErrorOrNil()
}

// Elements walks the schema in step-then-element order.
func (s *Schema) Elements() []Element {
	var all []Element
	for _, step := range s.Steps {
		all = append(all, step.Elements...)
	}
	return all
}

func (s Step) MarshalJSON() ([]byte, error) {
	elements := make([]json.RawMessage, 0, len(s.Elements))
	for _, el := range s.Elements {
		raw, err := encodeElement(el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, raw)
	}

	return json.Marshal(struct {
		ID          ID                `json:"id"`
		Title       string            `json:"title"`
		Description string            `json:"description,omitempty"`
		Elements    []json.RawMessage `json:"elements"`
	}{s.ID, s.Title, s.Description, elements})
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          ID                `json:"id"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Elements    []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ID = raw.ID
	s.Title = raw.Title
	s.Description = raw.Description
	s.Elements = make([]Element, 0, len(raw.Elements))
	for i, r := range raw.Elements {
		el, err := decodeElement(r)
		if err != nil {
			return fmt.Errorf("step %q element %d: %w", raw.ID, i, err)
		}
		s.Elements = append(s.Elements, el)
	}
	return nil
}

const componentPrefix = "form."

func decodeElement(data []byte) (Element, error) {
	var head struct {
		Component string `json:"__component"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	el := NewElement(Kind(strings.TrimPrefix(head.Component, componentPrefix)))
	if el == nil {
		return nil, fmt.Errorf("unknown component %q", head.Component)
	}
	if err := json.Unmarshal(data, el); err != nil {
		return nil, err
	}
	return el, nil
}

func encodeElement(el Element) (json.RawMessage, error) {
	body, err := json.Marshal(el)
	if err != nil {
		return nil, err
	}

	head := fmt.Sprintf(`{"__component":%q`, componentPrefix+string(el.Kind()))
	if len(body) <= 2 {
		return json.RawMessage(head + "}"), nil
	}
	return json.RawMessage(head + "," + string(body[1:])), nil
}

// ParseSchema decodes a CMS form document.
func ParseSchema(data []byte) (*Schema, error) {
	schema := &Schema{}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, err
	}
	return schema, nil
}
