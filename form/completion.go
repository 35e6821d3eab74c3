package form

import (
	"strings"

	"github.com/mbolis/catering-order/model"
)

// IsStepComplete reports whether every element of step is satisfied by
// answers. A step without elements is always complete.
func IsStepComplete(step model.Step, answers *Answers) bool {
	for _, el := range step.Elements {
		if !isElementComplete(el, answers) {
			return false
		}
	}
	return true
}

func isElementComplete(el model.Element, answers *Answers) bool {
	if group, ok := el.(*model.ContactGroup); ok {
		v, _ := answers.Of(group)
		contact, _ := v.(model.Contact)
		for _, f := range group.Fields {
			if f.Required && strings.TrimSpace(contact[f.ID]) == "" {
				return false
			}
		}
		return true
	}

	if !el.Base().IsRequired() {
		return true
	}

	v, ok := answers.Of(el)
	if !ok {
		return false
	}
	return isAnswered(v)
}

func isAnswered(v model.Answer) bool {
	switch v := v.(type) {
	case model.Text:
		return strings.TrimSpace(string(v)) != ""
	case model.Choices:
		return len(v) > 0
	case model.File:
		return v.Name != ""
	}
	return true
}

// FirstIncomplete returns the index of the first incomplete step, or -1.
func FirstIncomplete(schema *model.Schema, answers *Answers) int {
	for i, step := range schema.Steps {
		if !IsStepComplete(step, answers) {
			return i
		}
	}
	return -1
}
