package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/mbolis/catering-order/model"
)

// Index addresses the elements of a schema by reference id and by answer
// key. It is built once per schema load.
type Index struct {
	byRef map[string]model.Element
	byKey map[model.Key]model.Element
}

func NewIndex(schema *model.Schema) *Index {
	ix := &Index{
		byRef: map[string]model.Element{},
		byKey: map[model.Key]model.Element{},
	}
	for _, el := range schema.Elements() {
		if ref := el.Base().ReferenceID; ref != "" {
			// first declaration wins
			if _, ok := ix.byRef[ref]; !ok {
				ix.byRef[ref] = el
			}
		}
		ix.byKey[model.KeyOf(el)] = el
	}
	return ix
}

func (ix *Index) Ref(ref string) (model.Element, bool) {
	el, ok := ix.byRef[ref]
	return el, ok
}

func (ix *Index) Element(key model.Key) (model.Element, bool) {
	el, ok := ix.byKey[key]
	return el, ok
}

// ResolveRule returns the first rule whose referenced answer equals its
// match value, else the default rule, else nil.
func ResolveRule(rules []model.AllocationRule, answers *Answers, ix *Index) *model.AllocationRule {
	for i := range rules {
		rule := &rules[i]
		if rule.SourceReferenceID == "" {
			continue
		}
		el, ok := ix.Ref(rule.SourceReferenceID)
		if !ok {
			continue
		}
		v, ok := answers.Of(el)
		if !ok {
			continue
		}
		if s, ok := matchString(el, v); ok && s == rule.MatchValue {
			return rule
		}
	}

	for i := range rules {
		if rules[i].IsDefault {
			return &rules[i]
		}
	}
	return nil
}

// matchString renders v the way a rule match value is written. Single choice
// answers compare by display name.
func matchString(el model.Element, v model.Answer) (string, bool) {
	if choice, ok := el.(*model.SingleChoice); ok {
		if id, ok := v.(model.Text); ok {
			if name, ok := model.ChoiceName(choice.Choices, model.ID(id)); ok {
				return name, true
			}
			return string(id), true
		}
	}

	switch v := v.(type) {
	case model.Text:
		return string(v), true
	case model.Number:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), true
	case model.Bool:
		return strconv.FormatBool(bool(v)), true
	case model.Date:
		return v.String(), true
	}
	return "", false
}

// ResolveMultiplier reads the numeric answer referenced by the dish
// selection. Anything missing or non numeric yields 1.
func ResolveMultiplier(el *model.DishSelection, answers *Answers, ix *Index) float64 {
	if el.MultiplierReferenceID == "" {
		return 1
	}
	ref, ok := ix.Ref(el.MultiplierReferenceID)
	if !ok {
		return 1
	}
	v, ok := answers.Of(ref)
	if !ok {
		return 1
	}

	var n float64
	switch v := v.(type) {
	case model.Number:
		n = float64(v)
	case model.Text:
		var err error
		n, err = strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return 1
		}
	default:
		return 1
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 1
	}
	return n
}
