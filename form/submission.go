package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/mbolis/catering-order/model"
)

type Entry struct {
	Question string
	Answer   string
}

// Payload is the flat, ordered question → answer mapping handed to the
// notification relay. It encodes as a JSON object in question order.
type Payload []Entry

// Put appends an entry, or replaces the answer of an existing question in
// place.
func (p *Payload) Put(question, answer string) {
	for i := range *p {
		if (*p)[i].Question == question {
			(*p)[i].Answer = answer
			return
		}
	}
	*p = append(*p, Entry{question, answer})
}

func (p Payload) Get(question string) (string, bool) {
	for _, e := range p {
		if e.Question == question {
			return e.Answer, true
		}
	}
	return "", false
}

func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		q, err := json.Marshal(e.Question)
		if err != nil {
			return nil, err
		}
		a, err := json.Marshal(e.Answer)
		if err != nil {
			return nil, err
		}
		buf.Write(q)
		buf.WriteByte(':')
		buf.Write(a)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the order in which questions appear in the document.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("payload must be a JSON object")
	}

	*p = (*p)[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		question, _ := tok.(string)

		var answer any
		if err := dec.Decode(&answer); err != nil {
			return err
		}
		switch a := answer.(type) {
		case string:
			p.Put(question, a)
		case nil:
			p.Put(question, "")
		default:
			raw, _ := json.Marshal(a)
			p.Put(question, string(raw))
		}
	}
	_, err = dec.Token()
	return err
}

// Format turns the answers into a payload, in step-then-element order.
// Elements without an answer are skipped.
func Format(schema *model.Schema, answers *Answers, locale string) Payload {
	payload := Payload{}
	for _, el := range schema.Elements() {
		v, ok := answers.Of(el)
		if !ok {
			continue
		}

		question := el.Base().Prompt()
		if question == "" {
			question = model.KeyOf(el).String()
		}

		answer := FormatAnswer(el, v, locale)
		if unit := el.Base().Unit; unit != "" {
			answer += " " + unit
		}
		payload.Put(question, answer)
	}
	return payload
}

// FormatAnswer renders one answer for humans.
func FormatAnswer(el model.Element, v model.Answer, locale string) string {
	switch el := el.(type) {
	case *model.SingleChoice:
		if id, ok := v.(model.Text); ok {
			if name, ok := model.ChoiceName(el.Choices, model.ID(id)); ok {
				return name
			}
		}

	case *model.MultiSelect:
		if ids, ok := v.(model.Choices); ok {
			names := make([]string, len(ids))
			for i, id := range ids {
				name, ok := model.ChoiceName(el.Choices, id)
				if !ok {
					name = string(id)
				}
				names[i] = name
			}
			return strings.Join(names, ", ")
		}

	case *model.YesNo:
		if b, ok := v.(model.Bool); ok {
			yes, no := yesNo(locale)
			if el.YesLabel != "" {
				yes = el.YesLabel
			}
			if el.NoLabel != "" {
				no = el.NoLabel
			}
			if b {
				return yes
			}
			return no
		}

	case *model.DatePick:
		if d, ok := v.(model.Date); ok {
			return LongDate(d.Time(), locale)
		}

	case *model.FileAttach:
		if f, ok := v.(model.File); ok {
			return f.Name
		}

	case *model.ContactGroup:
		if contact, ok := v.(model.Contact); ok {
			parts := make([]string, len(el.Fields))
			for i, f := range el.Fields {
				value := strings.TrimSpace(contact[f.ID])
				if value == "" {
					value = "-"
				}
				parts[i] = f.Label + ": " + value
			}
			return strings.Join(parts, ", ")
		}

	case *model.DishSelection:
		if qty, ok := v.(model.Dishes); ok {
			var parts []string
			for _, dish := range el.Dishes {
				if n := qty[dish.ID]; n > 0 {
					parts = append(parts, dish.Name+": "+strconv.Itoa(n))
				}
			}
			return strings.Join(parts, ", ")
		}
	}

	return stringify(v)
}

func stringify(v model.Answer) string {
	switch v := v.(type) {
	case model.Text:
		return string(v)
	case model.Number:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case model.Bool:
		return strconv.FormatBool(bool(v))
	case model.Date:
		return v.String()
	case model.File:
		return v.Name
	case model.Choices:
		ids := make([]string, len(v))
		for i, id := range v {
			ids[i] = string(id)
		}
		return strings.Join(ids, ", ")
	}
	raw, _ := json.Marshal(v)
	return string(raw)
}
