package form

import (
	"fmt"
	"math"
	"mime"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/catering-order/model"
)

var (
	reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	rePhone = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{5,19}$`)
)

// ValidationError is a recoverable problem with one answer.
type ValidationError struct {
	Key    model.Key
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func invalid(el model.Element, reason string, args ...any) error {
	return &ValidationError{Key: model.KeyOf(el), Reason: fmt.Sprintf(reason, args...)}
}

// DecodeAnswer parses the JSON value sent for el and checks it against the
// element constraints.
func DecodeAnswer(el model.Element, raw []byte) (model.Answer, error) {
	switch el := el.(type) {
	case *model.SingleChoice:
		var id model.ID
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, invalid(el, "expected a choice id")
		}
		if _, ok := model.ChoiceName(el.Choices, id); !ok {
			return nil, invalid(el, "unknown choice %q", id)
		}
		return model.Text(id), nil

	case *model.FreeText:
		text, err := decodeText(raw, el.InputType == model.InputNumber)
		if err != nil {
			return nil, invalid(el, "expected text")
		}
		if err := checkFreeText(el, text); err != nil {
			return nil, err
		}
		return model.Text(text), nil

	case *model.MultiSelect:
		var ids []model.ID
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, invalid(el, "expected a list of choice ids")
		}
		seen := map[model.ID]bool{}
		choices := model.Choices{}
		for _, id := range ids {
			if _, ok := model.ChoiceName(el.Choices, id); !ok {
				return nil, invalid(el, "unknown choice %q", id)
			}
			if !seen[id] {
				seen[id] = true
				choices = append(choices, id)
			}
		}
		if el.MaxSelected > 0 && len(choices) > el.MaxSelected {
			return nil, invalid(el, "at most %d choices allowed", el.MaxSelected)
		}
		return choices, nil

	case *model.RangeSlider:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, invalid(el, "expected a number")
		}
		if n < el.Min || n > el.Max {
			return nil, invalid(el, "must be between %g and %g", el.Min, el.Max)
		}
		if el.Step > 0 {
			steps := (n - el.Min) / el.Step
			if math.Abs(steps-math.Round(steps)) > 1e-9 {
				return nil, invalid(el, "must be a multiple of %g", el.Step)
			}
		}
		return model.Number(n), nil

	case *model.DatePick:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid(el, "expected a date")
		}
		d, err := parseDate(s)
		if err != nil {
			return nil, invalid(el, "invalid date %q", s)
		}
		return model.Date(d), nil

	case *model.LongText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid(el, "expected text")
		}
		if el.MaxLength > 0 && utf8.RuneCountInString(s) > el.MaxLength {
			return nil, invalid(el, "longer than %d characters", el.MaxLength)
		}
		return model.Text(s), nil

	case *model.FileAttach:
		var f model.File
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, invalid(el, "expected a file")
		}
		if err := CheckFile(el, f.Name, f.ContentType, f.Size); err != nil {
			return nil, err
		}
		return f, nil

	case *model.ContactGroup:
		var values map[model.ID]string
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, invalid(el, "expected contact fields")
		}
		if err := checkContact(el, values); err != nil {
			return nil, err
		}
		return model.Contact(values), nil

	case *model.DishSelection:
		var qty map[model.ID]int
		if err := json.Unmarshal(raw, &qty); err != nil {
			return nil, invalid(el, "expected dish quantities")
		}
		for id, n := range qty {
			if _, ok := el.Dish(id); !ok {
				return nil, invalid(el, "unknown dish %q", id)
			}
			if n < 0 {
				return nil, invalid(el, "negative quantity for dish %q", id)
			}
		}
		return model.Dishes(qty), nil

	case *model.YesNo:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, invalid(el, "expected yes or no")
		}
		return model.Bool(b), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownElement, model.KeyOf(el))
}

func decodeText(raw []byte, allowNumber bool) (string, error) {
	var s string
	err := json.Unmarshal(raw, &s)
	if err == nil || !allowNumber {
		return s, err
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return strconv.FormatFloat(n, 'f', -1, 64), nil
}

func checkFreeText(el *model.FreeText, text string) error {
	if el.MaxLength > 0 && utf8.RuneCountInString(text) > el.MaxLength {
		return invalid(el, "longer than %d characters", el.MaxLength)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	switch el.InputType {
	case model.InputEmail:
		if !reEmail.MatchString(trimmed) {
			return invalid(el, "invalid e-mail address")
		}
	case model.InputPhone:
		if !rePhone.MatchString(trimmed) {
			return invalid(el, "invalid phone number")
		}
	case model.InputNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return invalid(el, "not a number")
		}
		if el.Min != nil && n < *el.Min {
			return invalid(el, "must be at least %g", *el.Min)
		}
		if el.Max != nil && n > *el.Max {
			return invalid(el, "must be at most %g", *el.Max)
		}
	}
	return nil
}

func checkContact(el *model.ContactGroup, values map[model.ID]string) error {
	var result *multierror.Error

	fields := map[model.ID]model.ContactField{}
	for _, f := range el.Fields {
		fields[f.ID] = f
	}

	for id, value := range values {
		f, ok := fields[id]
		if !ok {
			result = multierror.Append(result, invalid(el, "unknown field %q", id))
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch f.Type {
		case model.InputEmail:
			if !reEmail.MatchString(value) {
				result = multierror.Append(result, invalid(el, "%s: invalid e-mail address", f.Label))
			}
		case model.InputPhone:
			if !rePhone.MatchString(value) {
				result = multierror.Append(result, invalid(el, "%s: invalid phone number", f.Label))
			}
		}
	}

	return result.ErrorOrNil()
}

// CheckFile validates an uploaded file against the element limits.
func CheckFile(el *model.FileAttach, name, contentType string, size int64) error {
	if name == "" {
		return invalid(el, "missing file name")
	}
	if el.MaxSizeMB > 0 && float64(size) > el.MaxSizeMB*1024*1024 {
		return invalid(el, "file larger than %g MB", el.MaxSizeMB)
	}
	if len(el.AllowedTypes) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	ext := strings.ToLower(name[strings.LastIndex(name, ".")+1:])
	for _, allowed := range el.AllowedTypes {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		switch {
		case allowed == mediaType:
			return nil
		case strings.HasSuffix(allowed, "/*") && strings.HasPrefix(mediaType, strings.TrimSuffix(allowed, "*")):
			return nil
		case strings.TrimPrefix(allowed, ".") == ext && strings.Contains(name, "."):
			return nil
		}
	}
	return invalid(el, "file type not allowed")
}

func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(model.DateLayout, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}
