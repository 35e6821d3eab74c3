package form

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mbolis/catering-order/model"
)

func float(f float64) *float64 { return &f }

func TestDecodeAnswer(t *testing.T) {
	choices := []model.Choice{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}
	contact := &model.ContactGroup{Fields: []model.ContactField{
		{ID: "1", Label: "Name", Required: true},
		{ID: "2", Label: "E-mail", Type: model.InputEmail},
	}}

	tests := []struct {
		name    string
		el      model.Element
		raw     string
		want    model.Answer
		invalid bool
	}{
		{"choice", &model.SingleChoice{Choices: choices}, `"2"`, model.Text("2"), false},
		{"numeric choice id", &model.SingleChoice{Choices: choices}, `2`, model.Text("2"), false},
		{"unknown choice", &model.SingleChoice{Choices: choices}, `"3"`, nil, true},
		{"email", &model.FreeText{InputType: model.InputEmail}, `"jane@example.com"`, model.Text("jane@example.com"), false},
		{"bad email", &model.FreeText{InputType: model.InputEmail}, `"jane@"`, nil, true},
		{"empty email", &model.FreeText{InputType: model.InputEmail}, `""`, model.Text(""), false},
		{"phone", &model.FreeText{InputType: model.InputPhone}, `"+371 2000 0000"`, model.Text("+371 2000 0000"), false},
		{"bad phone", &model.FreeText{InputType: model.InputPhone}, `"call me"`, nil, true},
		{"number as string", &model.FreeText{InputType: model.InputNumber}, `"12"`, model.Text("12"), false},
		{"number as number", &model.FreeText{InputType: model.InputNumber}, `12`, model.Text("12"), false},
		{"number below min", &model.FreeText{InputType: model.InputNumber, Min: float(10)}, `"4"`, nil, true},
		{"number above max", &model.FreeText{InputType: model.InputNumber, Max: float(10)}, `"40"`, nil, true},
		{"text too long", &model.FreeText{MaxLength: 3}, `"ābcd"`, nil, true},
		{"multi select dedup", &model.MultiSelect{Choices: choices}, `["2","1","2"]`, model.Choices{"2", "1"}, false},
		{"multi select too many", &model.MultiSelect{Choices: choices, MaxSelected: 1}, `["1","2"]`, nil, true},
		{"slider", &model.RangeSlider{Min: 0, Max: 10, Step: 0.5}, `2.5`, model.Number(2.5), false},
		{"slider off step", &model.RangeSlider{Min: 0, Max: 10, Step: 0.5}, `2.3`, nil, true},
		{"slider out of range", &model.RangeSlider{Min: 0, Max: 10}, `11`, nil, true},
		{"date", &model.DatePick{}, `"2026-10-15"`, model.Date(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)), false},
		{"bad date", &model.DatePick{}, `"15.10.2026"`, nil, true},
		{"long text", &model.LongText{MaxLength: 5}, `"notes"`, model.Text("notes"), false},
		{"yes", &model.YesNo{}, `true`, model.Bool(true), false},
		{"not a bool", &model.YesNo{}, `"yes"`, nil, true},
		{"contact", contact, `{"1":"Jane","2":"jane@example.com"}`, model.Contact{"1": "Jane", "2": "jane@example.com"}, false},
		{"contact bad email", contact, `{"1":"Jane","2":"nope"}`, nil, true},
		{"contact unknown field", contact, `{"7":"x"}`, nil, true},
		{"dishes", &model.DishSelection{Dishes: []model.Dish{{ID: "d1"}}}, `{"d1":2}`, model.Dishes{"d1": 2}, false},
		{"negative dish", &model.DishSelection{Dishes: []model.Dish{{ID: "d1"}}}, `{"d1":-1}`, nil, true},
		{"unknown dish", &model.DishSelection{Dishes: []model.Dish{{ID: "d1"}}}, `{"d9":1}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAnswer(tt.el, []byte(tt.raw))
			if tt.invalid {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("DecodeAnswer() error = %v, want a validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeAnswer() error = %v", err)
			}
			if !equalAnswers(got, tt.want) {
				t.Errorf("DecodeAnswer() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func equalAnswers(a, b model.Answer) bool {
	if da, ok := a.(model.Date); ok {
		db, ok := b.(model.Date)
		return ok && da.Time().Equal(db.Time())
	}
	return reflect.DeepEqual(a, b)
}

func TestCheckFile(t *testing.T) {
	el := &model.FileAttach{AllowedTypes: []string{"image/*", ".pdf"}, MaxSizeMB: 1}

	tests := []struct {
		name        string
		file        string
		contentType string
		size        int64
		ok          bool
	}{
		{"image wildcard", "menu.png", "image/png", 100, true},
		{"extension", "menu.PDF", "application/octet-stream", 100, true},
		{"wrong type", "menu.docx", "application/msword", 100, false},
		{"too large", "menu.png", "image/png", 2 * 1024 * 1024, false},
		{"no name", "", "image/png", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFile(el, tt.file, tt.contentType, tt.size)
			if (err == nil) != tt.ok {
				t.Errorf("CheckFile() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
