package model

type Kind string

const (
	KindSingleChoice  Kind = "single-choice"
	KindFreeText      Kind = "free-text"
	KindMultiSelect   Kind = "multi-select"
	KindRangeSlider   Kind = "range-slider"
	KindDatePick      Kind = "date-pick"
	KindLongText      Kind = "long-text"
	KindFileAttach    Kind = "file-attach"
	KindContactGroup  Kind = "contact-group"
	KindDishSelection Kind = "dish-selection"
	KindYesNo         Kind = "yes-no"
)

// Element is one input of a form step. The set of implementations is closed:
// every variant lives in this file and embeds ElementBase.
type Element interface {
	Kind() Kind
	Base() *ElementBase
}

// NewElement returns an empty element of the given kind, or nil if the kind
// is unknown.
func NewElement(kind Kind) Element {
	switch kind {
	case KindSingleChoice:
		return &SingleChoice{}
	case KindFreeText:
		return &FreeText{}
	case KindMultiSelect:
		return &MultiSelect{}
	case KindRangeSlider:
		return &RangeSlider{}
	case KindDatePick:
		return &DatePick{}
	case KindLongText:
		return &LongText{}
	case KindFileAttach:
		return &FileAttach{}
	case KindContactGroup:
		return &ContactGroup{}
	case KindDishSelection:
		return &DishSelection{}
	case KindYesNo:
		return &YesNo{}
	}
	return nil
}

type ElementBase struct {
	ID          ID     `json:"id"`
	Question    string `json:"question,omitempty"`
	Title       string `json:"title,omitempty"`
	Required    *bool  `json:"required,omitempty"`
	Unit        string `json:"unit,omitempty"`
	ReferenceID string `json:"referenceId,omitempty"`
}

func (b *ElementBase) Base() *ElementBase { return b }

// IsRequired defaults to true unless the document says otherwise.
func (b *ElementBase) IsRequired() bool {
	return b.Required == nil || *b.Required
}

// Prompt is the question shown to the visitor, preferring the explicit
// question over the title.
func (b *ElementBase) Prompt() string {
	if b.Question != "" {
		return b.Question
	}
	return b.Title
}

type Choice struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// ChoiceName maps a choice id back to its display name.
func ChoiceName(choices []Choice, id ID) (string, bool) {
	for _, c := range choices {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

type SingleChoice struct {
	ElementBase
	Choices  []Choice `json:"choices"`
	Dropdown bool     `json:"dropdown,omitempty"`
}

type InputType string

const (
	InputText   InputType = "text"
	InputNumber InputType = "number"
	InputEmail  InputType = "email"
	InputPhone  InputType = "phone"
)

type FreeText struct {
	ElementBase
	InputType   InputType `json:"inputType,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	MaxLength   int       `json:"maxLength,omitempty"`
}

type MultiSelect struct {
	ElementBase
	Choices     []Choice `json:"choices"`
	MaxSelected int      `json:"maxSelected,omitempty"`
}

type RangeSlider struct {
	ElementBase
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step,omitempty"`
}

type DatePick struct {
	ElementBase
}

type LongText struct {
	ElementBase
	MaxLength int `json:"maxLength,omitempty"`
}

type FileAttach struct {
	ElementBase
	AllowedTypes []string `json:"allowedTypes,omitempty"`
	MaxSizeMB    float64  `json:"maxSizeMB,omitempty"`
}

type ContactField struct {
	ID       ID        `json:"id"`
	Label    string    `json:"label"`
	Type     InputType `json:"type,omitempty"`
	Required bool      `json:"required,omitempty"`
}

type ContactGroup struct {
	ElementBase
	Fields []ContactField `json:"fields"`
}

type DishSelection struct {
	ElementBase
	Dishes                []Dish           `json:"dishes"`
	Rules                 []AllocationRule `json:"rules,omitempty"`
	MultiplierReferenceID string           `json:"multiplierReferenceId,omitempty"`
}

// Dish returns the dish with the given id.
func (d *DishSelection) Dish(id ID) (Dish, bool) {
	for _, dish := range d.Dishes {
		if dish.ID == id {
			return dish, true
		}
	}
	return Dish{}, false
}

type YesNo struct {
	ElementBase
	YesLabel string `json:"yesLabel,omitempty"`
	NoLabel  string `json:"noLabel,omitempty"`
}

func (*SingleChoice) Kind() Kind  { return KindSingleChoice }
func (*FreeText) Kind() Kind      { return KindFreeText }
func (*MultiSelect) Kind() Kind   { return KindMultiSelect }
func (*RangeSlider) Kind() Kind   { return KindRangeSlider }
func (*DatePick) Kind() Kind      { return KindDatePick }
func (*LongText) Kind() Kind      { return KindLongText }
func (*FileAttach) Kind() Kind    { return KindFileAttach }
func (*ContactGroup) Kind() Kind  { return KindContactGroup }
func (*DishSelection) Kind() Kind { return KindDishSelection }
func (*YesNo) Kind() Kind         { return KindYesNo }

// Key addresses an answer in the answer store.
type Key struct {
	Kind Kind
	ID   ID
}

func KeyOf(el Element) Key {
	return Key{Kind: el.Kind(), ID: el.Base().ID}
}

func (k Key) String() string {
	return string(k.Kind) + ":" + string(k.ID)
}
