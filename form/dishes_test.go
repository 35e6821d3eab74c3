package form

import (
	"math"
	"reflect"
	"testing"

	"github.com/mbolis/catering-order/model"
)

func TestCategoryLimits(t *testing.T) {
	rule := &model.AllocationRule{SelectionPerCategory: map[string]int{"first": 3, "second": 1}}

	tests := []struct {
		name       string
		rule       *model.AllocationRule
		multiplier float64
		want       map[string]int
	}{
		{"no rule", nil, 4, map[string]int{}},
		{"unit", rule, 1, map[string]int{"first": 3, "second": 1}},
		{"scaled", rule, 4, map[string]int{"first": 12, "second": 4}},
		{"rounded", rule, 1.5, map[string]int{"first": 5, "second": 2}},
		{"negative", rule, -2, map[string]int{"first": 0, "second": 0}},
		{"huge", rule, 1e19, map[string]int{"first": math.MaxInt, "second": math.MaxInt}},
		{"huge negative", rule, -1e19, map[string]int{"first": 0, "second": 0}},
		{"infinite", rule, math.Inf(1), map[string]int{"first": math.MaxInt, "second": math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryLimits(tt.rule, tt.multiplier); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CategoryLimits() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrefill(t *testing.T) {
	dishes := []model.Dish{
		{ID: "d1", Category: "first"},
		{ID: "d2", Category: "first"},
		{ID: "d3", Category: "second"},
	}

	got := Prefill(dishes, map[string]int{"first": 4})
	want := model.Dishes{"d1": 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Prefill() = %v, want %v", got, want)
	}
	if got["d2"] != 0 {
		t.Errorf("second dish of the category got %d", got["d2"])
	}
}

func TestAdjustQuantity(t *testing.T) {
	qty := model.Dishes{"d1": 3}

	next := AdjustQuantity(qty, "d1", 2)
	if next["d1"] != 5 {
		t.Errorf("quantity = %d, want 5", next["d1"])
	}
	if qty["d1"] != 3 {
		t.Errorf("input modified: %v", qty)
	}

	for i := 0; i < 10; i++ {
		next = AdjustQuantity(next, "d1", -1)
		if next["d1"] < 0 {
			t.Fatalf("quantity dropped to %d", next["d1"])
		}
	}
	if next["d1"] != 0 {
		t.Errorf("quantity = %d, want 0", next["d1"])
	}

	if got := AdjustQuantity(nil, "d2", -3); got["d2"] != 0 {
		t.Errorf("quantity = %d, want 0", got["d2"])
	}
}

func TestAdjustQuantitySaturates(t *testing.T) {
	got := AdjustQuantity(model.Dishes{"d1": math.MaxInt}, "d1", 1)
	if got["d1"] != math.MaxInt {
		t.Errorf("quantity = %d, want MaxInt", got["d1"])
	}

	got = AdjustQuantity(got, "d1", -1)
	if got["d1"] != math.MaxInt-1 {
		t.Errorf("quantity = %d, want MaxInt-1", got["d1"])
	}
}

func TestCategoryStatusesSaturatedTotal(t *testing.T) {
	dishes := []model.Dish{{ID: "d1", Category: "first"}, {ID: "d2", Category: "first"}}
	qty := model.Dishes{"d1": math.MaxInt, "d2": 5}

	got := CategoryStatuses(dishes, qty, map[string]int{"first": 3}, LocaleEN)
	if got[0].Total != math.MaxInt || got[0].State != RequirementMet {
		t.Errorf("status = %+v, want a met requirement with a MaxInt total", got[0])
	}
}

func TestCategoryStatuses(t *testing.T) {
	dishes := []model.Dish{
		{ID: "d4", Category: "sweet"},
		{ID: "s1", Category: "snacks"},
		{ID: "d1", Category: "first"},
	}
	qty := model.Dishes{"d1": 3}
	limits := map[string]int{"first": 2, "second": 1, "drinks": 1}

	got := CategoryStatuses(dishes, qty, limits, LocaleEN)
	want := []CategoryStatus{
		{Category: "first", Label: "First course", Total: 3, Required: 2, Over: 1, State: RequirementMet},
		{Category: "second", Label: "Main course", Required: 1, Remaining: 1, State: RequirementUnmet},
		{Category: "sweet", Label: "Dessert", State: NoRequirement},
		{Category: "snacks", Label: "snacks", State: NoRequirement},
		{Category: "drinks", Label: "drinks", Required: 1, Remaining: 1, State: RequirementUnmet},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryStatuses() =\n%+v\nwant\n%+v", got, want)
	}

	lv := CategoryStatuses(dishes, qty, limits, LocaleLV)
	if lv[0].Label != "Pirmais ēdiens" {
		t.Errorf("label = %q, want Pirmais ēdiens", lv[0].Label)
	}
}

func allocationFixture() (*model.Schema, *model.DishSelection) {
	guests := &model.FreeText{ElementBase: base("1", "Guests"), InputType: model.InputNumber}
	guests.ReferenceID = "guests"

	dishes := &model.DishSelection{
		ElementBase: base("2", "Dishes"),
		Dishes: []model.Dish{
			{ID: "d1", Name: "Soup", Category: "first"},
			{ID: "d2", Name: "Salad", Category: "first"},
		},
		Rules:                 []model.AllocationRule{{IsDefault: true, SelectionPerCategory: map[string]int{"first": 4}}},
		MultiplierReferenceID: "guests",
	}
	return &model.Schema{Steps: []model.Step{{ID: "s", Elements: []model.Element{guests, dishes}}}}, dishes
}

func TestAllocationKeepsManualEdits(t *testing.T) {
	schema, el := allocationFixture()
	ix := NewIndex(schema)
	answers := NewAnswers()
	a := NewAllocation(el)

	if !a.Sync(answers, ix) {
		t.Fatal("first Sync() did not pre-fill")
	}
	quantities := func() model.Dishes {
		v, _ := answers.Of(el)
		return v.(model.Dishes)
	}
	if got := quantities(); got["d1"] != 4 || got["d2"] != 0 {
		t.Fatalf("pre-fill = %v, want d1:4", got)
	}

	if err := a.Adjust(answers, "d1", -2); err != nil {
		t.Fatal(err)
	}
	if err := a.Adjust(answers, "d2", 2); err != nil {
		t.Fatal(err)
	}

	if a.Sync(answers, ix) {
		t.Error("Sync() re-applied an unchanged configuration")
	}
	if got := quantities(); got["d1"] != 2 || got["d2"] != 2 {
		t.Errorf("manual edit lost: %v", got)
	}

	answers.Set(model.Key{Kind: model.KindFreeText, ID: "1"}, model.Text("2"))
	if !a.Sync(answers, ix) {
		t.Fatal("Sync() ignored a new multiplier")
	}
	if got := quantities(); got["d1"] != 8 || got["d2"] != 0 {
		t.Errorf("pre-fill = %v, want d1:8", got)
	}
}

func TestAllocationRejectsUnknownDish(t *testing.T) {
	_, el := allocationFixture()

	err := NewAllocation(el).Adjust(NewAnswers(), "nope", 1)
	if err == nil {
		t.Fatal("Adjust() accepted an unknown dish")
	}
}
