package form

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/mbolis/catering-order/model"
)

// CategoryLimits scales the rule's per-category counts by multiplier.
// Negative results are clamped to zero. No rule means no requirements.
func CategoryLimits(rule *model.AllocationRule, multiplier float64) map[string]int {
	limits := map[string]int{}
	if rule == nil {
		return limits
	}
	for category, count := range rule.SelectionPerCategory {
		limits[category] = toLimit(math.Round(float64(count) * multiplier))
	}
	return limits
}

// toLimit converts a rounded product to an int in [0, MaxInt].
func toLimit(f float64) int {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	}
	return int(f)
}

// addSat adds b to a, saturating instead of wrapping around.
func addSat(a, b int) int {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt
	case b < 0 && sum > a:
		return math.MinInt
	}
	return sum
}

// Prefill gives the whole requirement of each category to the first dish of
// that category, in schema order.
func Prefill(dishes []model.Dish, limits map[string]int) model.Dishes {
	qty := model.Dishes{}
	filled := map[string]bool{}
	for _, dish := range dishes {
		limit := limits[dish.Category]
		if filled[dish.Category] || limit <= 0 {
			continue
		}
		filled[dish.Category] = true
		qty[dish.ID] = limit
	}
	return qty
}

// AdjustQuantity returns a copy of qty with dishID moved by delta. Quantities
// never drop below zero and stop at MaxInt.
func AdjustQuantity(qty model.Dishes, dishID model.ID, delta int) model.Dishes {
	next := qty.Clone()
	n := addSat(next[dishID], delta)
	if n < 0 {
		n = 0
	}
	next[dishID] = n
	return next
}

type CategoryState string

const (
	NoRequirement    CategoryState = "none"
	RequirementMet   CategoryState = "met"
	RequirementUnmet CategoryState = "unmet"
)

type CategoryStatus struct {
	Category  string        `json:"category"`
	Label     string        `json:"label"`
	Total     int           `json:"total"`
	Required  int           `json:"required"`
	Remaining int           `json:"remaining"`
	Over      int           `json:"over"`
	State     CategoryState `json:"state"`
}

// CategoryStatuses summarises the selection per category, known categories
// first. Requirements are informational and never block.
func CategoryStatuses(dishes []model.Dish, qty model.Dishes, limits map[string]int, locale string) []CategoryStatus {
	var categories []string
	totals := map[string]int{}
	seen := map[string]bool{}
	add := func(category string) {
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}

	for _, dish := range dishes {
		add(dish.Category)
		totals[dish.Category] = addSat(totals[dish.Category], qty[dish.ID])
	}
	extra := make([]string, 0, len(limits))
	for category := range limits {
		if !seen[category] {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	for _, category := range extra {
		add(category)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categoryRank(categories[i]) < categoryRank(categories[j])
	})

	statuses := make([]CategoryStatus, 0, len(categories))
	for _, category := range categories {
		st := CategoryStatus{
			Category: category,
			Label:    categoryLabel(category, locale),
			Total:    totals[category],
		}
		required, ok := limits[category]
		switch {
		case !ok || required <= 0:
			st.State = NoRequirement
		case st.Total >= required:
			st.State = RequirementMet
			st.Required = required
			st.Over = st.Total - required
		default:
			st.State = RequirementUnmet
			st.Required = required
			st.Remaining = required - st.Total
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Allocation drives one dish selection element of a session. The default
// allocation is applied once per resolved configuration: a change of rule or
// multiplier applies it again, re-evaluating an unchanged one never does.
type Allocation struct {
	el         *model.DishSelection
	appliedKey string
	limits     map[string]int
}

func NewAllocation(el *model.DishSelection) *Allocation {
	return &Allocation{el: el, limits: map[string]int{}}
}

func (a *Allocation) Limits() map[string]int { return a.limits }

// Sync resolves the rule and multiplier against answers and pre-fills the
// selection when the resolved configuration changed. It reports whether the
// pre-fill ran.
func (a *Allocation) Sync(answers *Answers, ix *Index) bool {
	rule := ResolveRule(a.el.Rules, answers, ix)
	multiplier := ResolveMultiplier(a.el, answers, ix)

	key := a.resolutionKey(rule, multiplier)
	if key == a.appliedKey {
		return false
	}
	a.appliedKey = key
	a.limits = CategoryLimits(rule, multiplier)

	if len(a.limits) == 0 {
		return false
	}
	answers.Set(model.KeyOf(a.el), Prefill(a.el.Dishes, a.limits))
	return true
}

func (a *Allocation) resolutionKey(rule *model.AllocationRule, multiplier float64) string {
	id := "-"
	if rule != nil {
		id = string(rule.ID)
		if id == "" {
			for i := range a.el.Rules {
				if &a.el.Rules[i] == rule {
					id = fmt.Sprintf("#%d", i)
				}
			}
		}
	}
	return id + "|" + strconv.FormatFloat(multiplier, 'g', -1, 64)
}

// Adjust moves the quantity of one dish, rejecting ids foreign to the element.
func (a *Allocation) Adjust(answers *Answers, dishID model.ID, delta int) error {
	if _, ok := a.el.Dish(dishID); !ok {
		return invalid(a.el, "unknown dish %q", dishID)
	}
	v, _ := answers.Of(a.el)
	qty, _ := v.(model.Dishes)
	answers.Set(model.KeyOf(a.el), AdjustQuantity(qty, dishID, delta))
	return nil
}

func (a *Allocation) Statuses(answers *Answers, locale string) []CategoryStatus {
	v, _ := answers.Of(a.el)
	qty, _ := v.(model.Dishes)
	return CategoryStatuses(a.el.Dishes, qty, a.limits, locale)
}
