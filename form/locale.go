package form

import (
	"fmt"
	"time"
)

const (
	LocaleEN = "en"
	LocaleLV = "lv"
)

// categoryOrder is the display order of the known dish categories. Unknown
// categories follow, in the order they first appear.
var categoryOrder = []string{"first", "second", "sweet"}

var categoryLabels = map[string]map[string]string{
	LocaleEN: {
		"first":  "First course",
		"second": "Main course",
		"sweet":  "Dessert",
	},
	LocaleLV: {
		"first":  "Pirmais ēdiens",
		"second": "Otrais ēdiens",
		"sweet":  "Saldais ēdiens",
	},
}

var yesNoLabels = map[string][2]string{
	LocaleEN: {"Yes", "No"},
	LocaleLV: {"Jā", "Nē"},
}

var lvMonths = [...]string{
	"janvāris", "februāris", "marts", "aprīlis", "maijs", "jūnijs",
	"jūlijs", "augusts", "septembris", "oktobris", "novembris", "decembris",
}

func categoryLabel(category, locale string) string {
	labels, ok := categoryLabels[locale]
	if !ok {
		labels = categoryLabels[LocaleEN]
	}
	if label, ok := labels[category]; ok {
		return label
	}
	return category
}

func categoryRank(category string) int {
	for i, c := range categoryOrder {
		if c == category {
			return i
		}
	}
	return len(categoryOrder)
}

func yesNo(locale string) (yes, no string) {
	labels, ok := yesNoLabels[locale]
	if !ok {
		labels = yesNoLabels[LocaleEN]
	}
	return labels[0], labels[1]
}

// LongDate formats d as a long date in the given locale.
func LongDate(d time.Time, locale string) string {
	if locale == LocaleLV {
		return fmt.Sprintf("%d. gada %d. %s", d.Year(), d.Day(), lvMonths[d.Month()-1])
	}
	return d.Format("January 2, 2006")
}
