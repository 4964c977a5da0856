package core

import (
	"fmt"
	"strings"
)

// Locale selects the language of month labels and notification texts.
type Locale string

const (
	LocalePL Locale = "pl"
	LocaleEN Locale = "en"
)

// Nominative month names, indexed by time.Month-1.
var monthNames = map[Locale][12]string{
	LocalePL: {
		"Styczeń", "Luty", "Marzec", "Kwiecień", "Maj", "Czerwiec",
		"Lipiec", "Sierpień", "Wrzesień", "Październik", "Listopad", "Grudzień",
	},
	LocaleEN: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// ParseLocale accepts a locale tag such as "pl", "PL" or "pl-PL".
func ParseLocale(s string) (Locale, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	l := Locale(tag)
	if _, ok := monthNames[l]; !ok {
		return "", fmt.Errorf("unsupported locale %q", s)
	}
	return l, nil
}

// SupportedLocales lists the locales MonthLabel can render.
func SupportedLocales() []Locale {
	return []Locale{LocalePL, LocaleEN}
}

// MonthLabel renders "<Month Year>" for the month containing day, e.g.
// "Październik 2023". Unknown locales fall back to English.
func MonthLabel(day Day, locale Locale) string {
	t := day.Time()
	names, ok := monthNames[locale]
	if !ok {
		names = monthNames[LocaleEN]
	}
	return fmt.Sprintf("%s %d", names[t.Month()-1], t.Year())
}
