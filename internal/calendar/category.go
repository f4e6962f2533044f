// Package calendar holds the school calendar rules: entry categories and
// their default attendance policy, the attendance eligibility of a date and
// the range auto-marker. It has no storage or HTTP dependencies.
package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for a category name outside the enumeration.
var ErrUnknownCategory = errors.New("unknown calendar category")

// Category classifies a calendar entry.
type Category string

const (
	PublicHoliday  Category = "PUBLIC_HOLIDAY"
	SchoolHoliday  Category = "SCHOOL_HOLIDAY"
	Vacation       Category = "VACATION"
	SpecialEvent   Category = "SPECIAL_EVENT"
	SchoolActivity Category = "SCHOOL_ACTIVITY"
	Examination    Category = "EXAMINATION"
	Break          Category = "BREAK"
	Custom         Category = "CUSTOM"
)

var displayNames = map[Category]string{
	PublicHoliday:  "Public Holiday",
	SchoolHoliday:  "School Holiday",
	Vacation:       "Vacation",
	SpecialEvent:   "Special Event",
	SchoolActivity: "School Activity",
	Examination:    "Examination",
	Break:          "Break",
	Custom:         "Custom",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{PublicHoliday, SchoolHoliday, Vacation, SpecialEvent, SchoolActivity, Examination, Break, Custom}
}

// ParseCategory resolves an upper snake case category name.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.TrimSpace(name))
	if _, ok := displayNames[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Valid reports whether c is part of the enumeration.
func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// DisplayName is the human-readable label, e.g. "Public Holiday".
func (c Category) DisplayName() string {
	if n, ok := displayNames[c]; ok {
		return n
	}
	return string(c)
}

func (c Category) String() string { return string(c) }
