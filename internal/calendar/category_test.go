package calendar

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}

	if got, err := ParseCategory("  VACATION "); err != nil || got != Vacation {
		t.Errorf("surrounding whitespace should be ignored, got %q, %v", got, err)
	}
}

func TestParseCategory_Unknown(t *testing.T) {
	for _, name := range []string{"", "vacation", "HOLIDAY", "PUBLIC HOLIDAY"} {
		if _, err := ParseCategory(name); !errors.Is(err, ErrUnknownCategory) {
			t.Errorf("ParseCategory(%q): expected ErrUnknownCategory, got %v", name, err)
		}
	}
}

func TestCategory_DisplayName(t *testing.T) {
	if PublicHoliday.DisplayName() != "Public Holiday" {
		t.Errorf("unexpected display name %q", PublicHoliday.DisplayName())
	}
	if SchoolActivity.DisplayName() != "School Activity" {
		t.Errorf("unexpected display name %q", SchoolActivity.DisplayName())
	}
	if Category("OTHER").Valid() {
		t.Error("OTHER must not be valid")
	}
}
