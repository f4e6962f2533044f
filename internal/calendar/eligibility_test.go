package calendar

import (
	"testing"

	"student-qr/backend/internal/model"
)

func TestEvaluate_NoEntries(t *testing.T) {
	if !IsEligible(day(2024, 6, 1), nil) {
		t.Error("a date with no entries must be eligible")
	}

	r := Evaluate(day(2024, 6, 1), []model.CalendarEntry{})
	if !r.Eligible || len(r.Entries) != 0 || r.HasBlocking() {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestEvaluate_SummerVacation(t *testing.T) {
	entries := []model.CalendarEntry{
		mustRange("Summer Vacation", day(2024, 5, 15), day(2024, 6, 30), Vacation),
	}

	if IsEligible(day(2024, 6, 1), entries) {
		t.Error("2024-06-01 falls inside the vacation and must be blocked")
	}
	if !IsEligible(day(2024, 7, 1), entries) {
		t.Error("2024-07-01 is after the vacation and must be eligible")
	}
	if IsEligible(day(2024, 6, 30), entries) {
		t.Error("the last vacation day is still blocked")
	}
}

func TestEvaluate_OnlyBlockingEntries(t *testing.T) {
	entries := []model.CalendarEntry{
		mustRange("Pre-Exam Study Break", day(2024, 3, 1), day(2024, 3, 5), Break),
		mustRange("Maintenance", day(2024, 3, 4), day(2024, 3, 6), SchoolHoliday),
	}

	r := Evaluate(day(2024, 3, 4), entries)
	if r.Eligible {
		t.Error("expected blocked")
	}
	if len(r.Entries) != 2 || len(r.Blocking) != 2 {
		t.Errorf("expected 2 covering / 2 blocking, got %d / %d", len(r.Entries), len(r.Blocking))
	}
	names := r.BlockingNames()
	if names[0] != "Pre-Exam Study Break" || names[1] != "Maintenance" {
		t.Errorf("blocking entries not ordered by start date: %v", names)
	}
}

func TestEvaluate_PermittingEntryWins(t *testing.T) {
	entries := []model.CalendarEntry{
		mustRange("Final Examinations", day(2024, 10, 28), day(2024, 10, 28), Examination),
		mustRange("Autumn Break", day(2024, 10, 25), day(2024, 10, 30), Break),
	}

	r := Evaluate(day(2024, 10, 28), entries)
	if !r.Eligible {
		t.Error("an examination entry alongside a break must allow attendance")
	}
	if !r.HasBlocking() || r.BlockingNames()[0] != "Autumn Break" {
		t.Errorf("the break should still be reported as blocking: %v", r.BlockingNames())
	}
}

func TestEvaluate_InactiveEntriesIgnored(t *testing.T) {
	vacation := mustRange("Summer Vacation", day(2024, 5, 15), day(2024, 6, 30), Vacation)
	vacation.Active = false

	r := Evaluate(day(2024, 6, 1), []model.CalendarEntry{vacation})
	if !r.Eligible || len(r.Entries) != 0 {
		t.Errorf("inactive entries must not count, got %+v", r)
	}
}

func TestEvaluate_ToggleTwiceRestores(t *testing.T) {
	entries := []model.CalendarEntry{
		mustRange("Winter Vacation", day(2024, 12, 20), day(2024, 12, 31), Vacation),
	}
	d := day(2024, 12, 24)
	before := IsEligible(d, entries)

	entries[0].Active = !entries[0].Active
	if IsEligible(d, entries) == before {
		t.Fatal("toggling once should change the verdict")
	}
	entries[0].Active = !entries[0].Active
	if IsEligible(d, entries) != before {
		t.Error("toggling twice should restore the verdict")
	}
}

func TestEntriesCovering_Order(t *testing.T) {
	a := mustRange("A", day(2024, 11, 5), day(2024, 11, 9), SchoolActivity)
	a.ID = 2
	b := mustRange("B", day(2024, 11, 1), day(2024, 11, 5), Vacation)
	b.ID = 3
	c := mustRange("C", day(2024, 11, 5), day(2024, 11, 5), SpecialEvent)
	c.ID = 1
	outside := mustRange("D", day(2024, 12, 1), day(2024, 12, 2), Break)

	got := EntriesCovering(day(2024, 11, 5), []model.CalendarEntry{a, b, c, outside})
	if len(got) != 3 {
		t.Fatalf("expected 3 covering entries, got %d", len(got))
	}
	if got[0].Name != "B" || got[1].Name != "C" || got[2].Name != "A" {
		t.Errorf("unexpected order: %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
}
