package calendar

import "student-qr/backend/internal/model"

// CountByCategory counts the active entries per category.
func CountByCategory(entries []model.CalendarEntry) map[Category]int64 {
	counts := make(map[Category]int64)
	for i := range entries {
		if entries[i].Active {
			counts[Category(entries[i].Category)]++
		}
	}
	return counts
}
