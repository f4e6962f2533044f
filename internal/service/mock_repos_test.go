package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
)

// ── Mock CalendarEntryRepository ──

type mockCalendarRepo struct {
	entries map[uint]*model.CalendarEntry
	nextID  uint
}

func newMockCalendarRepo() *mockCalendarRepo {
	return &mockCalendarRepo{entries: make(map[uint]*model.CalendarEntry), nextID: 1}
}

func (m *mockCalendarRepo) Create(_ context.Context, entry *model.CalendarEntry) error {
	entry.ID = m.nextID
	m.nextID++
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCalendarRepo) GetByID(_ context.Context, id uint) (*model.CalendarEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarRepo) sorted(keep func(e *model.CalendarEntry) bool) []model.CalendarEntry {
	var result []model.CalendarEntry
	for _, e := range m.entries {
		if keep(e) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *mockCalendarRepo) List(_ context.Context, filter repository.CalendarFilter) ([]model.CalendarEntry, error) {
	return m.sorted(func(e *model.CalendarEntry) bool {
		if filter.Year != 0 && e.StartDate.Year() != filter.Year {
			return false
		}
		return filter.Category == "" || e.Category == filter.Category
	}), nil
}

func (m *mockCalendarRepo) ListActive(_ context.Context) ([]model.CalendarEntry, error) {
	return m.sorted(func(e *model.CalendarEntry) bool { return e.Active }), nil
}

func (m *mockCalendarRepo) ListCovering(_ context.Context, date time.Time) ([]model.CalendarEntry, error) {
	return m.sorted(func(e *model.CalendarEntry) bool { return e.Active && e.Covers(date) }), nil
}

func (m *mockCalendarRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]model.CalendarEntry, error) {
	return m.sorted(func(e *model.CalendarEntry) bool {
		return e.Active && !e.StartDate.Before(from) && !e.StartDate.After(to)
	}), nil
}

func (m *mockCalendarRepo) DistinctYears(_ context.Context) ([]int, error) {
	seen := make(map[int]bool)
	var years []int
	for _, e := range m.entries {
		if y := e.StartDate.Year(); !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (m *mockCalendarRepo) CountByYear(_ context.Context, year int) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.StartDate.Year() == year {
			n++
		}
	}
	return n, nil
}

func (m *mockCalendarRepo) Update(_ context.Context, entry *model.CalendarEntry) error {
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCalendarRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByRollNumber(_ context.Context, rollNumber string) (*model.Student, error) {
	for _, s := range m.students {
		if s.RollNumber == rollNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) all() []model.Student {
	result := make([]model.Student, 0, len(m.students))
	for _, s := range m.students {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RollNumber < result[j].RollNumber })
	return result
}

func (m *mockStudentRepo) List(_ context.Context, offset, limit int) ([]model.Student, int64, error) {
	all := m.all()
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Student{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudentRepo) ListAll(_ context.Context) ([]model.Student, error) {
	return m.all(), nil
}

func (m *mockStudentRepo) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	for _, s := range m.all() {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (m *mockStudentRepo) Search(_ context.Context, query string) ([]model.Student, error) {
	q := strings.ToLower(query)
	var result []model.Student
	for _, s := range m.all() {
		for _, field := range []string{s.Name, s.Email, s.Course, s.RollNumber} {
			if strings.Contains(strings.ToLower(field), q) {
				result = append(result, s)
				break
			}
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.students)), nil
}

func (m *mockStudentRepo) CountByCourse(_ context.Context, course string) (int64, error) {
	var n int64
	for _, s := range m.students {
		if s.Course == course {
			n++
		}
	}
	return n, nil
}

func (m *mockStudentRepo) ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error) {
	_, err := m.GetByRollNumber(ctx, rollNumber)
	return err == nil, nil
}

// ── Mock AttendanceRepository ──

// mockAttendanceRepo keeps one record per student and date; upserts counts every write.
type mockAttendanceRepo struct {
	records  map[string]*model.Attendance
	students *mockStudentRepo
	upserts  int
	nextID   uint
}

func newMockAttendanceRepo(students *mockStudentRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance), students: students, nextID: 1}
}

func attendanceKey(studentID string, date time.Time) string {
	return studentID + ":" + model.Day(date).Format(model.DateLayout)
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record *model.Attendance) error {
	m.upserts++
	key := attendanceKey(record.StudentID, record.AttendanceDate)
	if existing, ok := m.records[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = m.nextID
		m.nextID++
	}
	stored := *record
	stored.Student = nil
	m.records[key] = &stored
	return nil
}

func (m *mockAttendanceRepo) UpsertAttendance(ctx context.Context, studentID string, date time.Time, status, remark string) error {
	return m.Upsert(ctx, &model.Attendance{
		StudentID:      studentID,
		AttendanceDate: model.Day(date),
		Status:         status,
		Remarks:        remark,
		MarkedBy:       "SYSTEM",
		MarkedAt:       time.Now(),
	})
}

func (m *mockAttendanceRepo) GetByStudentAndDate(_ context.Context, studentID string, date time.Time) (*model.Attendance, error) {
	if r, ok := m.records[attendanceKey(studentID, date)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) collect(keep func(r *model.Attendance) bool) []model.Attendance {
	var result []model.Attendance
	for _, r := range m.records {
		if !keep(r) {
			continue
		}
		rec := *r
		if m.students != nil {
			rec.Student = m.students.students[rec.StudentID]
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date time.Time) ([]model.Attendance, error) {
	d := model.Day(date)
	return m.collect(func(r *model.Attendance) bool { return r.AttendanceDate.Equal(d) }), nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.Attendance, error) {
	return m.collect(func(r *model.Attendance) bool { return r.StudentID == studentID }), nil
}

func (m *mockAttendanceRepo) ListBetween(_ context.Context, start, end time.Time) ([]model.Attendance, error) {
	return m.collect(func(r *model.Attendance) bool {
		return !r.AttendanceDate.Before(start) && !r.AttendanceDate.After(end)
	}), nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// ── test fixture ──

type testRepos struct {
	repo       *repository.Repository
	calendar   *mockCalendarRepo
	students   *mockStudentRepo
	attendance *mockAttendanceRepo
	users      *mockUserRepo
}

func newTestRepos() *testRepos {
	students := newMockStudentRepo()
	r := &testRepos{
		calendar:   newMockCalendarRepo(),
		students:   students,
		attendance: newMockAttendanceRepo(students),
		users:      newMockUserRepo(),
	}
	r.repo = &repository.Repository{
		User:          r.users,
		Student:       r.students,
		Attendance:    r.attendance,
		CalendarEntry: r.calendar,
	}
	return r
}

// fixedClock pins "now" to noon of the given day.
func fixedClock(y int, m time.Month, d int) Clock {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func (r *testRepos) addStudent(id, roll, name, course string) *model.Student {
	s := &model.Student{ID: id, RollNumber: roll, Name: name, Course: course, Email: id + "@school.test"}
	r.students.students[id] = s
	return s
}

var nop = zap.NewNop()
