package timetable

import (
	"testing"
	"time"

	"eduwidget/internal/models"
)

// Mittwoch, 07.01.2026
func wednesdayAt(hour, min int) time.Time {
	return time.Date(2026, 1, 7, hour, min, 0, 0, time.Local)
}

// testState baut eine Klasse mit dem Kurs "Science" am Mittwoch (dayIndex 2)
// in der ersten Stunde (08:30–09:10)
func testState() models.AppState {
	return models.AppState{
		SelectedClassGroupID: "cg-1",
		ClassGroups: []models.ClassGroup{
			{ID: "cg-1", Label: "5/A"},
			{ID: "cg-2", Label: "7/D"},
		},
		Courses: []models.Course{
			{ID: "c-sci", ClassGroupID: "cg-1", Title: "Science", Type: models.CourseLesson},
		},
		ScheduleItems: []models.ScheduleItem{
			{ID: "si-1", CourseID: "c-sci", DayIndex: 2, SlotIndex: 1},
		},
		TimeSlots: []models.TimeSlot{
			{SlotIndex: 1, Start: "08:30", End: "09:10"},
			{SlotIndex: 2, Start: "09:20", End: "10:00"},
		},
		Homeworks:    []models.Homework{},
		Achievements: []models.Achievement{},
		DailyStuck:   []models.DailyStuck{},
	}
}

func TestTodayDayIndexMondayFirst(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, 1, 5, 12, 0, 0, 0, time.Local), 0},  // Montag
		{time.Date(2026, 1, 7, 12, 0, 0, 0, time.Local), 2},  // Mittwoch
		{time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local), 5}, // Samstag
		{time.Date(2026, 1, 11, 12, 0, 0, 0, time.Local), 6}, // Sonntag
	}

	for _, c := range cases {
		if got := TodayDayIndex(c.date); got != c.want {
			t.Errorf("%s: erwartet dayIndex %d, bekommen %d", c.date.Weekday(), c.want, got)
		}
	}
}

func TestTodayLessonsFiltersByDay(t *testing.T) {
	state := testState()
	state.ScheduleItems = append(state.ScheduleItems,
		models.ScheduleItem{ID: "si-thu", CourseID: "c-sci", DayIndex: 3, SlotIndex: 1},
	)

	lessons := TodayLessons(state, wednesdayAt(8, 0))

	if len(lessons) != 1 {
		t.Fatalf("erwartet 1 Stunde am Mittwoch, bekommen %d", len(lessons))
	}
	if lessons[0].ScheduleItem.ID != "si-1" {
		t.Errorf("falsche Stunde: %q", lessons[0].ScheduleItem.ID)
	}
	if lessons[0].Start != "08:30" || lessons[0].End != "09:10" {
		t.Errorf("Zeiten aus dem Raster erwartet, bekommen %s–%s", lessons[0].Start, lessons[0].End)
	}
}

func TestTodayLessonsSortedBySlot(t *testing.T) {
	state := testState()
	state.ScheduleItems = []models.ScheduleItem{
		{ID: "si-b", CourseID: "c-sci", DayIndex: 2, SlotIndex: 2},
		{ID: "si-a", CourseID: "c-sci", DayIndex: 2, SlotIndex: 1},
	}

	lessons := TodayLessons(state, wednesdayAt(8, 0))

	if len(lessons) != 2 || lessons[0].SlotIndex != 1 || lessons[1].SlotIndex != 2 {
		t.Errorf("Stunden nicht nach Slot sortiert: %+v", lessons)
	}
}

func TestTodayLessonsSkipsMissingCourse(t *testing.T) {
	state := testState()
	state.ScheduleItems = append(state.ScheduleItems,
		models.ScheduleItem{ID: "si-waise", CourseID: "c-geloescht", DayIndex: 2, SlotIndex: 2},
	)

	lessons := TodayLessons(state, wednesdayAt(8, 0))

	if len(lessons) != 1 {
		t.Errorf("Eintrag ohne Kurs muss übersprungen werden, bekommen %d Stunden", len(lessons))
	}
}

func TestTodayLessonsTimeOverride(t *testing.T) {
	state := testState()
	state.ScheduleItems[0].TimeOverride = &models.TimeRange{Start: "08:00", End: "08:40"}

	lessons := TodayLessons(state, wednesdayAt(8, 0))

	if lessons[0].Start != "08:00" || lessons[0].End != "08:40" {
		t.Errorf("timeOverride muss gewinnen, bekommen %s–%s", lessons[0].Start, lessons[0].End)
	}
}

func TestEffectiveNotePrecedence(t *testing.T) {
	cases := []struct {
		override    string
		defaultNote string
		want        string
	}{
		{"A", "B", "A"},
		{"  ", "B", "B"},
		{"", "B", "B"},
		{"  A  ", "", "A"},
		{"", "", ""},
		{"   ", "   ", ""},
	}

	for _, c := range cases {
		state := testState()
		state.ScheduleItems[0].NoteOverride = c.override
		state.Courses[0].DefaultNote = c.defaultNote

		lessons := TodayLessons(state, wednesdayAt(8, 0))
		if got := lessons[0].EffectiveNote; got != c.want {
			t.Errorf("override=%q default=%q: erwartet %q, bekommen %q", c.override, c.defaultNote, c.want, got)
		}
	}
}

func TestCurrentLessonHalfOpenInterval(t *testing.T) {
	state := testState()
	// Stunde 09:20–10:00 im zweiten Slot
	state.ScheduleItems = []models.ScheduleItem{
		{ID: "si-2", CourseID: "c-sci", DayIndex: 2, SlotIndex: 2},
	}

	// Startminute zählt zur Stunde
	cn := CurrentAndNextLesson(state, wednesdayAt(9, 20))
	if cn.Current == nil || cn.Current.ScheduleItem.ID != "si-2" {
		t.Error("um 09:20 läuft die Stunde bereits")
	}

	// Letzte Minute vor dem Ende auch
	cn = CurrentAndNextLesson(state, wednesdayAt(9, 59))
	if cn.Current == nil {
		t.Error("um 09:59 läuft die Stunde noch")
	}

	// Vorher ist sie nur die nächste
	cn = CurrentAndNextLesson(state, wednesdayAt(8, 0))
	if cn.Current != nil {
		t.Error("um 08:00 läuft noch nichts")
	}
	if cn.Next == nil || cn.Next.ScheduleItem.ID != "si-2" {
		t.Error("um 08:00 ist die Stunde die nächste")
	}

	// Endminute ist exklusiv
	cn = CurrentAndNextLesson(state, wednesdayAt(10, 0))
	if cn.Current != nil {
		t.Error("um 10:00 ist die Stunde vorbei")
	}
	if cn.Next != nil {
		t.Error("um 10:00 kommt auch nichts mehr")
	}
}

func TestNextListPivot(t *testing.T) {
	state := testState()
	state.TimeSlots = []models.TimeSlot{
		{SlotIndex: 1, Start: "08:30", End: "09:10"},
		{SlotIndex: 2, Start: "09:20", End: "10:00"},
		{SlotIndex: 3, Start: "10:10", End: "10:50"},
		{SlotIndex: 4, Start: "11:00", End: "11:40"},
		{SlotIndex: 5, Start: "11:50", End: "12:30"},
	}
	state.ScheduleItems = []models.ScheduleItem{
		{ID: "si-1", CourseID: "c-sci", DayIndex: 2, SlotIndex: 1},
		{ID: "si-2", CourseID: "c-sci", DayIndex: 2, SlotIndex: 2},
		{ID: "si-3", CourseID: "c-sci", DayIndex: 2, SlotIndex: 3},
		{ID: "si-4", CourseID: "c-sci", DayIndex: 2, SlotIndex: 4},
		{ID: "si-5", CourseID: "c-sci", DayIndex: 2, SlotIndex: 5},
	}

	// Mitten in der ersten Stunde: Vorschau beginnt nach deren Ende,
	// höchstens drei Einträge
	cn := CurrentAndNextLesson(state, wednesdayAt(8, 45))
	if cn.Current == nil || cn.Current.ScheduleItem.ID != "si-1" {
		t.Fatal("um 08:45 läuft die erste Stunde")
	}
	if len(cn.NextList) != 3 {
		t.Fatalf("erwartet 3 Vorschau-Einträge, bekommen %d", len(cn.NextList))
	}
	if cn.NextList[0].ScheduleItem.ID != "si-2" {
		t.Errorf("Vorschau beginnt nach der laufenden Stunde, erster ist %q", cn.NextList[0].ScheduleItem.ID)
	}

	// Ohne laufende Stunde zählt ab jetzt
	cn = CurrentAndNextLesson(state, wednesdayAt(10, 5))
	if cn.Current != nil {
		t.Fatal("um 10:05 ist Pause")
	}
	if len(cn.NextList) != 3 || cn.NextList[0].ScheduleItem.ID != "si-3" {
		t.Errorf("Vorschau ab jetzt erwartet, bekommen %+v", cn.NextList)
	}
}

func TestDueTodayHomeworkCount(t *testing.T) {
	state := testState()
	state.Homeworks = []models.Homework{
		{ID: "hw-1", ClassGroupID: "cg-1", Title: "Lesen", DueDateISO: "2026-01-07", CreatedBy: "teacher"},
		{ID: "hw-2", ClassGroupID: "cg-1", Title: "Rechnen", DueDateISO: "2026-01-08", CreatedBy: "teacher"},
		{ID: "hw-3", ClassGroupID: "cg-2", Title: "Andere Klasse", DueDateISO: "2026-01-07", CreatedBy: "teacher"},
	}

	if got := DueTodayHomeworkCount(state, wednesdayAt(8, 0)); got != 1 {
		t.Errorf("erwartet 1 fällige Hausaufgabe, bekommen %d", got)
	}
}

func TestLastStuckText(t *testing.T) {
	state := testState()
	state.Achievements = []models.Achievement{
		{ID: "ach-1", Title: "Forces"},
		{ID: "ach-2", Unit: "Kuvvet ve Hareket", Outcome: "Sürtünme kuvvetini açıklar"},
		{ID: "ach-3", Unit: "Nur Einheit"},
	}

	// Der letzte Eintrag im Array zählt, nicht das Datum
	state.DailyStuck = []models.DailyStuck{
		{ID: "st-1", DateISO: "2026-01-06", ClassGroupID: "cg-1", AchievementID: "ach-2"},
		{ID: "st-2", DateISO: "2026-01-01", ClassGroupID: "cg-1", AchievementID: "ach-1"},
	}
	if got := LastStuckText(state); got != "Forces" {
		t.Errorf("erwartet Titel des letzten Eintrags, bekommen %q", got)
	}

	// Ohne Titel: Einheit / Lernergebnis
	state.DailyStuck = []models.DailyStuck{
		{ID: "st-3", ClassGroupID: "cg-1", AchievementID: "ach-2"},
	}
	if got := LastStuckText(state); got != "Kuvvet ve Hareket / Sürtünme kuvvetini açıklar" {
		t.Errorf("erwartet Einheit/Ergebnis-Kombination, bekommen %q", got)
	}

	// Nur Einheit
	state.DailyStuck = []models.DailyStuck{
		{ID: "st-4", ClassGroupID: "cg-1", AchievementID: "ach-3"},
	}
	if got := LastStuckText(state); got != "Nur Einheit" {
		t.Errorf("erwartet Einheit, bekommen %q", got)
	}

	// Fremde Klasse und fehlendes Lernziel liefern nichts
	state.DailyStuck = []models.DailyStuck{
		{ID: "st-5", ClassGroupID: "cg-2", AchievementID: "ach-1"},
	}
	if got := LastStuckText(state); got != "" {
		t.Errorf("fremde Klasse darf nicht zählen, bekommen %q", got)
	}
	state.DailyStuck = []models.DailyStuck{
		{ID: "st-6", ClassGroupID: "cg-1", AchievementID: "ach-weg"},
	}
	if got := LastStuckText(state); got != "" {
		t.Errorf("fehlendes Lernziel liefert nichts, bekommen %q", got)
	}
}

func TestWidgetSummaryCurrentLesson(t *testing.T) {
	state := testState()
	state.Homeworks = []models.Homework{
		{ID: "hw-1", ClassGroupID: "cg-1", Title: "Lesen", DueDateISO: "2026-01-07", CreatedBy: "teacher"},
	}
	state.Achievements = []models.Achievement{{ID: "ach-1", Title: "Forces"}}
	state.DailyStuck = []models.DailyStuck{
		{ID: "st-1", DateISO: "2026-01-06", ClassGroupID: "cg-1", AchievementID: "ach-1"},
	}

	summary := BuildWidgetSummary(state, wednesdayAt(8, 45))

	if summary.Headline != "Science (08:30–09:10)" {
		t.Errorf("erwartet Headline der laufenden Stunde, bekommen %q", summary.Headline)
	}
	if summary.Subline != "1 homework due today • Topic: Forces" {
		t.Errorf("unerwartete Subline: %q", summary.Subline)
	}
	if summary.DeepLink != "eduwidget://lesson/si-1" {
		t.Errorf("Deep-Link zeigt auf die laufende Stunde, bekommen %q", summary.DeepLink)
	}
}

func TestWidgetSummaryIncludesNote(t *testing.T) {
	state := testState()
	state.ScheduleItems[0].NoteOverride = "Deney malzemelerini getir"

	summary := BuildWidgetSummary(state, wednesdayAt(8, 45))

	if summary.Subline != "Deney malzemelerini getir" {
		t.Errorf("Notiz der laufenden Stunde gehört in die Subline, bekommen %q", summary.Subline)
	}
}

func TestWidgetSummaryNextLesson(t *testing.T) {
	state := testState()

	summary := BuildWidgetSummary(state, wednesdayAt(8, 0))

	if summary.Headline != "Next: Science (08:30–09:10)" {
		t.Errorf("erwartet Vorschau auf die nächste Stunde, bekommen %q", summary.Headline)
	}
	if summary.DeepLink != "eduwidget://lesson/si-1" {
		t.Errorf("Deep-Link zeigt auf die nächste Stunde, bekommen %q", summary.DeepLink)
	}
}

func TestWidgetSummaryNoLessonsToday(t *testing.T) {
	state := testState()
	state.ScheduleItems = nil

	now := wednesdayAt(8, 45)
	cn := CurrentAndNextLesson(state, now)
	if cn.Current != nil || cn.Next != nil || len(cn.NextList) != 0 {
		t.Errorf("ohne Stundenplan gibt es weder laufende noch nächste Stunde: %+v", cn)
	}

	summary := BuildWidgetSummary(state, now)
	if summary.Headline != "No lessons today" {
		t.Errorf("erwartet feste Headline, bekommen %q", summary.Headline)
	}
	if summary.Subline != "" {
		t.Errorf("leere Subline erwartet, bekommen %q", summary.Subline)
	}
	if summary.DeepLink != DeepLinkHome {
		t.Errorf("Deep-Link fällt auf Home zurück, bekommen %q", summary.DeepLink)
	}
}

func TestSelectorsWithoutSelectedClass(t *testing.T) {
	state := testState()
	state.SelectedClassGroupID = ""

	if got := CoursesForSelectedClass(state); len(got) != 0 {
		t.Errorf("ohne Klassen-Auswahl keine Kurse, bekommen %d", len(got))
	}
	if got := HomeworksForSelectedClass(state); len(got) != 0 {
		t.Errorf("ohne Klassen-Auswahl keine Hausaufgaben, bekommen %d", len(got))
	}
	if got := LastStuckText(state); got != "" {
		t.Errorf("ohne Klassen-Auswahl kein Lernstand, bekommen %q", got)
	}
}
