package timetable

import (
	"sort"
	"strings"
	"time"

	"eduwidget/internal/models"
)

// Alle Selektoren sind reine Funktionen über einem Zustands-Schnappschuss.
// Die Uhrzeit kommt als Parameter herein, damit sie testbar bleiben.

// CoursesForSelectedClass liefert die Kurse der gewählten Klasse
func CoursesForSelectedClass(state models.AppState) []models.Course {
	cg := state.SelectedClassGroupID
	if cg == "" {
		return []models.Course{}
	}
	out := []models.Course{}
	for _, c := range state.Courses {
		if c.ClassGroupID == cg {
			out = append(out, c)
		}
	}
	return out
}

// ScheduleForSelectedClass liefert die Planeinträge der gewählten Klasse.
// Einträge mit Kursen fremder oder gelöschter Klassen fallen heraus.
func ScheduleForSelectedClass(state models.AppState) []models.ScheduleItem {
	courseIDs := make(map[string]bool)
	for _, c := range CoursesForSelectedClass(state) {
		courseIDs[c.ID] = true
	}
	out := []models.ScheduleItem{}
	for _, si := range state.ScheduleItems {
		if courseIDs[si.CourseID] {
			out = append(out, si)
		}
	}
	return out
}

// CourseByID sucht einen Kurs; nil, wenn er fehlt
func CourseByID(state models.AppState, courseID string) *models.Course {
	for i := range state.Courses {
		if state.Courses[i].ID == courseID {
			return &state.Courses[i]
		}
	}
	return nil
}

// ScheduleItemForDaySlot findet den Eintrag einer (Tag, Stunde)-Zelle
func ScheduleItemForDaySlot(state models.AppState, dayIndex, slotIndex int) *models.ScheduleItem {
	for _, si := range ScheduleForSelectedClass(state) {
		if si.DayIndex == dayIndex && si.SlotIndex == slotIndex {
			item := si
			return &item
		}
	}
	return nil
}

/* =========================
   HEUTIGE STUNDEN
========================= */

// LessonView ist eine aufgelöste Unterrichtsstunde des heutigen Tages
type LessonView struct {
	ScheduleItem models.ScheduleItem
	Course       models.Course
	SlotIndex    int
	Start        string
	End          string

	// noteOverride falls gesetzt, sonst defaultNote des Kurses
	EffectiveNote string
}

// TodayLessons liefert die heutigen Stunden der gewählten Klasse,
// aufsteigend nach Stunde sortiert. Einträge ohne Kurs werden übersprungen.
func TodayLessons(state models.AppState, now time.Time) []LessonView {
	today := TodayDayIndex(now)

	bySlot := make(map[int]models.TimeSlot, len(state.TimeSlots))
	for _, ts := range state.TimeSlots {
		bySlot[ts.SlotIndex] = ts
	}

	var items []models.ScheduleItem
	for _, si := range ScheduleForSelectedClass(state) {
		if si.DayIndex == today {
			items = append(items, si)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SlotIndex < items[j].SlotIndex
	})

	result := []LessonView{}
	for _, si := range items {
		course := CourseByID(state, si.CourseID)
		if course == nil {
			continue
		}

		start, end := "00:00", "00:00"
		if slot, ok := bySlot[si.SlotIndex]; ok {
			start, end = slot.Start, slot.End
		}
		if si.TimeOverride != nil {
			start, end = si.TimeOverride.Start, si.TimeOverride.End
		}

		note := strings.TrimSpace(si.NoteOverride)
		if note == "" {
			note = strings.TrimSpace(course.DefaultNote)
		}

		result = append(result, LessonView{
			ScheduleItem:  si,
			Course:        *course,
			SlotIndex:     si.SlotIndex,
			Start:         start,
			End:           end,
			EffectiveNote: note,
		})
	}

	return result
}

/* =========================
   AKTUELLE / NÄCHSTE STUNDE
========================= */

// CurrentNext bündelt die laufende und die kommenden Stunden
type CurrentNext struct {
	Current  *LessonView
	Next     *LessonView
	NextList []LessonView
}

// CurrentAndNextLesson bestimmt die laufende Stunde (Intervall [Start, Ende),
// Ende exklusiv) und die nächste Stunde mit Start echt nach jetzt.
// NextList sind bis zu drei noch ausstehende Stunden für die Widget-Vorschau.
func CurrentAndNextLesson(state models.AppState, now time.Time) CurrentNext {
	todayLessons := TodayLessons(state, now)

	if len(todayLessons) == 0 {
		return CurrentNext{NextList: []LessonView{}}
	}

	nowMin := nowMinutes(now)

	var current *LessonView
	for i := range todayLessons {
		s := toMinutes(todayLessons[i].Start)
		e := toMinutes(todayLessons[i].End)
		if nowMin >= s && nowMin < e {
			current = &todayLessons[i]
			break
		}
	}

	var next *LessonView
	for i := range todayLessons {
		if toMinutes(todayLessons[i].Start) > nowMin {
			next = &todayLessons[i]
			break
		}
	}

	// Vorschau ab Ende der laufenden Stunde, sonst ab jetzt
	pivot := nowMin
	if current != nil {
		pivot = toMinutes(current.End)
	}
	nextList := []LessonView{}
	for _, l := range todayLessons {
		if toMinutes(l.Start) >= pivot {
			nextList = append(nextList, l)
		}
		if len(nextList) == 3 {
			break
		}
	}

	return CurrentNext{Current: current, Next: next, NextList: nextList}
}

/* =========================
   HAUSAUFGABEN
========================= */

// HomeworksForSelectedClass liefert die Hausaufgaben der gewählten Klasse
func HomeworksForSelectedClass(state models.AppState) []models.Homework {
	cg := state.SelectedClassGroupID
	if cg == "" {
		return []models.Homework{}
	}
	out := []models.Homework{}
	for _, h := range state.Homeworks {
		if h.ClassGroupID == cg {
			out = append(out, h)
		}
	}
	return out
}

// DueTodayHomeworkCount zählt die heute fälligen Hausaufgaben
func DueTodayHomeworkCount(state models.AppState, now time.Time) int {
	today := TodayISO(now)
	count := 0
	for _, h := range HomeworksForSelectedClass(state) {
		if h.DueDateISO == today {
			count++
		}
	}
	return count
}

/* =========================
   LERNZIELE / LETZTER STAND
========================= */

// LastStuckText rendert den zuletzt festgehaltenen Lernstand der Klasse.
// "Zuletzt" ist der letzte Eintrag im Array, nicht zeitlich sortiert.
func LastStuckText(state models.AppState) string {
	cg := state.SelectedClassGroupID
	if cg == "" {
		return ""
	}

	var last *models.DailyStuck
	for i := range state.DailyStuck {
		if state.DailyStuck[i].ClassGroupID == cg {
			last = &state.DailyStuck[i]
		}
	}
	if last == nil {
		return ""
	}

	var ach *models.Achievement
	for i := range state.Achievements {
		if state.Achievements[i].ID == last.AchievementID {
			ach = &state.Achievements[i]
			break
		}
	}
	if ach == nil {
		return ""
	}

	if t := strings.TrimSpace(ach.Title); t != "" {
		return t
	}

	u := strings.TrimSpace(ach.Unit)
	o := strings.TrimSpace(ach.Outcome)
	if u != "" && o != "" {
		return u + " / " + o
	}
	if u != "" {
		return u
	}
	return o
}
