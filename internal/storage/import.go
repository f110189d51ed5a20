package storage

import (
	"sort"
	"strings"

	"eduwidget/internal/models"
)

// ImportedLesson ist eine aus einem Stundenplan-Import stammende Stunde
type ImportedLesson struct {
	Title    string
	Note     string
	DayIndex int // 0=Mo ... 6=So
	Start    string
	End      string
}

// ImportLessons ersetzt den Wochenplan der gewählten Klasse durch die
// importierten Stunden. Das Vorgehen entspricht der Alt-Migration:
// Raster aus den vorkommenden Zeitpaaren, Kurse eindeutig je Titel.
// Hausaufgaben, Lernziele und Stuck-Einträge bleiben unberührt.
func (r *Repository) ImportLessons(rows []ImportedLesson) error {
	return r.UpdateState(func(prev models.AppState) models.AppState {
		cgID := prev.SelectedClassGroupID

		timeSlots := buildTimeSlotsFromImport(rows)

		courseByTitle := make(map[string]string)
		var courses []models.Course
		var items []models.ScheduleItem

		for _, row := range rows {
			title := strings.TrimSpace(row.Title)
			if title == "" {
				continue
			}

			courseID, ok := courseByTitle[title]
			if !ok {
				courseID = NewID("course")
				courseByTitle[title] = courseID
				courses = append(courses, models.Course{
					ID:           courseID,
					ClassGroupID: cgID,
					Title:        title,
					Type:         models.CourseLesson,
				})
			}

			slotIndex := 1
			if row.Start != "" && row.End != "" {
				slotIndex = findSlotIndex(timeSlots, models.TimeRange{Start: row.Start, End: row.End})
			}

			items = append(items, models.ScheduleItem{
				ID:           NewID("sched"),
				CourseID:     courseID,
				DayIndex:     row.DayIndex,
				SlotIndex:    slotIndex,
				NoteOverride: row.Note,
			})
		}

		// Alte Kurse und Planeinträge der gewählten Klasse entfernen
		oldCourseIDs := make(map[string]bool)
		keptCourses := prev.Courses[:0:0]
		for _, c := range prev.Courses {
			if c.ClassGroupID == cgID {
				oldCourseIDs[c.ID] = true
				continue
			}
			keptCourses = append(keptCourses, c)
		}
		keptItems := prev.ScheduleItems[:0:0]
		for _, si := range prev.ScheduleItems {
			if oldCourseIDs[si.CourseID] {
				continue
			}
			keptItems = append(keptItems, si)
		}

		prev.TimeSlots = timeSlots
		prev.Courses = append(keptCourses, courses...)
		prev.ScheduleItems = append(keptItems, items...)
		return prev
	})
}

func buildTimeSlotsFromImport(rows []ImportedLesson) []models.TimeSlot {
	seen := make(map[string]bool)
	var pairs []models.TimeRange
	for _, row := range rows {
		if row.Start == "" || row.End == "" {
			continue
		}
		key := row.Start + "|" + row.End
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, models.TimeRange{Start: row.Start, End: row.End})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Start < pairs[j].Start
	})

	if len(pairs) == 0 {
		return DefaultTimeSlots()
	}

	slots := make([]models.TimeSlot, len(pairs))
	for i, p := range pairs {
		slots[i] = models.TimeSlot{SlotIndex: i + 1, Start: p.Start, End: p.End}
	}
	return slots
}
