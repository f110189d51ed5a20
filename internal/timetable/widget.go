package timetable

import (
	"fmt"
	"strings"
	"time"

	"eduwidget/internal/models"
)

// Deep-Link-Ziele des Widgets
const (
	DeepLinkHome         = "eduwidget://home"
	deepLinkLessonFormat = "eduwidget://lesson/%s"
)

// WidgetSummary ist der Render-Vertrag für den Widget-Host:
// zwei Textzeilen plus ein Navigationsziel
type WidgetSummary struct {
	Headline string `json:"headline"`
	Subline  string `json:"subline"`
	DeepLink string `json:"deeplink"`
}

// BuildWidgetSummary setzt die Widget-Texte zusammen:
// laufende Stunde vor nächster Stunde vor "keine Stunden";
// die zweite Zeile sammelt Notiz, fällige Hausaufgaben und letzten Lernstand
func BuildWidgetSummary(state models.AppState, now time.Time) WidgetSummary {
	cn := CurrentAndNextLesson(state, now)
	due := DueTodayHomeworkCount(state, now)
	stuck := LastStuckText(state)

	headline := "No lessons today"
	deeplink := DeepLinkHome
	var sublineParts []string

	if cn.Current != nil {
		headline = fmt.Sprintf("%s (%s–%s)", cn.Current.Course.Title, cn.Current.Start, cn.Current.End)
		deeplink = fmt.Sprintf(deepLinkLessonFormat, cn.Current.ScheduleItem.ID)
		if cn.Current.EffectiveNote != "" {
			sublineParts = append(sublineParts, cn.Current.EffectiveNote)
		}
	} else if cn.Next != nil {
		headline = fmt.Sprintf("Next: %s (%s–%s)", cn.Next.Course.Title, cn.Next.Start, cn.Next.End)
		deeplink = fmt.Sprintf(deepLinkLessonFormat, cn.Next.ScheduleItem.ID)
	}

	if due > 0 {
		sublineParts = append(sublineParts, fmt.Sprintf("%d homework due today", due))
	}
	if stuck != "" {
		sublineParts = append(sublineParts, "Topic: "+stuck)
	}

	return WidgetSummary{
		Headline: headline,
		Subline:  strings.Join(sublineParts, " • "),
		DeepLink: deeplink,
	}
}
