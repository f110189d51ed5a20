package timetable

import (
	"strconv"
	"strings"
	"time"
)

// TodayISO liefert das lokale Datum als "YYYY-MM-DD"
func TodayISO(now time.Time) string {
	return now.Format("2006-01-02")
}

// TodayDayIndex bildet den Wochentag auf Montag=0 ... Sonntag=6 ab.
// time.Weekday zählt Sonntag=0; die Verschiebung ist beabsichtigt.
func TodayDayIndex(now time.Time) int {
	return (int(now.Weekday()) + 6) % 7
}

// toMinutes wandelt "HH:MM" in Minuten seit Mitternacht um;
// unlesbare Teile zählen als 0
func toMinutes(hhmm string) int {
	h, m := 0, 0
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) > 0 {
		h, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		m, _ = strconv.Atoi(parts[1])
	}
	return h*60 + m
}

func nowMinutes(now time.Time) int {
	return now.Hour()*60 + now.Minute()
}
