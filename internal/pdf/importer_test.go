package pdf

import (
	"testing"
)

func TestParseTimetableText(t *testing.T) {
	text := `
Stundenplan 5/A
2 8:30-9:10 Fen Bilimleri | Deney malzemelerini getir
2 09:20 - 10:00 Matematik
0 08:30–09:10 Türkçe
irgendein Fußzeilentext
7 08:30-09:10 ungültiger Tag
3 25:00-26:00 Müzik
`

	lessons := ParseTimetableText(text)

	if len(lessons) != 4 {
		t.Fatalf("erwartet 4 erkannte Stunden, bekommen %d: %+v", len(lessons), lessons)
	}

	first := lessons[0]
	if first.DayIndex != 2 || first.Title != "Fen Bilimleri" || first.Note != "Deney malzemelerini getir" {
		t.Errorf("erste Zeile falsch geparst: %+v", first)
	}
	if first.Start != "08:30" || first.End != "09:10" {
		t.Errorf("Uhrzeiten müssen auf HH:MM aufgefüllt werden: %s–%s", first.Start, first.End)
	}

	// En-Dash und Leerzeichen um den Bindestrich sind erlaubt
	if lessons[1].Title != "Matematik" || lessons[2].Title != "Türkçe" {
		t.Errorf("Trennzeichen-Varianten nicht erkannt: %+v", lessons[1:3])
	}

	if lessons[2].DayIndex != 0 {
		t.Errorf("dayIndex 0 erwartet, bekommen %d", lessons[2].DayIndex)
	}
}

func TestParseTimetableTextEmpty(t *testing.T) {
	if got := ParseTimetableText("nur Prosa, keine Stunden"); len(got) != 0 {
		t.Errorf("erwartet keine Stunden, bekommen %d", len(got))
	}
}
