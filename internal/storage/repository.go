package storage

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"eduwidget/internal/models"
)

const (
	// StateKey ist der Schlüssel des Zustandsdokuments (Schema v1.1)
	StateKey = "edu_widget_app_state_v11"

	// PrefsKey ist der Schlüssel des Widget-Anzeige-Dokuments
	PrefsKey = "edu_widget_prefs_v1"
)

const defaultClassGroupID = "cg-default"

// NewID erzeugt eine frische Entitäts-ID mit Typ-Präfix
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Repository ist der alleinige Besitzer des persistierten Zustandsdokuments.
// Jeder gelieferte Zustand ist vollständig befüllt und in sich konsistent,
// egal was tatsächlich gespeichert war (Altschema, defekte oder fehlende Daten).
type Repository struct {
	store Storage
	mu    sync.Mutex
}

// NewRepository erstellt ein Repository über dem gegebenen Storage
func NewRepository(store Storage) *Repository {
	return &Repository{store: store}
}

// DefaultTimeSlots liefert das kanonische 8-Stunden-Raster des Schultages
func DefaultTimeSlots() []models.TimeSlot {
	return []models.TimeSlot{
		{SlotIndex: 1, Start: "08:30", End: "09:10"},
		{SlotIndex: 2, Start: "09:20", End: "10:00"},
		{SlotIndex: 3, Start: "10:10", End: "10:50"},
		{SlotIndex: 4, Start: "11:00", End: "11:40"},
		{SlotIndex: 5, Start: "11:50", End: "12:30"},
		{SlotIndex: 6, Start: "13:30", End: "14:10"},
		{SlotIndex: 7, Start: "14:20", End: "15:00"},
		{SlotIndex: 8, Start: "15:10", End: "15:50"},
	}
}

// CreateEmptyState baut den deterministischen Startzustand:
// eine Standardklasse, ein Demo-Kurs mit Demo-Stundenplaneintrag
func CreateEmptyState() models.AppState {
	return models.AppState{
		Mode:                 models.ModeUnset,
		SelectedClassGroupID: defaultClassGroupID,

		ClassGroups: []models.ClassGroup{
			{ID: defaultClassGroupID, Label: "Varsayılan Sınıf"},
		},
		Courses: []models.Course{
			{
				ID:           "course-fen-5a",
				ClassGroupID: defaultClassGroupID,
				Title:        "Fen Bilimleri",
				Type:         models.CourseLesson,
				DefaultNote:  "Deney malzemelerini getir",
			},
		},
		ScheduleItems: []models.ScheduleItem{
			{
				ID:        "sched-demo-1",
				CourseID:  "course-fen-5a",
				DayIndex:  0, // Montag
				SlotIndex: 1,
			},
		},

		TimeSlots: DefaultTimeSlots(),

		Homeworks:    []models.Homework{},
		Achievements: []models.Achievement{},
		DailyStuck:   []models.DailyStuck{},
	}
}

/* ================================
   NORMALISIERUNG (v1.1)
   - ergänzt fehlende Felder
   - erkennt Altschema und migriert
================================ */

// rawDocument zerlegt das Dokument feldweise, damit ein einzelnes
// falsch getyptes Feld nicht das gesamte Parsen scheitern lässt
type rawDocument struct {
	Mode                 json.RawMessage `json:"mode"`
	SelectedClassGroupID json.RawMessage `json:"selectedClassGroupId"`

	ClassGroups   json.RawMessage `json:"classGroups"`
	Courses       json.RawMessage `json:"courses"`
	ScheduleItems json.RawMessage `json:"scheduleItems"`
	TimeSlots     json.RawMessage `json:"timeSlots"`

	Homeworks    json.RawMessage `json:"homeworks"`
	Achievements json.RawMessage `json:"achievements"`
	DailyStuck   json.RawMessage `json:"dailyStuck"`

	// Nur im Altschema vorhanden
	Lessons json.RawMessage `json:"lessons"`
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// NormalizeDocument macht aus einem beliebigen gespeicherten Blob einen
// gültigen, vollständig befüllten Zustand. Scheitert nie.
func NormalizeDocument(raw []byte) models.AppState {
	base := CreateEmptyState()

	if len(raw) == 0 {
		return base
	}

	var doc rawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return base
	}

	// Altschema-Erkennung: lessons ist ein Array, classGroups keines
	if isJSONArray(doc.Lessons) && !isJSONArray(doc.ClassGroups) {
		return migrateLegacy(doc)
	}

	out := base

	// mode nur übernehmen, wenn teacher oder student
	var mode string
	json.Unmarshal(doc.Mode, &mode)
	switch models.UserMode(mode) {
	case models.ModeTeacher, models.ModeStudent:
		out.Mode = models.UserMode(mode)
	default:
		out.Mode = models.ModeUnset
	}

	if doc.SelectedClassGroupID != nil {
		var id string
		if err := json.Unmarshal(doc.SelectedClassGroupID, &id); err == nil {
			out.SelectedClassGroupID = id
		} else {
			out.SelectedClassGroupID = ""
		}
	}

	// Feld vorhanden, aber kein brauchbares Array -> leeres Array;
	// Feld fehlt -> Wert des Startzustands bleibt (classGroups behält
	// auch bei defektem Feld die Standardklasse)
	if doc.ClassGroups != nil {
		var cgs []models.ClassGroup
		if err := json.Unmarshal(doc.ClassGroups, &cgs); err == nil && cgs != nil {
			out.ClassGroups = cgs
		}
	}
	if doc.Courses != nil {
		out.Courses = []models.Course{}
		json.Unmarshal(doc.Courses, &out.Courses)
		if out.Courses == nil {
			out.Courses = []models.Course{}
		}
	}
	if doc.ScheduleItems != nil {
		out.ScheduleItems = []models.ScheduleItem{}
		json.Unmarshal(doc.ScheduleItems, &out.ScheduleItems)
		if out.ScheduleItems == nil {
			out.ScheduleItems = []models.ScheduleItem{}
		}
	}
	if doc.Homeworks != nil {
		out.Homeworks = []models.Homework{}
		json.Unmarshal(doc.Homeworks, &out.Homeworks)
		if out.Homeworks == nil {
			out.Homeworks = []models.Homework{}
		}
	}
	if doc.Achievements != nil {
		out.Achievements = []models.Achievement{}
		json.Unmarshal(doc.Achievements, &out.Achievements)
		if out.Achievements == nil {
			out.Achievements = []models.Achievement{}
		}
	}
	if doc.DailyStuck != nil {
		out.DailyStuck = []models.DailyStuck{}
		json.Unmarshal(doc.DailyStuck, &out.DailyStuck)
		if out.DailyStuck == nil {
			out.DailyStuck = []models.DailyStuck{}
		}
	}

	// Ein Dokument darf nie null Stunden haben
	if doc.TimeSlots != nil {
		var slots []models.TimeSlot
		if err := json.Unmarshal(doc.TimeSlots, &slots); err == nil && len(slots) > 0 {
			out.TimeSlots = slots
		}
	}

	return normalizeRefs(out)
}

// normalizeRefs repariert die Klassen-Auswahl und füllt fehlende
// Fremdschlüssel/IDs auf Hausaufgaben und Stuck-Einträgen nach
func normalizeRefs(out models.AppState) models.AppState {
	cgIDs := make(map[string]bool, len(out.ClassGroups))
	for _, cg := range out.ClassGroups {
		cgIDs[cg.ID] = true
	}
	if out.SelectedClassGroupID == "" || !cgIDs[out.SelectedClassGroupID] {
		if len(out.ClassGroups) > 0 {
			out.SelectedClassGroupID = out.ClassGroups[0].ID
		} else {
			out.SelectedClassGroupID = defaultClassGroupID
		}
	}

	for i := range out.Homeworks {
		if out.Homeworks[i].ClassGroupID == "" {
			out.Homeworks[i].ClassGroupID = out.SelectedClassGroupID
		}
	}
	for i := range out.DailyStuck {
		if out.DailyStuck[i].ID == "" {
			out.DailyStuck[i].ID = NewID("stuck")
		}
		if out.DailyStuck[i].ClassGroupID == "" {
			out.DailyStuck[i].ClassGroupID = out.SelectedClassGroupID
		}
	}

	return out
}

/* ================================
   ALT-MIGRATION (V1 -> v1.1)
   Alte Struktur: lessons[].
   Neue Struktur: classGroups/courses/scheduleItems/timeSlots
================================ */

type legacyLesson struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Note      string          `json:"note"`
	DayIndex  json.RawMessage `json:"dayIndex"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
}

func (l legacyLesson) dayIndex() int {
	var d int
	if err := json.Unmarshal(l.DayIndex, &d); err != nil {
		return 0
	}
	return d
}

// buildTimeSlotsFromLegacy bildet aus den Start/Ende-Paaren der alten
// Stunden ein Raster; ohne brauchbare Paare bleibt das Standardraster
func buildTimeSlotsFromLegacy(lessons []legacyLesson) []models.TimeSlot {
	seen := make(map[string]bool)
	var pairs []models.TimeRange
	for _, l := range lessons {
		if l.StartTime == "" || l.EndTime == "" {
			continue
		}
		key := l.StartTime + "|" + l.EndTime
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, models.TimeRange{Start: l.StartTime, End: l.EndTime})
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

func findSlotIndex(slots []models.TimeSlot, r models.TimeRange) int {
	for _, ts := range slots {
		if ts.Start == r.Start && ts.End == r.End {
			return ts.SlotIndex
		}
	}
	return 1
}

func migrateLegacy(doc rawDocument) models.AppState {
	base := CreateEmptyState()
	cgID := base.SelectedClassGroupID

	var rawLessons []json.RawMessage
	json.Unmarshal(doc.Lessons, &rawLessons)

	var lessons []legacyLesson
	for _, rl := range rawLessons {
		var l legacyLesson
		if err := json.Unmarshal(rl, &l); err != nil {
			continue
		}
		lessons = append(lessons, l)
	}

	timeSlots := buildTimeSlotsFromLegacy(lessons)

	// Kurse: eindeutig je Stundentitel, erster Treffer gewinnt
	courseByTitle := make(map[string]string)
	courses := []models.Course{}
	scheduleItems := []models.ScheduleItem{}

	for _, l := range lessons {
		title := strings.TrimSpace(l.Title)
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

		// slotIndex: bei passendem Start/Ende nachschlagen, sonst 1
		slotIndex := 1
		if l.StartTime != "" && l.EndTime != "" {
			slotIndex = findSlotIndex(timeSlots, models.TimeRange{Start: l.StartTime, End: l.EndTime})
		}

		scheduleItems = append(scheduleItems, models.ScheduleItem{
			ID:           NewID("sched"),
			CourseID:     courseID,
			DayIndex:     l.dayIndex(),
			SlotIndex:    slotIndex,
			NoteOverride: l.Note,
		})
	}

	out := base
	out.TimeSlots = timeSlots
	out.Courses = courses
	out.ScheduleItems = scheduleItems

	var mode string
	json.Unmarshal(doc.Mode, &mode)
	switch models.UserMode(mode) {
	case models.ModeTeacher, models.ModeStudent:
		out.Mode = models.UserMode(mode)
	default:
		out.Mode = models.ModeUnset
	}

	// Hausaufgaben, Lernziele und Stuck-Einträge unverändert übernehmen
	out.Homeworks = []models.Homework{}
	json.Unmarshal(doc.Homeworks, &out.Homeworks)
	if out.Homeworks == nil {
		out.Homeworks = []models.Homework{}
	}
	out.Achievements = []models.Achievement{}
	json.Unmarshal(doc.Achievements, &out.Achievements)
	if out.Achievements == nil {
		out.Achievements = []models.Achievement{}
	}
	out.DailyStuck = []models.DailyStuck{}
	json.Unmarshal(doc.DailyStuck, &out.DailyStuck)
	if out.DailyStuck == nil {
		out.DailyStuck = []models.DailyStuck{}
	}

	return normalizeRefs(out)
}

/* ================================
   ÖFFENTLICHE API
================================ */

// GetState lädt das Zustandsdokument. Scheitert nie sichtbar: bei fehlendem
// Schlüssel, unlesbarem Inhalt oder Lesefehlern kommt der Startzustand zurück.
func (r *Repository) GetState() models.AppState {
	raw, err := r.store.GetBlob(StateKey)
	if err != nil {
		return CreateEmptyState()
	}
	return NormalizeDocument(raw)
}

// SetState normalisiert und persistiert den nächsten Zustand.
// Der Umweg über JSON stellt sicher, dass Schreib- und Lesepfad
// exakt dieselbe Normalisierung durchlaufen.
func (r *Repository) SetState(next models.AppState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setStateLocked(next)
}

func (r *Repository) setStateLocked(next models.AppState) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	normalized := NormalizeDocument(raw)

	data, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return r.store.SetBlob(StateKey, data)
}

// UpdateState liest den aktuellen Zustand, wendet updater an und schreibt
// das Ergebnis zurück. Read-modify-write ohne Versionierung; die Sperre
// verhindert nur verschränkte Zyklen innerhalb dieses Prozesses.
func (r *Repository) UpdateState(updater func(models.AppState) models.AppState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.GetState()
	next := updater(current)
	return r.setStateLocked(next)
}

// ClearState löscht das Dokument; der nächste GetState liefert den Startzustand
func (r *Repository) ClearState() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.DeleteBlob(StateKey)
}

/* ================================
   WIDGET-EINSTELLUNGEN
================================ */

// GetWidgetPrefs liefert die Anzeige-Einstellungen des Widgets.
// Fehlende, unlesbare oder unbekannte Werte fallen auf "compact" zurück.
func (r *Repository) GetWidgetPrefs() models.WidgetPrefs {
	def := models.WidgetPrefs{Layout: models.LayoutCompact}

	raw, err := r.store.GetBlob(PrefsKey)
	if err != nil {
		return def
	}

	var prefs models.WidgetPrefs
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return def
	}

	switch prefs.Layout {
	case models.LayoutCompact, models.LayoutLarge, models.LayoutVertical:
		return prefs
	default:
		return def
	}
}

// SetWidgetPrefs persistiert die Anzeige-Einstellungen
func (r *Repository) SetWidgetPrefs(next models.WidgetPrefs) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return r.store.SetBlob(PrefsKey, data)
}
