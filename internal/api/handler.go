package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"eduwidget/internal/config"
	"eduwidget/internal/models"
	"eduwidget/internal/pdf"
	"eduwidget/internal/storage"
	"eduwidget/internal/timetable"
)

// Handler verwaltet alle API-Endpunkte
type Handler struct {
	repo     *storage.Repository
	importer *pdf.Importer
	config   *config.Config
	upgrader websocket.Upgrader

	// Widget-Hosts, die auf Zustandsänderungen lauschen
	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	// Uhrzeitquelle, in Tests austauschbar
	now func() time.Time
}

// NewHandler erstellt einen neuen API-Handler
func NewHandler(repo *storage.Repository, cfg *config.Config) *Handler {
	return &Handler{
		repo:     repo,
		importer: pdf.NewImporter(),
		config:   cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
		now:     time.Now,
	}
}

// Response-Helper
func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

// notifyStateChanged stößt alle verbundenen Widget-Hosts an,
// damit sie die Zusammenfassung neu abholen
func (h *Handler) notifyStateChanged() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(map[string]string{"event": "state_changed"}); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// === System-Endpunkte ===

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": h.now(),
	}, http.StatusOK)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()

	jsonResponse(w, map[string]interface{}{
		"mode":                 state.Mode,
		"selected_class_group": state.SelectedClassGroupID,
		"class_groups_count":   len(state.ClassGroups),
		"courses_count":        len(state.Courses),
		"schedule_items_count": len(state.ScheduleItems),
		"homeworks_count":      len(state.Homeworks),
	}, http.StatusOK)
}

// === Zustand ===

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.repo.GetState(), http.StatusOK)
}

// PutState ersetzt das gesamte Zustandsdokument; die Antwort zeigt,
// was nach der Normalisierung tatsächlich gespeichert wurde
func (h *Handler) PutState(w http.ResponseWriter, r *http.Request) {
	var next models.AppState
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetState(next); err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, h.repo.GetState(), http.StatusOK)
}

func (h *Handler) ResetState(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ClearState(); err != nil {
		errorResponse(w, "Fehler beim Zurücksetzen", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, h.repo.GetState(), http.StatusOK)
}

func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode models.UserMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	if req.Mode != models.ModeTeacher && req.Mode != models.ModeStudent {
		errorResponse(w, "Modus muss teacher oder student sein", http.StatusBadRequest)
		return
	}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.Mode = req.Mode
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]models.UserMode{"mode": req.Mode}, http.StatusOK)
}

// === Klassen ===

func (h *Handler) GetClassGroups(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	jsonResponse(w, map[string]interface{}{
		"classGroups":          state.ClassGroups,
		"selectedClassGroupId": state.SelectedClassGroupID,
	}, http.StatusOK)
}

// CreateClassGroup legt eine Klasse an und wählt sie direkt aus
func (h *Handler) CreateClassGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		errorResponse(w, "Kein Klassenname angegeben", http.StatusBadRequest)
		return
	}

	cg := models.ClassGroup{ID: storage.NewID("cg"), Label: label}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.ClassGroups = append(prev.ClassGroups, cg)
		prev.SelectedClassGroupID = cg.ID
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, cg, http.StatusCreated)
}

func (h *Handler) SelectClassGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	state := h.repo.GetState()
	found := false
	for _, cg := range state.ClassGroups {
		if cg.ID == req.ID {
			found = true
			break
		}
	}
	if !found {
		errorResponse(w, "Klasse nicht gefunden", http.StatusNotFound)
		return
	}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.SelectedClassGroupID = req.ID
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]string{"selectedClassGroupId": req.ID}, http.StatusOK)
}

// DeleteClassGroup entfernt eine Klasse mitsamt Kursen, Planeinträgen,
// Hausaufgaben und Stuck-Einträgen; die Normalisierung wählt danach
// automatisch die erste verbleibende Klasse
func (h *Handler) DeleteClassGroup(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		groups := prev.ClassGroups[:0:0]
		for _, cg := range prev.ClassGroups {
			if cg.ID != id {
				groups = append(groups, cg)
			}
		}
		prev.ClassGroups = groups

		courseIDs := make(map[string]bool)
		courses := prev.Courses[:0:0]
		for _, c := range prev.Courses {
			if c.ClassGroupID == id {
				courseIDs[c.ID] = true
				continue
			}
			courses = append(courses, c)
		}
		prev.Courses = courses

		items := prev.ScheduleItems[:0:0]
		for _, si := range prev.ScheduleItems {
			if !courseIDs[si.CourseID] {
				items = append(items, si)
			}
		}
		prev.ScheduleItems = items

		homeworks := prev.Homeworks[:0:0]
		for _, hw := range prev.Homeworks {
			if hw.ClassGroupID != id {
				homeworks = append(homeworks, hw)
			}
		}
		prev.Homeworks = homeworks

		stuck := prev.DailyStuck[:0:0]
		for _, d := range prev.DailyStuck {
			if d.ClassGroupID != id {
				stuck = append(stuck, d)
			}
		}
		prev.DailyStuck = stuck

		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]string{"deleted": id}, http.StatusOK)
}

// === Kurse ===

func (h *Handler) GetCourses(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	jsonResponse(w, timetable.CoursesForSelectedClass(state), http.StatusOK)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string            `json:"title"`
		Type        models.CourseType `json:"type"`
		DefaultNote string            `json:"defaultNote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errorResponse(w, "Kein Kurstitel angegeben", http.StatusBadRequest)
		return
	}

	courseType := req.Type
	switch courseType {
	case models.CourseLesson, models.CourseDYK, models.CoursePrivate, models.CourseStudy:
	case "":
		courseType = models.CourseLesson
	default:
		errorResponse(w, "Unbekannter Kurstyp", http.StatusBadRequest)
		return
	}

	state := h.repo.GetState()
	course := models.Course{
		ID:           storage.NewID("course"),
		ClassGroupID: state.SelectedClassGroupID,
		Title:        title,
		Type:         courseType,
		DefaultNote:  req.DefaultNote,
	}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.Courses = append(prev.Courses, course)
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, course, http.StatusCreated)
}

// DeleteCourse entfernt einen Kurs samt seiner Planeinträge
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		courses := prev.Courses[:0:0]
		for _, c := range prev.Courses {
			if c.ID != id {
				courses = append(courses, c)
			}
		}
		prev.Courses = courses

		items := prev.ScheduleItems[:0:0]
		for _, si := range prev.ScheduleItems {
			if si.CourseID != id {
				items = append(items, si)
			}
		}
		prev.ScheduleItems = items

		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]string{"deleted": id}, http.StatusOK)
}

// === Wochenplan ===

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	jsonResponse(w, map[string]interface{}{
		"scheduleItems": timetable.ScheduleForSelectedClass(state),
		"timeSlots":     state.TimeSlots,
	}, http.StatusOK)
}

// UpsertScheduleItem belegt eine (Tag, Stunde)-Zelle der gewählten Klasse.
// Eine bereits belegte Zelle wird ersetzt, die ID bleibt dabei erhalten.
func (h *Handler) UpsertScheduleItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID     string            `json:"courseId"`
		DayIndex     int               `json:"dayIndex"`
		SlotIndex    int               `json:"slotIndex"`
		NoteOverride string            `json:"noteOverride"`
		TimeOverride *models.TimeRange `json:"timeOverride"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	if req.DayIndex < 0 || req.DayIndex > 6 {
		errorResponse(w, "dayIndex muss zwischen 0 und 6 liegen", http.StatusBadRequest)
		return
	}
	if req.SlotIndex < 1 {
		errorResponse(w, "slotIndex muss positiv sein", http.StatusBadRequest)
		return
	}

	state := h.repo.GetState()
	var course *models.Course
	for _, c := range timetable.CoursesForSelectedClass(state) {
		if c.ID == req.CourseID {
			match := c
			course = &match
			break
		}
	}
	if course == nil {
		errorResponse(w, "Kurs nicht gefunden", http.StatusNotFound)
		return
	}

	var saved models.ScheduleItem
	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		classCourses := make(map[string]bool)
		for _, c := range prev.Courses {
			if c.ClassGroupID == prev.SelectedClassGroupID {
				classCourses[c.ID] = true
			}
		}

		for i, si := range prev.ScheduleItems {
			if classCourses[si.CourseID] && si.DayIndex == req.DayIndex && si.SlotIndex == req.SlotIndex {
				prev.ScheduleItems[i].CourseID = req.CourseID
				prev.ScheduleItems[i].NoteOverride = req.NoteOverride
				prev.ScheduleItems[i].TimeOverride = req.TimeOverride
				saved = prev.ScheduleItems[i]
				return prev
			}
		}

		saved = models.ScheduleItem{
			ID:           storage.NewID("sched"),
			CourseID:     req.CourseID,
			DayIndex:     req.DayIndex,
			SlotIndex:    req.SlotIndex,
			NoteOverride: req.NoteOverride,
			TimeOverride: req.TimeOverride,
		}
		prev.ScheduleItems = append(prev.ScheduleItems, saved)
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, saved, http.StatusOK)
}

func (h *Handler) DeleteScheduleItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		items := prev.ScheduleItems[:0:0]
		for _, si := range prev.ScheduleItems {
			if si.ID != id {
				items = append(items, si)
			}
		}
		prev.ScheduleItems = items
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]string{"deleted": id}, http.StatusOK)
}

// ImportTimetable liest einen Stundenplan aus einer hochgeladenen PDF
// und ersetzt damit den Wochenplan der gewählten Klasse
func (h *Handler) ImportTimetable(w http.ResponseWriter, r *http.Request) {
	// Max 10MB
	r.ParseMultipartForm(10 << 20)

	file, _, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, "Keine Datei gefunden", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.importer.ParseFromReader(file)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Fehler beim Parsen: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.repo.ImportLessons(rows); err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]interface{}{
		"imported_lessons": len(rows),
	}, http.StatusCreated)
}

// ScanTimetablesFolder importiert alle PDFs aus dem konfigurierten Ordner
func (h *Handler) ScanTimetablesFolder(w http.ResponseWriter, r *http.Request) {
	path := h.config.TimetablesPath

	// Optional: Pfad aus Request
	var req struct {
		Path string `json:"path"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if req.Path != "" {
		path = req.Path
	}

	rows, err := h.importer.ParseDirectory(path)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Fehler beim Scannen: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.repo.ImportLessons(rows); err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]interface{}{
		"imported_lessons": len(rows),
		"path":             path,
	}, http.StatusOK)
}

// === Stunden (heute / Detail) ===

func (h *Handler) GetTodayLessons(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	now := h.now()

	cn := timetable.CurrentAndNextLesson(state, now)
	jsonResponse(w, map[string]interface{}{
		"lessons":  timetable.TodayLessons(state, now),
		"current":  cn.Current,
		"next":     cn.Next,
		"nextList": cn.NextList,
	}, http.StatusOK)
}

// GetLessonDetail löst einen Deep-Link "eduwidget://lesson/{id}" auf.
// Eine unbekannte ID ist kein Fehlerzustand, sondern found=false.
func (h *Handler) GetLessonDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["scheduleItemId"]
	state := h.repo.GetState()

	for _, si := range state.ScheduleItems {
		if si.ID != id {
			continue
		}

		course := timetable.CourseByID(state, si.CourseID)

		start, end := "00:00", "00:00"
		for _, ts := range state.TimeSlots {
			if ts.SlotIndex == si.SlotIndex {
				start, end = ts.Start, ts.End
				break
			}
		}
		if si.TimeOverride != nil {
			start, end = si.TimeOverride.Start, si.TimeOverride.End
		}

		jsonResponse(w, map[string]interface{}{
			"found":        true,
			"scheduleItem": si,
			"course":       course,
			"start":        start,
			"end":          end,
		}, http.StatusOK)
		return
	}

	jsonResponse(w, map[string]interface{}{"found": false}, http.StatusOK)
}

// === Hausaufgaben ===

func (h *Handler) GetHomeworks(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	jsonResponse(w, timetable.HomeworksForSelectedClass(state), http.StatusOK)
}

func (h *Handler) CreateHomework(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string `json:"title"`
		DueDateISO string `json:"dueDateISO"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errorResponse(w, "Kein Titel angegeben", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.DueDateISO); err != nil {
		errorResponse(w, "Abgabedatum muss YYYY-MM-DD sein", http.StatusBadRequest)
		return
	}

	state := h.repo.GetState()
	hw := models.Homework{
		ID:           storage.NewID("hw"),
		ClassGroupID: state.SelectedClassGroupID,
		Title:        title,
		DueDateISO:   req.DueDateISO,
		CreatedBy:    "teacher",
		IsDone:       false,
	}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.Homeworks = append(prev.Homeworks, hw)
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, hw, http.StatusCreated)
}

// ToggleHomework markiert eine Hausaufgabe als erledigt bzw. offen
func (h *Handler) ToggleHomework(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var toggled *models.Homework
	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		for i := range prev.Homeworks {
			if prev.Homeworks[i].ID == id {
				prev.Homeworks[i].IsDone = !prev.Homeworks[i].IsDone
				hw := prev.Homeworks[i]
				toggled = &hw
				break
			}
		}
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}
	if toggled == nil {
		errorResponse(w, "Hausaufgabe nicht gefunden", http.StatusNotFound)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, toggled, http.StatusOK)
}

func (h *Handler) DeleteHomework(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		homeworks := prev.Homeworks[:0:0]
		for _, hw := range prev.Homeworks {
			if hw.ID != id {
				homeworks = append(homeworks, hw)
			}
		}
		prev.Homeworks = homeworks
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, map[string]string{"deleted": id}, http.StatusOK)
}

// === Lernziele ===

func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	jsonResponse(w, state.Achievements, http.StatusOK)
}

func (h *Handler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Unit    string `json:"unit"`
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	// Mindestens eines der Felder muss befüllt sein, sonst bleibt
	// später nichts anzuzeigen
	if strings.TrimSpace(req.Title) == "" &&
		strings.TrimSpace(req.Unit) == "" &&
		strings.TrimSpace(req.Outcome) == "" {
		errorResponse(w, "Titel, Einheit oder Lernergebnis angeben", http.StatusBadRequest)
		return
	}

	ach := models.Achievement{
		ID:      storage.NewID("ach"),
		Title:   req.Title,
		Unit:    req.Unit,
		Outcome: req.Outcome,
	}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.Achievements = append(prev.Achievements, ach)
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, ach, http.StatusCreated)
}

// === Lernstand ("Heute sind wir hier stehen geblieben") ===

func (h *Handler) GetStuck(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()

	records := []models.DailyStuck{}
	for _, d := range state.DailyStuck {
		if d.ClassGroupID == state.SelectedClassGroupID {
			records = append(records, d)
		}
	}

	jsonResponse(w, map[string]interface{}{
		"records":  records,
		"lastText": timetable.LastStuckText(state),
	}, http.StatusOK)
}

// CreateStuck hängt einen neuen Lernstand-Eintrag an. Einträge werden
// nur angehängt; der letzte im Array gilt als aktueller Stand.
func (h *Handler) CreateStuck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AchievementID  string `json:"achievementId"`
		ScheduleItemID string `json:"scheduleItemId"`
		CourseID       string `json:"courseId"`
		Note           string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	state := h.repo.GetState()
	found := false
	for _, a := range state.Achievements {
		if a.ID == req.AchievementID {
			found = true
			break
		}
	}
	if !found {
		errorResponse(w, "Lernziel nicht gefunden", http.StatusNotFound)
		return
	}

	record := models.DailyStuck{
		ID:             storage.NewID("stuck"),
		DateISO:        timetable.TodayISO(h.now()),
		ClassGroupID:   state.SelectedClassGroupID,
		ScheduleItemID: req.ScheduleItemID,
		CourseID:       req.CourseID,
		AchievementID:  req.AchievementID,
		Note:           req.Note,
	}

	err := h.repo.UpdateState(func(prev models.AppState) models.AppState {
		prev.DailyStuck = append(prev.DailyStuck, record)
		return prev
	})
	if err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, record, http.StatusCreated)
}

// === Widget ===

// GetWidgetSummary liefert die beiden Textzeilen, das Navigationsziel
// und das gewählte Layout für den Widget-Host
func (h *Handler) GetWidgetSummary(w http.ResponseWriter, r *http.Request) {
	state := h.repo.GetState()
	summary := timetable.BuildWidgetSummary(state, h.now())
	prefs := h.repo.GetWidgetPrefs()

	jsonResponse(w, map[string]interface{}{
		"headline": summary.Headline,
		"subline":  summary.Subline,
		"deeplink": summary.DeepLink,
		"layout":   prefs.Layout,
	}, http.StatusOK)
}

func (h *Handler) GetWidgetPrefs(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.repo.GetWidgetPrefs(), http.StatusOK)
}

func (h *Handler) PutWidgetPrefs(w http.ResponseWriter, r *http.Request) {
	var req models.WidgetPrefs
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	switch req.Layout {
	case models.LayoutCompact, models.LayoutLarge, models.LayoutVertical:
	default:
		errorResponse(w, "Layout muss compact, large oder vertical sein", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetWidgetPrefs(req); err != nil {
		errorResponse(w, "Fehler beim Speichern", http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()
	jsonResponse(w, req, http.StatusOK)
}

// WidgetSocket hält eine WebSocket-Verbindung zum Widget-Host offen
// und meldet jede Zustandsänderung
func (h *Handler) WidgetSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Leseschleife nur zur Verbindungsüberwachung
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
