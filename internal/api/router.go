package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter erstellt den HTTP-Router mit allen Endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	// API-Version
	api := r.PathPrefix("/api/v1").Subrouter()

	// System
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/status", h.GetStatus).Methods("GET")

	// Zustand
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/state", h.PutState).Methods("PUT")
	api.HandleFunc("/state", h.ResetState).Methods("DELETE")
	api.HandleFunc("/mode", h.SetMode).Methods("PUT")

	// Klassen
	api.HandleFunc("/classgroups", h.GetClassGroups).Methods("GET")
	api.HandleFunc("/classgroups", h.CreateClassGroup).Methods("POST")
	api.HandleFunc("/classgroups/select", h.SelectClassGroup).Methods("PUT")
	api.HandleFunc("/classgroups/{id}", h.DeleteClassGroup).Methods("DELETE")

	// Kurse
	api.HandleFunc("/courses", h.GetCourses).Methods("GET")
	api.HandleFunc("/courses", h.CreateCourse).Methods("POST")
	api.HandleFunc("/courses/{id}", h.DeleteCourse).Methods("DELETE")

	// Wochenplan
	api.HandleFunc("/schedule", h.GetSchedule).Methods("GET")
	api.HandleFunc("/schedule", h.UpsertScheduleItem).Methods("POST")
	api.HandleFunc("/schedule/import", h.ImportTimetable).Methods("POST")
	api.HandleFunc("/schedule/scan", h.ScanTimetablesFolder).Methods("POST")
	api.HandleFunc("/schedule/{id}", h.DeleteScheduleItem).Methods("DELETE")

	// Stunden
	api.HandleFunc("/lessons/today", h.GetTodayLessons).Methods("GET")
	api.HandleFunc("/lessons/{scheduleItemId}", h.GetLessonDetail).Methods("GET")

	// Hausaufgaben
	api.HandleFunc("/homeworks", h.GetHomeworks).Methods("GET")
	api.HandleFunc("/homeworks", h.CreateHomework).Methods("POST")
	api.HandleFunc("/homeworks/{id}/toggle", h.ToggleHomework).Methods("PUT")
	api.HandleFunc("/homeworks/{id}", h.DeleteHomework).Methods("DELETE")

	// Lernziele
	api.HandleFunc("/achievements", h.GetAchievements).Methods("GET")
	api.HandleFunc("/achievements", h.CreateAchievement).Methods("POST")

	// Lernstand
	api.HandleFunc("/stuck", h.GetStuck).Methods("GET")
	api.HandleFunc("/stuck", h.CreateStuck).Methods("POST")

	// Widget
	api.HandleFunc("/widget/summary", h.GetWidgetSummary).Methods("GET")
	api.HandleFunc("/widget/prefs", h.GetWidgetPrefs).Methods("GET")
	api.HandleFunc("/widget/prefs", h.PutWidgetPrefs).Methods("PUT")

	// WebSocket für Widget-Aktualisierung
	r.HandleFunc("/ws", h.WidgetSocket)

	// CORS für lokale Entwicklung
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
