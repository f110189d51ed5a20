package models

// UserMode unterscheidet Lehrer- und Schüleransicht
type UserMode string

const (
	ModeTeacher UserMode = "teacher"
	ModeStudent UserMode = "student"
	ModeUnset   UserMode = ""
)

// ClassGroup repräsentiert eine Klasse (z.B. "5/A", "7/D")
type ClassGroup struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CourseType klassifiziert einen Kurs
type CourseType string

const (
	CourseLesson  CourseType = "lesson"
	CourseDYK     CourseType = "dyk"
	CoursePrivate CourseType = "private"
	CourseStudy   CourseType = "study"
)

// Course repräsentiert ein Unterrichtsfach einer Klasse
type Course struct {
	ID           string     `json:"id"`
	ClassGroupID string     `json:"classGroupId"`
	Title        string     `json:"title"`
	Type         CourseType `json:"type"`

	// Wochenweite "feste Notiz" des Kurses
	DefaultNote string `json:"defaultNote,omitempty"`

	// Später: dem Kurs zugeordnete Lernziele
	AchievementIDs []string `json:"achievementIds,omitempty"`
}

// TimeRange ist ein Zeitfenster im "HH:MM"-Format
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TimeSlot ist eine Unterrichtsstunde des Schultages (1..N)
type TimeSlot struct {
	SlotIndex int    `json:"slotIndex"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// ScheduleItem belegt eine (Tag, Stunde)-Zelle des Wochenplans
type ScheduleItem struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`

	DayIndex  int `json:"dayIndex"`  // 0=Mo ... 6=So
	SlotIndex int `json:"slotIndex"` // 1..N

	// An manchen Tagen weicht die Uhrzeit ab
	TimeOverride *TimeRange `json:"timeOverride,omitempty"`

	// Notiz nur für diese Zelle
	NoteOverride string `json:"noteOverride,omitempty"`
}

// Homework repräsentiert eine Hausaufgabe mit Abgabedatum
type Homework struct {
	ID           string `json:"id"`
	ClassGroupID string `json:"classGroupId"`
	Title        string `json:"title"`
	DueDateISO   string `json:"dueDateISO"` // "YYYY-MM-DD"
	CreatedBy    string `json:"createdBy"`  // immer "teacher"
	IsDone       bool   `json:"isDone"`
}

// Achievement repräsentiert ein Lernziel aus dem Lehrplan
type Achievement struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Unit    string `json:"unit,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

// DailyStuck hält fest, wo eine Klasse an einem Tag stehen geblieben ist
type DailyStuck struct {
	ID           string `json:"id"`
	DateISO      string `json:"dateISO"`
	ClassGroupID string `json:"classGroupId"`

	ScheduleItemID string `json:"scheduleItemId,omitempty"`
	CourseID       string `json:"courseId,omitempty"`

	AchievementID string `json:"achievementId"`
	Note          string `json:"note,omitempty"`
}

// AppState ist das einzige persistierte Zustandsdokument (v1.1)
type AppState struct {
	Mode UserMode `json:"mode,omitempty"`

	// Lehrerseite: zuletzt gewählte Klasse
	SelectedClassGroupID string `json:"selectedClassGroupId,omitempty"`

	ClassGroups   []ClassGroup   `json:"classGroups"`
	Courses       []Course       `json:"courses"`
	ScheduleItems []ScheduleItem `json:"scheduleItems"`

	// Gemeinsame Stundenzeiten (Standardraster der Schule)
	TimeSlots []TimeSlot `json:"timeSlots"`

	Homeworks    []Homework    `json:"homeworks"`
	Achievements []Achievement `json:"achievements"`
	DailyStuck   []DailyStuck  `json:"dailyStuck"`
}

// WidgetLayout wählt eine der festen Widget-Vorlagen
type WidgetLayout string

const (
	LayoutCompact  WidgetLayout = "compact"
	LayoutLarge    WidgetLayout = "large"
	LayoutVertical WidgetLayout = "vertical"
)

// WidgetPrefs ist das separat persistierte Anzeige-Dokument
type WidgetPrefs struct {
	Layout WidgetLayout `json:"layout"`
}
