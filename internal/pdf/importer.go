package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"eduwidget/internal/storage"
)

// Importer extrahiert Stundenpläne aus PDF-Exporten
type Importer struct{}

// NewImporter erstellt einen neuen Stundenplan-Importer
func NewImporter() *Importer {
	return &Importer{}
}

// Zeilenformat: "<Tag 0-6> HH:MM-HH:MM <Titel> [| Notiz]"
var lessonLine = regexp.MustCompile(`^([0-6])\s+(\d{1,2}:\d{2})\s*[-–]\s*(\d{1,2}:\d{2})\s+(.+)$`)

// ParseFile liest eine PDF-Datei und liefert alle erkannten Stunden.
// Nicht parsbare Zeilen werden übersprungen; nur eine unlesbare Datei
// ist ein Fehler.
func (p *Importer) ParseFile(filePath string) ([]storage.ImportedLesson, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Öffnen der PDF: %w", err)
	}
	defer f.Close()

	var content strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		content.WriteString(text)
		content.WriteString("\n")
	}

	return ParseTimetableText(content.String()), nil
}

// ParseDirectory liest alle PDF-Dateien eines Ordners und sammelt
// die erkannten Stunden ein
func (p *Importer) ParseDirectory(dirPath string) ([]storage.ImportedLesson, error) {
	var lessons []storage.ImportedLesson

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			return nil
		}

		rows, err := p.ParseFile(path)
		if err != nil {
			// Fehler loggen, aber fortfahren
			log.Printf("⚠️  Überspringe %s: %v", path, err)
			return nil
		}

		lessons = append(lessons, rows...)
		return nil
	})

	return lessons, err
}

// ParseFromReader parst eine PDF aus einem io.Reader (für Uploads)
func (p *Importer) ParseFromReader(reader io.Reader) ([]storage.ImportedLesson, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen der PDF: %w", err)
	}

	var content strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		content.WriteString(text)
		content.WriteString("\n")
	}

	return ParseTimetableText(content.String()), nil
}

// ParseTimetableText parst den extrahierten Klartext zeilenweise
func ParseTimetableText(text string) []storage.ImportedLesson {
	var lessons []storage.ImportedLesson

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		m := lessonLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		dayIndex, _ := strconv.Atoi(m[1])

		title := m[4]
		note := ""
		if idx := strings.Index(title, "|"); idx >= 0 {
			note = strings.TrimSpace(title[idx+1:])
			title = title[:idx]
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		lessons = append(lessons, storage.ImportedLesson{
			Title:    title,
			Note:     note,
			DayIndex: dayIndex,
			Start:    padClock(m[2]),
			End:      padClock(m[3]),
		})
	}

	return lessons
}

// padClock normalisiert "8:30" zu "08:30", damit Zeitpaare
// beim Rasterabgleich exakt übereinstimmen
func padClock(hhmm string) string {
	if len(hhmm) == 4 {
		return "0" + hhmm
	}
	return hhmm
}
