package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"eduwidget/internal/api"
	"eduwidget/internal/config"
	"eduwidget/internal/storage"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("")

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🏫 EDUWIDGET - Start")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Kommandozeilen-Flags
	configPath := flag.String("config", "config.json", "Pfad zur Konfigurationsdatei")
	port := flag.String("port", "8080", "Server-Port")
	flag.Parse()

	// Konfiguration laden
	log.Println("📋 Lade Konfiguration...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("⚠️  Konnte Konfiguration nicht laden, verwende Standardwerte: %v", err)
		cfg = config.Default()
	}
	log.Printf("   ✓ Konfiguration geladen")

	// Storage initialisieren
	log.Println("💾 Initialisiere Datenbank...")
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Fehler beim Initialisieren der Datenbank: %v", err)
	}
	defer store.Close()
	log.Printf("   ✓ Datenbank: %s", cfg.DatabasePath)

	// Repository aufwärmen: normalisiert und migriert das Dokument
	// beim ersten Lesen, falls nötig
	repo := storage.NewRepository(store)
	state := repo.GetState()
	log.Printf("   ✓ Zustand geladen: %d Klassen, %d Kurse, %d Planeinträge",
		len(state.ClassGroups), len(state.Courses), len(state.ScheduleItems))
	if state.Mode == "" {
		log.Println("   ⚠️  Noch kein Modus gewählt (teacher/student)")
	}

	// API-Handler erstellen
	handler := api.NewHandler(repo, cfg)

	// Router erstellen
	router := api.NewRouter(handler)

	// Server starten
	server := &http.Server{
		Addr:    ":" + *port,
		Handler: router,
	}

	// Graceful Shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("")
		log.Println("⏹️  Server wird heruntergefahren...")
		server.Close()
	}()

	log.Println("")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✅ Server läuft auf: http://localhost:%s", *port)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("📚 Stundenplan-Ordner:", cfg.TimetablesPath)
	log.Println("💡 Drücke Strg+C zum Beenden")
	log.Println("")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server-Fehler: %v", err)
	}
}
