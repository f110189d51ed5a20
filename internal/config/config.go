package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config enthält alle Konfigurationseinstellungen
type Config struct {
	// Server-Einstellungen
	ServerPort string `json:"server_port"`

	// Pfade
	DatabasePath   string `json:"database_path"`
	TimetablesPath string `json:"timetables_path"`
}

// Default gibt die Standardkonfiguration zurück
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		ServerPort:     "8080",
		DatabasePath:   "eduwidget.db",
		TimetablesPath: filepath.Join(homeDir, "Stundenplaene"),
	}
}

// Load lädt die Konfiguration aus einer Datei
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save speichert die Konfiguration in eine Datei
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
