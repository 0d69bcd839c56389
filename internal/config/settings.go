// Package config persists the cashier device's local settings as a JSON
// file next to the app data.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// Settings are client-local: which host to talk to, which printer to use.
type Settings struct {
	ServerAddress  string `json:"serverAddress"`
	PrinterAddress string `json:"printerAddress"`
	PrinterEnabled bool   `json:"printerEnabled"`
	PrintDisplayID bool   `json:"printDisplayId"`
}

// Defaults returns the settings used before the operator configures anything.
func Defaults() Settings {
	return Settings{
		ServerAddress:  "127.0.0.1:8080",
		PrinterEnabled: false,
		PrintDisplayID: true,
	}
}

// Load reads settings from path. A missing file is not an error; it yields
// the defaults.
func Load(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), err
	}
	s := Defaults()
	if err := json.Unmarshal(raw, &s); err != nil {
		return Defaults(), err
	}
	return s, nil
}

// Save writes settings to path atomically enough for a single-writer app.
func Save(path string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
