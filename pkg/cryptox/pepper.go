package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperOnce sync.Once
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath sets the file the pepper is loaded from (or written to on
// first run). Must be called before the first hash or verify.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the process pepper, loading or generating it on first
// use. A missing or unreadable pepper is unrecoverable since every stored
// hash depends on it.
func GetPepper() string {
	pepperOnce.Do(func() {
		var err error
		pepper, err = loadOrGeneratePepper()
		if err != nil {
			slog.Error("failed to load or generate pepper", slog.Any("err", err))
			os.Exit(1)
		}
	})
	return pepper
}

func loadOrGeneratePepper() (string, error) {
	path := filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	if data, err := os.ReadFile(path); err == nil {
		return string(data), nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	// First run: generate and persist a fresh pepper.
	raw := make([]byte, argonKeyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(raw)
	if err := os.WriteFile(path, []byte(p), 0600); err != nil {
		return "", err
	}
	return p, nil
}
