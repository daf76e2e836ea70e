// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDir = "minedigest"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultLedgerPath returns the default path of the report ledger.
func DefaultLedgerPath() string {
	return filepath.Join(XDGDataHome(), appDir, "ledger.db")
}

// LockPathFor returns the lock file guarding the ledger at ledgerPath.
func LockPathFor(ledgerPath string) string {
	return filepath.Join(filepath.Dir(ledgerPath), "ledger.lock")
}

// DefaultEventStorePath returns where GameSentenceMiner keeps its database.
func DefaultEventStorePath() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "GameSentenceMiner", "gsm.db")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "gsm.db")
	}
	return filepath.Join(home, ".config", "GameSentenceMiner", "gsm.db")
}
