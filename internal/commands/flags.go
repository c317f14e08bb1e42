package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/boardsync/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	Theme      string

	// Board overrides from the command line. Empty values defer to the
	// config file.
	Mode            string
	ProjectID       string
	TranscriptionID string
	SnapshotFile    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "boardsync", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/boardsync/boardsync.log
// On Linux: $XDG_STATE_HOME/boardsync/boardsync.log (defaults to ~/.local/state/boardsync/boardsync.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "boardsync", "boardsync.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "boardsync", "boardsync.log")
	}

	return filepath.Join(home, ".local", "state", "boardsync", "boardsync.log")
}

// BoardConfig resolves the effective board configuration: the config file
// values with any command-line overrides applied on top.
func (f *Flags) BoardConfig() config.BoardConfig {
	board := f.Config.Board
	if f.Mode != "" {
		board.Mode = f.Mode
	}
	if f.ProjectID != "" {
		board.ProjectID = f.ProjectID
	}
	if f.TranscriptionID != "" {
		board.TranscriptionID = f.TranscriptionID
	}
	return board
}
