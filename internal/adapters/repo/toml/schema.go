package toml

import "fmt"

const currentSchemaVersion = 1

type archiveSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionSchema `toml:"sessions"`
}

func (s *archiveSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s archiveSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported archive schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	ID          string       `toml:"id"`
	Root        string       `toml:"root"`
	StartedAt   string       `toml:"started_at"`
	EndedAt     string       `toml:"ended_at,omitempty"`
	PinnedPaths []string     `toml:"pinned_paths,omitempty"`
	Turns       []turnSchema `toml:"turns,omitempty"`
}

type turnSchema struct {
	Speaker string `toml:"speaker"`
	Text    string `toml:"text,multiline"`
}
