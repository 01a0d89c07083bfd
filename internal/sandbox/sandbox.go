// Package sandbox resolves user-supplied paths against a single workspace
// root. Resolution is purely lexical: no filesystem access, no symlink
// expansion, so it is deterministic and testable without touching disk.
package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bnema/chatfs/internal/domain"
)

type Sandbox struct {
	root string
}

// New canonicalizes root once. The root is the boundary no resolved path may
// cross for the lifetime of the sandbox.
func New(root string) (*Sandbox, error) {
	if strings.TrimSpace(root) == "" {
		return nil, domain.ErrNoRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("canonicalize root %q: %w", root, err)
	}
	return &Sandbox{root: filepath.Clean(abs)}, nil
}

func (s *Sandbox) Root() string { return s.root }

// Resolve maps raw onto an absolute location inside the root. Leading
// separators are stripped, so "/notes.md" addresses the workspace root, not
// the filesystem root. A ".." sequence that would climb out, or a join whose
// canonical result falls outside the root, is rejected; the root itself
// resolves with display path ".".
func (s *Sandbox) Resolve(raw string) (domain.ResolvedPath, error) {
	if s == nil || s.root == "" {
		return domain.ResolvedPath{}, domain.ErrNoRoot
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.ResolvedPath{}, fmt.Errorf("empty path: %w", domain.ErrInvalidPath)
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return domain.ResolvedPath{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidPath)
	}

	normalized := filepath.FromSlash(strings.ReplaceAll(trimmed, "\\", "/"))
	relative := strings.TrimLeft(normalized, string(filepath.Separator))
	cleaned := filepath.Clean(relative)

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return domain.ResolvedPath{}, fmt.Errorf("%q: %w", raw, domain.ErrOutsideSandbox)
	}

	absolute := filepath.Clean(filepath.Join(s.root, cleaned))
	if absolute != s.root && !strings.HasPrefix(absolute, s.root+string(filepath.Separator)) {
		return domain.ResolvedPath{}, fmt.Errorf("%q: %w", raw, domain.ErrOutsideSandbox)
	}

	display := "."
	if absolute != s.root {
		display = filepath.ToSlash(strings.TrimPrefix(absolute, s.root+string(filepath.Separator)))
	}

	return domain.ResolvedPath{Absolute: absolute, Display: display}, nil
}
