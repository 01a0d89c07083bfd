package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/chatfs/internal/domain"
	"github.com/bnema/chatfs/internal/ports"
)

const (
	configName      = "config"
	configType      = "toml"
	archivePathKey  = "archive.path"
	archiveFileMode = 0o600
	archiveDirMode  = 0o700
	archiveFileName = "sessions.toml"
	tempFilePattern = ".sessions-*.toml.tmp"
)

// Repository archives finished sessions in a single TOML file. Writes are
// atomic (temp file + rename) and serialized per archive path, so concurrent
// sessions in one process never interleave partial writes.
type Repository struct {
	archivePath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "chatfs")
	defaultPath := filepath.Join(configDir, archiveFileName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	cfg.SetDefault(archivePathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	archivePath := cfg.GetString(archivePathKey)
	if archivePath == "" {
		return nil, errors.New("archive path is empty")
	}
	archivePath, err = normalizeArchivePath(archivePath)
	if err != nil {
		return nil, err
	}

	return &Repository{archivePath: archivePath, mu: lockForPath(archivePath)}, nil
}

// Save upserts one session by id.
func (r *Repository) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.ID == "" {
		return errors.New("session id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	encoded := toSchema(session)
	updated := false
	for i := range file.Sessions {
		if file.Sessions[i].ID == encoded.ID {
			file.Sessions[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Sessions = append(file.Sessions, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) List(ctx context.Context) ([]domain.SessionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.SessionSummary, 0, len(file.Sessions))
	for _, entry := range file.Sessions {
		summaries = append(summaries, fromSchema(entry).Summary())
	}

	return summaries, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Session{}, err
	}

	for _, entry := range file.Sessions {
		if entry.ID == id {
			return fromSchema(entry), nil
		}
	}

	return domain.Session{}, domain.ErrSessionNotFound
}

func (r *Repository) readSchema() (archiveSchema, error) {
	data, err := os.ReadFile(r.archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return archiveSchema{}, nil
		}
		return archiveSchema{}, fmt.Errorf("read archive file: %w", err)
	}

	var file archiveSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return archiveSchema{}, fmt.Errorf("decode archive file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return archiveSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file archiveSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.archivePath), archiveDirMode); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode archive file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.archivePath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp archive file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp archive file: %w", err)
	}

	if err := tempFile.Chmod(archiveFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp archive file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp archive file: %w", err)
	}

	if err := os.Rename(tempName, r.archivePath); err != nil {
		return fmt.Errorf("replace archive file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.archivePath, archiveFileMode); err != nil {
		return fmt.Errorf("chmod archive file: %w", err)
	}

	return nil
}

func normalizeArchivePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve archive path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(session domain.Session) sessionSchema {
	turns := make([]turnSchema, 0, len(session.Turns))
	for _, turn := range session.Turns {
		turns = append(turns, turnSchema{Speaker: string(turn.Speaker), Text: turn.Text})
	}

	return sessionSchema{
		ID:          session.ID,
		Root:        session.Root,
		StartedAt:   formatTime(session.StartedAt),
		EndedAt:     formatTime(session.EndedAt),
		PinnedPaths: session.PinnedPaths,
		Turns:       turns,
	}
}

func fromSchema(entry sessionSchema) domain.Session {
	turns := make([]domain.Turn, 0, len(entry.Turns))
	for _, turn := range entry.Turns {
		turns = append(turns, domain.Turn{Speaker: domain.Speaker(turn.Speaker), Text: turn.Text})
	}

	return domain.Session{
		ID:          entry.ID,
		Root:        entry.Root,
		StartedAt:   parseTime(entry.StartedAt),
		EndedAt:     parseTime(entry.EndedAt),
		PinnedPaths: entry.PinnedPaths,
		Turns:       turns,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
