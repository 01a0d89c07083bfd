package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bnema/chatfs/internal/adapters/bridge/chain"
	"github.com/bnema/chatfs/internal/adapters/bridge/openai"
	"github.com/bnema/chatfs/internal/adapters/fsgateway"
	tomlrepo "github.com/bnema/chatfs/internal/adapters/repo/toml"
	filestore "github.com/bnema/chatfs/internal/adapters/secrets/file"
	"github.com/bnema/chatfs/internal/application"
	"github.com/bnema/chatfs/internal/domain"
	"github.com/bnema/chatfs/internal/ports"
)

const apiKeySecret = "openai/api_key"

type app struct {
	sessions    ports.SessionRepository
	secretStore ports.SecretStore
	gateway     ports.FileGateway
	logger      *zap.Logger
	cfg         *viper.Viper
	now         func() time.Time
}

func wireApp() (*app, error) {
	cfg := viper.New()
	cfg.SetDefault("root", ".")
	cfg.SetDefault("model.name", "gpt-4o-mini")
	cfg.SetDefault("model.fallback_name", "")
	cfg.SetDefault("model.base_url", "https://api.openai.com/v1")
	cfg.SetDefault("model.timeout_seconds", 60)
	cfg.SetDefault("limits.max_read_bytes", application.DefaultMaxReadBytes)
	cfg.SetDefault("limits.max_pin_bytes", application.DefaultMaxPinBytes)

	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session archive: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return &app{
		sessions:    repo,
		secretStore: filestore.NewStore(filepath.Join(homeDir, ".config", "chatfs", "secrets")),
		gateway:     fsgateway.New(),
		logger:      zap.NewNop(),
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

// newSession builds an orchestrator rooted at dir, with the model bridge
// assembled from the active configuration.
func (a *app) newSession(dir string) (*application.Orchestrator, error) {
	bridge, err := a.newBridge()
	if err != nil {
		return nil, fmt.Errorf("wire model bridge: %w", err)
	}

	return application.NewOrchestrator(application.Config{
		WorkspaceRoot: dir,
		MaxReadBytes:  a.cfg.GetInt("limits.max_read_bytes"),
		MaxPinBytes:   a.cfg.GetInt("limits.max_pin_bytes"),
	}, a.gateway, bridge, ports.SystemClock{}, a.logger)
}

func (a *app) newBridge() (ports.ModelBridge, error) {
	apiKey := a.resolveAPIKey()
	baseURL := envOrDefault("CHATFS_MODEL_BASE_URL", a.cfg.GetString("model.base_url"))
	timeout := time.Duration(a.cfg.GetInt("model.timeout_seconds")) * time.Second

	primary := &openai.Client{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		Model:          a.cfg.GetString("model.name"),
		RequestTimeout: timeout,
	}

	fallbackModel := a.cfg.GetString("model.fallback_name")
	if fallbackModel == "" {
		return primary, nil
	}

	fallback := &openai.Client{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		Model:          fallbackModel,
		RequestTimeout: timeout,
	}

	return chain.NewBridgeChecked(primary, fallback)
}

// resolveAPIKey checks the environment before the credential store so CI and
// one-off shells can override a stored key without touching it.
func (a *app) resolveAPIKey() string {
	if key := os.Getenv("CHATFS_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	key, err := a.secretStore.Get(context.Background(), apiKeySecret)
	if err != nil {
		return ""
	}
	return key
}

// archiveSession persists the conversation so far. Sessions with no turns
// are not worth keeping.
func (a *app) archiveSession(ctx context.Context, o *application.Orchestrator, id string, startedAt time.Time) error {
	turns, pinned := o.SessionSnapshot()
	if len(turns) == 0 {
		return nil
	}

	return a.sessions.Save(ctx, domain.Session{
		ID:          id,
		Root:        o.Root(),
		StartedAt:   startedAt,
		EndedAt:     a.now(),
		PinnedPaths: pinned,
		Turns:       turns,
	})
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
