package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestAuthSetKeyRequiresValueFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "auth", "set-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"value\" not set")
}

func TestAuthSetKeyStoresCredentialWithTightPermissions(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "auth", "set-key", "--value", "sk-test-123")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stored API key")

	secretPath := filepath.Join(home, ".config", "chatfs", "secrets", "openai", "api_key")
	data, err := os.ReadFile(secretPath)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", string(data))

	info, err := os.Stat(secretPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAuthClearRemovesCredentialAndIsIdempotent(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "auth", "set-key", "--value", "sk-test-123")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "auth", "clear")
	require.NoError(t, err)

	secretPath := filepath.Join(home, ".config", "chatfs", "secrets", "openai", "api_key")
	_, err = os.Stat(secretPath)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = executeCLI(t, home, "auth", "clear")
	require.NoError(t, err)
}

func TestSessionsListWithEmptyArchive(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no archived sessions")
}

func TestVerboseFlagIsAcceptedEverywhere(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--verbose", "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no archived sessions")
}

func TestSendListDoesNotTouchTheModel(t *testing.T) {
	home := t.TempDir()
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "readme.md"), []byte("hi\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(workspace, "docs"), 0o755))

	stdout, _, err := executeCLI(t, home, "send", "--root", workspace, "--plain", "/list", ".")
	require.NoError(t, err)
	assert.Contains(t, stdout, "docs/")
	assert.Contains(t, stdout, "readme.md")
	assert.Contains(t, stdout, "2 entries")
}

func TestSendCreateWithoutApplyDiscardsProposal(t *testing.T) {
	server := newCompletionServer(t, "hello from the model\n")
	defer server.Close()
	t.Setenv("CHATFS_MODEL_BASE_URL", server.URL)
	t.Setenv("CHATFS_API_KEY", "test-key")

	home := t.TempDir()
	workspace := t.TempDir()

	stdout, stderr, err := executeCLI(t, home,
		"send", "--root", workspace, "--plain", "/create", "notes.txt", "a", "short", "greeting")
	require.NoError(t, err)

	assert.Contains(t, stdout, "proposed create: notes.txt")
	assert.Contains(t, stdout, "hello from the model")
	assert.Contains(t, stdout, "discarded create: notes.txt")
	assert.Contains(t, stderr, "re-run with --apply")

	_, err = os.Stat(filepath.Join(workspace, "notes.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSendCreateWithApplyWritesFile(t *testing.T) {
	server := newCompletionServer(t, "hello from the model\n")
	defer server.Close()
	t.Setenv("CHATFS_MODEL_BASE_URL", server.URL)
	t.Setenv("CHATFS_API_KEY", "test-key")

	home := t.TempDir()
	workspace := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"send", "--root", workspace, "--plain", "--apply", "/create", "notes.txt", "a", "short", "greeting")
	require.NoError(t, err)

	assert.Contains(t, stdout, "proposed create: notes.txt")
	assert.Contains(t, stdout, "applied create: notes.txt")

	data, err := os.ReadFile(filepath.Join(workspace, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello from the model\n", string(data))
}

func TestSendArchivesSessionForLaterReplay(t *testing.T) {
	server := newCompletionServer(t, "hello from the model\n")
	defer server.Close()
	t.Setenv("CHATFS_MODEL_BASE_URL", server.URL)
	t.Setenv("CHATFS_API_KEY", "test-key")

	home := t.TempDir()
	workspace := t.TempDir()

	_, _, err := executeCLI(t, home,
		"send", "--root", workspace, "--plain", "--apply", "/create", "notes.txt", "a", "greeting")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "turns")

	sessionID := strings.SplitN(strings.TrimSpace(stdout), "\t", 2)[0]
	require.NotEmpty(t, sessionID)

	stdout, _, err = executeCLI(t, home, "sessions", "show", sessionID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "/create notes.txt a greeting")
	assert.Contains(t, stdout, "[user]")
	assert.Contains(t, stdout, "created notes.txt")
}

func TestSendSurfacesModelRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"choices":[{"message":{"content":"","refusal":"cannot write that"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()
	t.Setenv("CHATFS_MODEL_BASE_URL", server.URL)
	t.Setenv("CHATFS_API_KEY", "test-key")

	home := t.TempDir()
	workspace := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"send", "--root", workspace, "--plain", "/create", "notes.txt", "something")
	require.NoError(t, err)

	assert.Contains(t, stdout, "error: model service declined the request: cannot write that")
	_, err = os.Stat(filepath.Join(workspace, "notes.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSendShowsWaitingSpinnerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = fmt.Fprint(w, `{"choices":[{"message":{"content":"slow reply"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()
	t.Setenv("CHATFS_MODEL_BASE_URL", server.URL)
	t.Setenv("CHATFS_API_KEY", "test-key")

	home := t.TempDir()
	workspace := t.TempDir()

	_, stderr, err := executeCLI(t, home, "send", "--root", workspace, "what is in this directory?")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Waiting for the model")
}

func TestChatCommandIsRegistered(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "chat", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "interactive chat session")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newCompletionServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = fmt.Fprintf(w, `{"choices":[{"message":{"content":%q},"finish_reason":"stop"}]}`, reply)
	}))
}
