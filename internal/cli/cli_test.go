package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/livingtrust/livingtrust/internal/config"
	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answers = "Smith Family Trust\n\nJohn Smith\n\nJane Smith (Daughter)\n\n\n\ny\n"

func testConfig(t *testing.T, kind string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Kind = kind
	cfg.Store.SessionDir = filepath.Join(t.TempDir(), "sessions")
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "lt.db")
	return cfg
}

func inputFile(t *testing.T, content string) *os.File {
	t.Helper()
	p := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	f, err := os.Open(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestNewBackend_SQLiteWithEncryption(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StoreSQLite)
	cfg.Store.EncryptionKey = "correct horse battery staple"

	b, err := NewBackend(cfg, logging.NewNop())
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	st, err := b.Engine.Start(ctx, "")
	require.NoError(t, err)
	_, err = b.Engine.Update(ctx, st.SessionID, domain.FieldTrustName, "Sealed Trust")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(cfg.Store.SessionDir, st.SessionID+".json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Sealed Trust", "draft is encrypted at rest")

	loaded, err := b.Engine.Load(ctx, st.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Sealed Trust", loaded.Draft.TrustName)
}

func TestNewBackend_UnknownStore(t *testing.T) {
	cfg := testConfig(t, "mongo")
	_, err := NewBackend(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestRunWizard_Plain(t *testing.T) {
	cfg := testConfig(t, config.StoreSQLite)
	var out bytes.Buffer

	err := RunWizard(cfg, logging.NewNop(), WizardOptions{
		Plain: true,
		In:    inputFile(t, answers),
		Out:   &out,
	})
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), `Your Living Trust "Smith Family Trust" has been created!`)
	assert.Contains(t, out.String(), "with status draft")

	b, err := NewBackend(cfg, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()
	trusts, err := b.Trusts.List(context.Background(), domain.TrustFilter{})
	require.NoError(t, err)
	require.Len(t, trusts, 1)
	assert.Equal(t, "John Smith", trusts[0].GrantorName)

	ids, err := b.Sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "finished sessions are discarded")
}

func TestRunWizard_InterruptedKeepsSession(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	var out bytes.Buffer

	err := RunWizard(cfg, logging.NewNop(), WizardOptions{
		Plain: true,
		In:    inputFile(t, "Half Done Trust\n"),
		Out:   &out,
	})
	require.NoError(t, err, "interruption is a clean exit")
	assert.Contains(t, out.String(), "Progress saved. Resume with --session")

	entries, err := os.ReadDir(cfg.Store.SessionDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lt", "credentials.yaml")

	_, err := LoadCredentials(path)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, SaveCredentials(path, &Credentials{API: "http://localhost:3001", Email: "a@b.co", Token: "tok"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	c, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", c.Token)
	assert.Equal(t, "http://localhost:3001", c.API)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, HandleExecutionError(runner.ErrInterrupted))
	assert.NoError(t, HandleExecutionError(context.Canceled))
	assert.EqualError(t, HandleExecutionError(assert.AnError), assert.AnError.Error())
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("loud", false)
	assert.Error(t, err)

	l, err := NewLogger("info", false)
	require.NoError(t, err)
	assert.False(t, l.Enabled(context.Background(), -4), "debug is off")

	l, err = NewLogger("info", true)
	require.NoError(t, err)
	assert.True(t, l.Enabled(context.Background(), -4))
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "Session %s active.", "abc")
	assert.Equal(t, ">>> Session abc active.\n", buf.String())
	assert.True(t, strings.HasPrefix(buf.String(), ">>>"))
}
