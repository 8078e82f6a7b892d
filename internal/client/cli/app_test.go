package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/config"
	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/auth"
	sc "github.com/dmitrijs2005/recipebook/internal/server/config"
	"github.com/dmitrijs2005/recipebook/internal/server/httpapi"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	ss "github.com/dmitrijs2005/recipebook/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()

	cfg := &sc.Config{}
	cfg.LoadDefaults()

	rm := repomanager.NewInMemoryRepositoryManager()
	tokens := auth.NewTokenManager([]byte(cfg.SecretKey), cfg.Issuer, cfg.TokenValidityDuration)
	sessions := ss.NewSessionService(nil, rm, tokens, logging.Nop{})
	users := ss.NewUserService(nil, rm, sessions, auth.NewPasswordHasher(cfg.PasswordScheme), logging.Nop{})
	recipes := ss.NewRecipeService(nil, rm, cfg, logging.Nop{})

	srv := httpapi.NewServer("", t.TempDir(), logging.Nop{}, users, sessions, recipes)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func newTestApp(t *testing.T, serverURL, dbPath string) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{ServerURL: serverURL, DatabasePath: dbPath, RequestTimeout: 5 * time.Second}
	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	var out bytes.Buffer
	app.out = &out
	return app, &out
}

// feed replaces the app's input with the given lines.
func feed(app *App, lines ...string) {
	app.reader = rdr(strings.Join(lines, "\n") + "\n")
}

func TestApp_EndToEnd(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	ctx := context.Background()
	url := startServer(t)
	dbPath := filepath.Join(t.TempDir(), "laptop.db")

	laptop, out := newTestApp(t, url, dbPath)

	feed(laptop, "cook@example.com", "pw")
	require.NoError(t, laptop.Register(ctx))
	assert.Equal(t, "(cook@example.com)", laptop.status(ctx))

	require.NoError(t, laptop.Whoami(ctx))
	assert.Contains(t, out.String(), "cook@example.com (id ")

	require.NoError(t, laptop.List(ctx, "", false))
	assert.Contains(t, out.String(), "No recipes found")

	feed(laptop, "Gazpacho", "Cold soup", "", "tomatoes", "cucumber", "", "120")
	require.NoError(t, laptop.Add(ctx))
	assert.Contains(t, out.String(), "Created recipe #1")

	out.Reset()
	require.NoError(t, laptop.List(ctx, "gazp", false))
	assert.Contains(t, out.String(), "Gazpacho")

	out.Reset()
	require.NoError(t, laptop.Show(ctx, "1"))
	assert.Contains(t, out.String(), "#1 Gazpacho")
	assert.Contains(t, out.String(), "tomatoes\ncucumber")
	assert.Contains(t, out.String(), "Calories: 120")

	assert.Error(t, laptop.Show(ctx, "abc"))

	// the session survives a restart
	require.NoError(t, laptop.Close())
	laptop, _ = newTestApp(t, url, dbPath)
	assert.Equal(t, "(cook@example.com)", laptop.status(ctx))
	require.NoError(t, laptop.Whoami(ctx))

	// a login on another device supersedes the laptop's token
	phone, _ := newTestApp(t, url, filepath.Join(t.TempDir(), "phone.db"))
	feed(phone, "cook@example.com", "pw")
	require.NoError(t, phone.Login(ctx))

	err := laptop.Whoami(ctx)
	require.Error(t, err)
	assert.Contains(t, describe(err), "no longer valid")
	assert.Empty(t, laptop.status(ctx))

	require.NoError(t, phone.Delete(ctx, "1"))
	assert.Error(t, phone.Delete(ctx, "1"))

	require.NoError(t, phone.Logout(ctx))
	err = phone.Whoami(ctx)
	assert.Contains(t, describe(err), "Not logged in")
}

func TestApp_WrongPassword(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	ctx := context.Background()
	url := startServer(t)

	app, _ := newTestApp(t, url, filepath.Join(t.TempDir(), "c.db"))
	feed(app, "cook@example.com", "pw")
	require.NoError(t, app.Register(ctx))

	other, _ := newTestApp(t, url, filepath.Join(t.TempDir(), "d.db"))
	feed(other, "cook@example.com", "nope")
	err := other.Login(ctx)
	assert.Contains(t, describe(err), "Invalid email or password")

	// the failed attempt did not disturb the existing session
	require.NoError(t, app.Whoami(ctx))
}

func TestApp_RunREPL(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	printed := capturePrints(t)
	url := startServer(t)

	app, out := newTestApp(t, url, filepath.Join(t.TempDir(), "c.db"))
	feed(app, "register", "cook@example.com", "pw", "whoami", "exit")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Registered and logged in as cook@example.com")
	assert.Contains(t, strings.Join(*printed, ""), "Bye!")
}

func TestNewApp_CreatesDatabaseDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "c.db")
	app, _ := newTestApp(t, "http://localhost:1", dbPath)
	assert.Empty(t, app.status(context.Background()))
}

func TestNewApp_BadDatabasePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cfg := &config.Config{
		ServerURL:      "http://localhost:1",
		DatabasePath:   filepath.Join(blocker, "c.db"),
		RequestTimeout: time.Second,
	}
	_, err := NewApp(context.Background(), cfg, logging.Nop{})
	assert.Error(t, err)
}

func TestApp_ImageNeedsStorage(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	ctx := context.Background()
	app, _ := newTestApp(t, startServer(t), filepath.Join(t.TempDir(), "c.db"))

	feed(app, "cook@example.com", "pw")
	require.NoError(t, app.Register(ctx))
	feed(app, "Pie", "", "", "")
	require.NoError(t, app.Add(ctx))

	png := filepath.Join(t.TempDir(), "pie.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

	err := app.Image(ctx, "1", png)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnavailable)

	assert.Error(t, app.Image(ctx, "x", png))
}
