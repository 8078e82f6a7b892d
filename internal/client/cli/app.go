package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/config"
	"github.com/dmitrijs2005/recipebook/internal/client/services"
	"github.com/dmitrijs2005/recipebook/internal/filex"
	"github.com/dmitrijs2005/recipebook/internal/logging"
)

type App struct {
	config         *config.Config
	db             *sql.DB
	authService    services.AuthService
	recipesService services.RecipeService
	log            logging.Logger
	reader         *bufio.Reader
	out            io.Writer
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init local database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(api, db)

	return &App{
		config:         c,
		db:             db,
		authService:    as,
		recipesService: services.NewRecipeService(api, as),
		log:            l,
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// status is shown in the prompt: the session email, or nothing.
func (a *App) status(ctx context.Context) string {
	if email := a.authService.Email(ctx); email != "" {
		return "(" + email + ")"
	}
	return ""
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "RecipeBook CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)
	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader)
}
