// Package httpapi is the public HTTP interface of the RecipeBook server:
// account endpoints, the token-gated recipe catalog and static files.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
	"github.com/dmitrijs2005/recipebook/internal/server/services"
	"github.com/gorilla/mux"
)

const defaultMaxBodyBytes = 1 << 20

type Accounts interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type Sessions interface {
	Validate(ctx context.Context, token string) (*models.Principal, error)
}

type Recipes interface {
	List(ctx context.Context, name string, ownerID int64) ([]models.Recipe, error)
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, p *models.Principal, in models.Recipe) (*models.Recipe, error)
	Update(ctx context.Context, p *models.Principal, id int64, u models.RecipeUpdate) (*models.Recipe, error)
	Delete(ctx context.Context, p *models.Principal, id int64) error
	PresignImageUpload(ctx context.Context, p *models.Principal, id int64) (*services.ImageUpload, error)
	ConfirmImageUpload(ctx context.Context, p *models.Principal, id int64, imageURL string) (*models.Recipe, error)
}

type Server struct {
	address         string
	staticDir       string
	accounts        Accounts
	sessions        Sessions
	recipes         Recipes
	logger          logging.Logger
	router          *mux.Router
	maxBodyBytes    int64
	shutdownTimeout time.Duration
}

func NewServer(address, staticDir string, l logging.Logger, a Accounts, s Sessions, r Recipes) *Server {
	srv := &Server{
		address:         address,
		staticDir:       staticDir,
		accounts:        a,
		sessions:        s,
		recipes:         r,
		logger:          l.With("module", "http_server"),
		maxBodyBytes:    defaultMaxBodyBytes,
		shutdownTimeout: 5 * time.Second,
	}
	srv.router = srv.newRouter()
	return srv
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SetShutdownTimeout bounds how long Run waits for in-flight requests.
func (s *Server) SetShutdownTimeout(d time.Duration) {
	s.shutdownTimeout = d
}
