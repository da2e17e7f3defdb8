package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/database"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/session"
)

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	routes     sync.Once
	migrations fs.FS

	defaults *config.Board
	timeouts *config.Session
	ws       *config.WebSocket
	sessions *session.Store

	// nil when running without a database
	db      *pgxpool.Pool
	cookies *config.Cookies
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	return &App{
		logger:     logger,
		router:     http.NewServeMux(),
		migrations: migrations,
		sessions:   session.NewStore(logger),
	}
}

// configure reads the environment and connects to the database if one is
// configured.
func (a *App) configure(ctx context.Context) error {
	var err error

	if a.defaults, err = config.NewBoard(); err != nil {
		return err
	}
	if a.timeouts, err = config.NewSession(); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}

	db, _, err := database.ConnectAndMigrate(ctx, a.migrations)
	if errors.Is(err, config.ErrNoDatabase) {
		a.logger.Warn("no database configured, finished games will not be recorded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	if a.cookies, err = config.NewCookies(jwt); err != nil {
		return err
	}
	return nil
}

func (a *App) Handler() http.Handler {
	a.routes.Do(a.loadRoutes)

	mws := []middleware.Middleware{}
	if a.cookies != nil {
		mws = append(mws, middleware.Auth(a.logger, a.cookies))
	}
	mws = append(mws, middleware.Cors(), middleware.Logging(a.logger))
	return middleware.Wrap(a.router, mws...)
}

func (a *App) Start(ctx context.Context) error {
	if err := a.configure(ctx); err != nil {
		return err
	}
	if a.db != nil {
		defer a.db.Close()
	}

	addr := config.Port()
	server := &http.Server{
		Addr:         addr,
		Handler:      a.Handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		return a.sessions.RunJanitor(gCtx, a.timeouts.SweepInterval, a.timeouts.IdleTimeout)
	})

	return g.Wait()
}
