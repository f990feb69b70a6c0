package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/drstein77/shopbot/internal/cart"
	"github.com/drstein77/shopbot/internal/catalog"
	"github.com/drstein77/shopbot/internal/config"
	"github.com/drstein77/shopbot/internal/controllers"
	"github.com/drstein77/shopbot/internal/dbkeeper"
	"github.com/drstein77/shopbot/internal/dialogue"
	"github.com/drstein77/shopbot/internal/intent"
	"github.com/drstein77/shopbot/internal/logger"
	"github.com/drstein77/shopbot/internal/metrics"
	"github.com/drstein77/shopbot/internal/middleware"
	"github.com/drstein77/shopbot/internal/resolver"
	"github.com/drstein77/shopbot/internal/storage"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 5 * time.Second

type Server struct {
	ctx    context.Context
	cancel context.CancelFunc
	Log    *logger.Logger
	option *config.Options
	keeper *dbkeeper.DBKeeper

	ShutdownTimeout time.Duration
}

// NewServer parses the options and builds the logger. The interactive
// console logs to stderr in a human-readable form. Cancelling ctx stops Serve.
func NewServer(ctx context.Context) *Server {
	server := new(Server)
	server.ctx, server.cancel = context.WithCancel(ctx)
	server.ShutdownTimeout = defaultShutdownTimeout

	// create and initialize a new option instance
	server.option = config.NewOptions()
	server.option.ParseFlags()

	newLogger := logger.NewLogger
	if server.option.Mode() == config.ModeConsole {
		newLogger = logger.NewConsoleLogger
	}

	nLogger, err := newLogger(server.option.LogLevel())
	if err != nil {
		log.Fatalln(err)
	}
	server.Log = nLogger

	return server
}

// Serve wires the bot and runs it in the configured mode until the context
// is cancelled or the console ends. Cancelling the context shuts the HTTP
// server down gracefully; Serve returns once it has stopped.
func (server *Server) Serve() {
	defer server.Log.Sync()

	cat, err := server.loadCatalog()
	defer server.keeper.Close()
	if err != nil {
		server.Log.Error("failed to load catalog", zap.Error(err))
		return
	}
	server.Log.Info("catalog loaded", zap.Int("products", cat.Len()))

	if server.ctx.Err() != nil {
		server.Log.Info("stopped before start")
		return
	}

	m := metrics.New()
	ctrl, engine := newDialogue(cat, server.Log, m)

	if server.option.Mode() == config.ModeConsole {
		userID := server.option.UserID()
		if userID == "" {
			userID = uuid.NewString()
		}
		server.Log.Info("starting console", zap.String("user_id", userID))

		if err := NewConsole(os.Stdin, os.Stdout, userID, ctrl, server.Log).Run(server.ctx); err != nil {
			server.Log.Error("console stopped", zap.Error(err))
		}
		return
	}

	var keeper controllers.Keeper
	if server.keeper != nil {
		keeper = server.keeper
	}

	basecontr := controllers.NewBaseController(server.ctx, ctrl, engine, cat, keeper, server.Log)

	// create router and mount routes
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(server.Log))
	r.Mount("/", basecontr.Route())
	r.Handle("/metrics", m.Handler())

	// configure and start the server
	srv := startServer(r, server.option.RunAddr())

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-server.ctx.Done()
		server.shutdown(srv)
	}()

	server.Log.Info("server started", zap.String("address", server.option.RunAddr()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		server.Log.Error("server stopped", zap.Error(err))
		server.cancel()
	}
	<-stopped
}

// shutdown stops srv, waiting up to ShutdownTimeout for in-flight requests.
func (server *Server) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Error("server shutdown failed", zap.Error(err))
		return
	}
	server.Log.Info("server stopped gracefully")
}

// loadCatalog picks the catalog source: the database when configured and
// reachable, then the catalog file, then the built-in products.
func (server *Server) loadCatalog() (*catalog.Catalog, error) {
	if server.option.DataBaseDSN() != "" {
		server.keeper = dbkeeper.NewDBKeeper(server.ctx, server.option.DataBaseDSN, server.Log)
		if server.keeper != nil {
			products, err := server.keeper.LoadProducts(server.ctx)
			if err == nil {
				return catalog.New(products)
			}
			server.Log.Error("falling back from database catalog", zap.Error(err))
		}
	}

	if path := server.option.CatalogFile(); path != "" {
		products, err := catalog.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog file %s: %w", path, err)
		}
		return catalog.New(products)
	}

	return catalog.Default(), nil
}

// newDialogue assembles the conversational core over one shared session store.
func newDialogue(cat *catalog.Catalog, log *logger.Logger, m *metrics.Metrics) (*dialogue.Controller, *cart.Engine) {
	res := resolver.New(cat)
	store := storage.NewMemoryStorage(log, m)
	engine := cart.NewEngine(store, res, log, m)
	return dialogue.NewController(engine, res, intent.NewClassifier(cat.Names()), cat, log, m), engine
}

func startServer(router chi.Router, address string) *http.Server {
	return &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
