package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/janpfeifer/GoMemory/internal/config"
	"github.com/janpfeifer/GoMemory/internal/frontend"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

// Run starts the server and blocks until the context is canceled.
//
// If started is not nil, the server state is sent to it once the server is
// listening. An empty cfg.Server.Addr listens on a random local port.
func Run(ctx context.Context, cfg *config.Config, started chan<- *ServerState) error {
	// Initialize global client state for server-side prerendering without panic
	frontend.InitState()

	serverState, err := NewServerState(cfg)
	if err != nil {
		return err
	}

	// Register go-app routes so the server knows how to prerender them
	app.Route("/", func() app.Composer { return &frontend.Menu{} })
	app.Route("/game", func() app.Composer { return &frontend.Board{} })

	// The web assets and the compiled webassembly
	// are served natively by the go-app framework
	h := &app.Handler{
		Name:        "GoMemory",
		Description: "A memory card matching game",
		Version:     game.Version,
		Styles: []string{
			"/web/css/pico.min.css", // Load pico.css
			"/web/css/main.css",     // Custom styles if any
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", serverState.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/debug/tables", serverState.HandleTables)
	r.Handle("/metrics", promhttp.HandlerFor(serverState.Metrics.Registry, promhttp.HandlerOpts{}))

	// We want to serve /web for static files
	r.Handle("/web/*", http.StripPrefix("/web/", http.FileServer(http.Dir("web/"))))
	r.Handle("/*", h)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	serverState.Address = listener.Addr().String()

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket handlers outlive Shutdown: they stop with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		klog.Infof("Server started on %s", serverState.Address)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if started != nil {
		started <- serverState
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	klog.Info("Shutting down server...")
	return srv.Shutdown(shutdownCtx)
}
