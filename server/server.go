// Package server wires settings, the post store and both HTTP surfaces together
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/blinky-z/Board/handler/renderapi"
	"github.com/blinky-z/Board/handler/restapi"
	"github.com/blinky-z/Board/service/postStore"
	"github.com/blinky-z/Board/settings"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

var (
	logInfo  = log.New(os.Stdout, "[server] INFO: ", log.Ltime)
	logError = log.New(os.Stderr, "[server] ERROR: ", log.Ltime)
)

// NewLoggers - returns info and error loggers of a component. Info goes to stdout, errors to stderr
func NewLoggers(component string) (*log.Logger, *log.Logger) {
	return log.New(os.Stdout, "["+component+"] INFO: ", log.Ltime),
		log.New(os.Stderr, "["+component+"] ERROR: ", log.Ltime)
}

// Server - http server of the board
type Server struct {
	httpServer       *http.Server
	renderAPIHandler *renderapi.Handler
}

// NewServer - creates server with rest api and page rendering routes over the given store
func NewServer(s *settings.Settings, store postStore.Store) (*Server, error) {
	restInfo, restError := NewLoggers("restApi.post")
	postAPIHandler := restapi.NewPostAPIHandler(store, restInfo, restError)

	renderInfo, renderError := NewLoggers("renderApi.render")
	renderAPIHandler, err := renderapi.NewRenderAPIHandler(store, s.SiteTitle, s.SwitchDelay, s.SessionTTL,
		renderInfo, renderError)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Use(logRequests)

	// set rest api handlers
	router.Handle("/api/hc", postAPIHandler.HealthCheckHandler()).Methods("GET")
	router.Handle("/api/posts", postAPIHandler.GetPostsHandler()).Methods("GET")
	router.Handle("/api/posts", postAPIHandler.CreatePostHandler()).Methods("POST")

	// set page rendering handlers
	router.Path("/").Handler(renderAPIHandler.RenderIndexPageHandler()).Methods("GET")
	router.Path("/section").Handler(renderAPIHandler.SwitchSectionHandler()).Methods("POST")
	router.Path("/draft/clear").Handler(renderAPIHandler.ClearDraftHandler()).Methods("POST")
	router.Path("/submit").Handler(renderAPIHandler.SubmitPostHandler()).Methods("POST")

	return &Server{
		// omitting host will run server on all interfaces
		httpServer: &http.Server{
			Addr:              ":" + s.ServerPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		renderAPIHandler: renderAPIHandler,
	}, nil
}

// Handler - returns router of the server
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// logRequests - logs method, url, status and duration of every request
func logRequests(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(handler, w, r)
		logInfo.Printf("%s %s %d %s", r.Method, r.URL, m.Code, m.Duration)
	})
}

// Run - serves until ctx is done, then shuts down gracefully and closes session boards
func (s *Server) Run(ctx context.Context) error {
	defer s.renderAPIHandler.Close()

	serveErr := make(chan error, 1)
	go func() {
		logInfo.Printf("Starting server on %s", s.httpServer.Addr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logInfo.Print("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunServer - opens the store chosen by settings and serves until ctx is done
func RunServer(ctx context.Context, s *settings.Settings) error {
	store, err := OpenStore(ctx, s)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logError.Printf("Error closing store: %s", err)
		}
	}()

	server, err := NewServer(s, store)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}

// OpenStore - opens the post store chosen by settings
func OpenStore(ctx context.Context, s *settings.Settings) (postStore.Store, error) {
	logInfo.Printf("Opening %s post store, table %s", s.Store.Driver, s.Store.Table)
	store, err := postStore.Open(ctx, s.Store.StoreConfig())
	if err != nil {
		logError.Printf("Error opening post store: %s", err)
		return nil, err
	}
	logInfo.Print("Post store successfully opened")
	return store, nil
}
