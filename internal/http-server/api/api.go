package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"qrlink/internal/config"
	"qrlink/internal/http-server/handlers/errors"
	"qrlink/internal/http-server/handlers/health"
	"qrlink/internal/http-server/handlers/qr"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"qrlink/internal/http-server/middleware/requestlog"
	"qrlink/internal/http-server/middleware/timeout"
	"qrlink/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	qr.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port),
		Handler:      NewRouter(conf, log, handler),
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Duration(conf.Listen.RequestTimeout)*time.Second + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server
}

func NewRouter(conf *config.Config, log *slog.Logger, handler Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(timeout.Timeout(conf.Listen.RequestTimeout))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestlog.New(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: conf.Origins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/", health.Root(conf.ProjectName))
	router.Get("/health", health.Health(conf.Env))

	router.Route("/qr", func(q chi.Router) {
		q.Post("/create", qr.Create(log, handler))
		q.Post("/bulk", qr.Bulk(log, handler))
		q.Get("/list", qr.List(log, handler))
		q.Put("/update/{code}", qr.Update(log, handler))
		q.Delete("/delete/{code}", qr.Delete(log, handler))
		q.Get("/scan/{code}", qr.Scan(log, handler))
		q.Get("/stats/global", qr.GlobalStats(log, handler))
		q.Get("/stats/{code}", qr.Stats(log, handler))
	})

	return router
}

// Start blocks serving requests until the server is shut down
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", s.httpServer.Addr))

	return s.httpServer.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("stopping api server")
	return s.httpServer.Shutdown(ctx)
}
