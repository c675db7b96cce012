package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Nzyazin/payouts/internal/core/handler"
	"github.com/Nzyazin/payouts/internal/core/logger"
	middlWre "github.com/Nzyazin/payouts/internal/core/middleware"
	"github.com/Nzyazin/payouts/internal/core/queue"
	"github.com/Nzyazin/payouts/internal/core/repository/postgres"
	"github.com/Nzyazin/payouts/internal/core/usecase"
	"github.com/Nzyazin/payouts/internal/core/validation"
	"github.com/Nzyazin/payouts/internal/core/worker"
	"github.com/Nzyazin/payouts/pkg/config"
	"github.com/Nzyazin/payouts/pkg/postgresdb"
	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

type Server struct {
	router        *mux.Router
	log           logger.Logger
	httpServer    *http.Server
	payoutHandler *handler.PayoutHandler
	db            *postgresdb.Database
	queue         *queue.AsynqQueue
	asynqServer   *asynq.Server
	asynqMux      *asynq.ServeMux
	addr          string
}

func NewServer(log logger.Logger) (*Server, error) {

	cfgDB, err := config.LoadConfigDB()
	if err != nil {
		return nil, err
	}

	cfgServer, err := config.LoadConfigServer()
	if err != nil {
		return nil, err
	}

	cfgQueue, err := config.LoadConfigQueue()
	if err != nil {
		return nil, err
	}

	cfgPayouts, err := config.LoadConfigPayouts()
	if err != nil {
		return nil, err
	}

	db, err := postgresdb.NewPostgresDB(*cfgDB, log)
	if err != nil {
		return nil, err
	}

	engine := validation.NewEngine(
		cfgPayouts.CardNumberLength,
		cfgPayouts.AccountNumberLength,
		cfgPayouts.MinAmount,
	)

	payoutRepository := postgres.NewPostgresPayoutRepo(db.DB, log)
	payoutQueue := queue.NewAsynqQueue(cfgQueue.RedisAddr, log)
	payoutUsecase := usecase.NewPayoutUsecase(payoutRepository, payoutQueue, engine, log)
	payoutHandler := handler.NewPayoutHandler(payoutUsecase, log)

	payoutWorker := worker.NewPayoutWorker(payoutRepository, engine, cfgPayouts.ProcessingDelay, log)

	asynqServer := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfgQueue.RedisAddr},
		asynq.Config{Concurrency: cfgQueue.Concurrency},
	)
	asynqMux := asynq.NewServeMux()
	payoutWorker.Register(asynqMux)

	server := &Server{
		log:           log,
		router:        mux.NewRouter(),
		payoutHandler: payoutHandler,
		db:            db,
		queue:         payoutQueue,
		asynqServer:   asynqServer,
		asynqMux:      asynqMux,
		addr:          cfgServer.Addr,
	}

	server.router.Use(loggingMiddleware(server.log))

	mw := middleware.New(middleware.Config{
		Recorder: prometheus.NewRecorder(prometheus.Config{}),
	})

	server.router.Use(func(next http.Handler) http.Handler {
		return std.Handler("", mw, next)
	})

	server.RegisterRoutes()

	return server, nil
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) RegisterRoutes() {
	s.router.Use(
		middlWre.WithErrorHandler(s.log),
		middlWre.Recovery(s.log),
	)
	s.payoutHandler.RegisterRoutes(s.router)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
}

// Run поднимает пул воркеров очереди и HTTP-сервер на настроенном
// адресе. Блокируется до остановки HTTP-сервера.
func (s *Server) Run() error {
	if err := s.asynqServer.Start(s.asynqMux); err != nil {
		return fmt.Errorf("start queue workers: %w", err)
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadTimeout:       9 * time.Second,
		WriteTimeout:      12 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	s.httpServer = srv

	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	var shutdownErr error

	go func() {
		if s.httpServer != nil {
			err := s.httpServer.Shutdown(ctx)
			if err != nil {
				s.log.Error("failed to shutdown HTTP server", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
			}
		}

		if s.asynqServer != nil {
			// Останавливает приём задач и отменяет контексты обработчиков;
			// заявки в имитации обработки остаются в processing.
			s.asynqServer.Shutdown()
		}

		if s.queue != nil {
			if err := s.queue.Close(); err != nil {
				s.log.Error("failed to close queue client", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("queue client shutdown error: %w", err)
			}
		}

		if s.db != nil {
			err := s.db.Close()
			if err != nil {
				s.log.Error("failed to close database connection", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("database shutdown error: %w", err)
			}
		}

		close(done)
	}()

	select {
	case <-done:
		return shutdownErr
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Info("HTTP request",
				logger.StringField("method", r.Method),
				logger.StringField("path", r.URL.Path),
				logger.StringField("remote_addr", r.RemoteAddr),
				logger.StringField("user_agent", r.UserAgent()),
			)
			next.ServeHTTP(w, r)
		})
	}
}
