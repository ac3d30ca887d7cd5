package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"memo-service/internal/api/rest"
	"memo-service/internal/config"
	"memo-service/internal/repository"
	"memo-service/internal/repository/memory"
	"memo-service/internal/repository/postgres"
	"memo-service/internal/repository/sqlite"
	svc "memo-service/internal/service"
	memosService "memo-service/internal/service/memos"
)

// Server представляет HTTP сервер приложения со слоем состояния заметок
type Server struct {
	// HTTP компоненты
	HTTPServer *http.Server
	Addr       string

	// Слой состояния (единственный экземпляр на время жизни приложения)
	MemoService svc.MemoService

	// Конфигурация
	Config *config.Config

	// Репозиторий, владеющий соединением с хранилищем
	repoCloser interface{ Close() error }
}

// NewServer создает и инициализирует новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	httpPort := cfg.Server.Port
	if httpPort == 0 {
		httpPort = 8080
		log.Printf("⚠️  Warning: server port is 0, using default 8080")
	}

	addr := "0.0.0.0:" + strconv.Itoa(httpPort)
	log.Printf("📋 Config loaded: HTTP port=%d, store driver=%s", httpPort, cfg.Store.Driver)

	return &Server{
		Addr:   addr,
		Config: cfg,
	}, nil
}

// newRepository создает репозиторий согласно конфигурации хранилища
func newRepository(ctx context.Context, cfg *config.ConfigStore) (repository.MemoRepository, error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		return postgres.NewRepository(ctx, cfg.DSN)
	case config.StoreDriverSQLite:
		return sqlite.NewRepository(cfg.Path)
	case config.StoreDriverMemory, "":
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

// Initialize инициализирует компоненты сервера (Repository → Service → Handler)
func (s *Server) Initialize(ctx context.Context) error {
	// Инициализация компонентов (DI): Repository → Service → Handler
	memoRepo, err := newRepository(ctx, s.Config.Store)
	if err != nil {
		return fmt.Errorf("initialize repository: %w", err)
	}
	if closer, ok := memoRepo.(interface{ Close() error }); ok {
		s.repoCloser = closer
	}
	log.Printf("Initialized %s repository", s.Config.Store.Driver)

	// Слой состояния выполняет первоначальную загрузку коллекции при создании
	s.MemoService = memosService.NewMemoService(ctx, memoRepo)
	log.Println("Initialized memo state service (initial refresh done)")

	memoHandler := rest.NewHandler(s.MemoService)
	log.Println("Initialized HTTP handler")

	mux := rest.NewRouter(memoHandler)
	handler := rest.Setup(mux, s.Config.HTTP)

	s.HTTPServer = &http.Server{
		Addr:              s.Addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.Config.Server.IdleTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.Config.Server.ReadHeaderTimeout) * time.Second,
	}

	return nil
}

// Start запускает HTTP сервер в горутине.
// Возвращает канал ошибок для отслеживания ошибок сервера
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP server listening on %s", s.Addr)
		log.Printf("CORS enabled for origins: %s", s.Config.HTTP.CORSAllowedOrigins)
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера и закрывает соединение
// с хранилищем
func (s *Server) Shutdown() error {
	log.Println("Starting graceful shutdown...")

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.HTTPServer.Shutdown(ctx)
	if err != nil {
		log.Printf("Graceful shutdown timeout, forcing close...")
		if closeErr := s.HTTPServer.Close(); closeErr != nil {
			log.Printf("Forced close error: %v", closeErr)
		}
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	if s.repoCloser != nil {
		if closeErr := s.repoCloser.Close(); closeErr != nil {
			log.Printf("Error closing store connection: %v", closeErr)
		}
	}

	return err
}
