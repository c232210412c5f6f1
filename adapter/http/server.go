package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/business/usecase"
	"github.com/forest33/arena/pkg/logger"
)

type Server struct {
	cfg           *Config
	log           *logger.Logger
	engineUseCase EngineUseCase
	websocket     http.Handler
	router        *gin.Engine
	srv           *http.Server
}

type Config struct {
	Host          string
	Port          int
	WebsocketPath string
	EnableAPI     bool
}

type EngineUseCase interface {
	GetState() *usecase.EngineState
	GetSession(id string) (*usecase.SessionView, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func New(cfg *Config, log *logger.Logger, engineUseCase EngineUseCase, websocket http.Handler) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:           cfg,
		log:           log.Layer("http"),
		engineUseCase: engineUseCase,
		websocket:     websocket,
		router:        gin.New(),
	}

	return s, s.init()
}

func (s *Server) init() error {
	s.router.Use(gin.Recovery())

	if s.websocket != nil {
		s.router.GET(s.cfg.WebsocketPath, gin.WrapH(s.websocket))
	}

	s.router.GET("/healthz", s.handlerHealth)

	if s.cfg.EnableAPI {
		api := s.router.Group("/api/v1")
		api.GET("/state", s.handlerState)
		api.GET("/matches/:id", s.handlerMatch)
	}

	s.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() {
	go func() {
		s.log.Info().
			Str("host", s.cfg.Host).
			Int("port", s.cfg.Port).
			Str("websocket", s.cfg.WebsocketPath).
			Bool("api", s.cfg.EnableAPI).
			Msg("starting HTTP server")

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Fatalf("failed to start HTTP server: %v", err)
		}
	}()
}

// Shutdown stops accepting requests, hijacked websocket connections are
// closed by their transport
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handlerHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, &healthResponse{Status: "ok"})
}

func (s *Server) handlerState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.engineUseCase.GetState())
}

func (s *Server) handlerMatch(ctx *gin.Context) {
	view, err := s.engineUseCase.GetSession(ctx.Param("id"))
	if errors.Is(err, entity.ErrSessionNotExists) {
		ctx.JSON(http.StatusNotFound, &errorResponse{Error: err.Error()})
		return
	} else if err != nil {
		s.log.Error().Err(err).Str("match_id", ctx.Param("id")).Msg("failed to get match")
		ctx.JSON(http.StatusInternalServerError, &errorResponse{Error: entity.ErrInternalError.Error()})
		return
	}

	ctx.JSON(http.StatusOK, view)
}
