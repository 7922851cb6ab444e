package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/internal/search"
	"github.com/williampepple1/partsearch/pkg/models"
)

const internalError = "Internal server error"

var errNullBody = errors.New("server: request body is null")

// Searcher runs a part search across vendor sites
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// Server exposes the dispatcher over HTTP
type Server struct {
	Config   *config.AppConfig
	Searcher Searcher
}

// NewServer creates a new API server
func NewServer(config *config.AppConfig, searcher Searcher) *Server {
	return &Server{
		Config:   config,
		Searcher: searcher,
	}
}

// SetupRouter builds the gin engine with middleware and routes
func (s *Server) SetupRouter() *gin.Engine {
	setMode(s.Config.Server.Mode)

	r := gin.New()
	r.Use(RequestID(), AccessLog(), gin.CustomRecovery(recoverJSON))

	r.GET("/health", s.Health)
	r.POST("/api/search", s.Search)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Server.Port),
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server: listening", zap.Int("port", s.Config.Server.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// Health handles GET /health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Search handles POST /api/search. Bodies that do not decode to a request
// object, JSON null included, are answered with 500.
func (s *Server) Search(c *gin.Context) {
	req, err := bindSearchRequest(c)
	if err != nil {
		zap.L().Error("server: decode search request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: internalError})
		return
	}

	resp, err := s.Searcher.Search(c.Request.Context(), req)
	if err != nil {
		var ve *search.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: ve.Message})
			return
		}
		zap.L().Error("server: search failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: internalError})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func bindSearchRequest(c *gin.Context) (models.SearchRequest, error) {
	var req models.SearchRequest

	body, err := c.GetRawData()
	if err != nil {
		return req, err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return req, errNullBody
	}
	if err := binding.JSON.BindBody(body, &req); err != nil {
		return req, err
	}
	return req, nil
}

func recoverJSON(c *gin.Context, recovered any) {
	zap.L().Error("server: panic",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("path", c.Request.URL.Path),
		zap.Any("panic", recovered),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: internalError})
}

func setMode(mode string) {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	case "":
	default:
		zap.L().Warn("server: unknown gin mode, keeping current", zap.String("mode", mode))
	}
}
