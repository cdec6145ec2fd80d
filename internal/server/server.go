package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"shieldbackend/internal/config"
	"shieldbackend/internal/handler"
	"shieldbackend/internal/middleware"
)

// Handlers groups the HTTP handlers wired by main.
type Handlers struct {
	Scan     *handler.ScanHandler
	Feedback *handler.FeedbackHandler
	Report   *handler.ReportHandler
	Stats    *handler.StatsHandler
}

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *logrus.Logger
}

func NewServer(cfg *config.Config, handlers Handlers, zapLogger *zap.Logger, log *logrus.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		cfg:    cfg,
		log:    log,
	}

	s.setupRoutes(handlers, zapLogger)
	return s
}

func (s *Server) setupRoutes(h Handlers, zapLogger *zap.Logger) {
	secret := []byte(s.cfg.Auth.JWTSecret)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := s.router.Group("/api/v1")

	// Scans accept anonymous callers; history is only kept for
	// authenticated ones.
	scans := api.Group("/scan")
	scans.Use(middleware.OptionalAuthMiddleware(secret, zapLogger))
	{
		scans.POST("/text", h.Scan.ScanText)
		scans.POST("/url", h.Scan.ScanURL)
		scans.POST("/voice", h.Scan.ScanVoice)
	}

	authRequired := api.Group("")
	authRequired.Use(middleware.AuthMiddleware(secret, zapLogger))
	{
		authRequired.GET("/history", h.Scan.History)
		authRequired.DELETE("/history/:id", h.Scan.DeleteHistory)

		authRequired.POST("/feedback", h.Feedback.Submit)
		authRequired.POST("/feedback/:id/review", h.Feedback.Review)
		authRequired.GET("/feedback/export", h.Feedback.Export)
		authRequired.GET("/feedback/stats", h.Feedback.Statistics)

		authRequired.POST("/reports", h.Report.Create)
		authRequired.GET("/reports", h.Report.List)
		authRequired.GET("/reports/:id", h.Report.Get)
		authRequired.PATCH("/reports/:id", h.Report.Update)
		authRequired.DELETE("/reports/:id", h.Report.Delete)

		authRequired.GET("/stats", h.Stats.Dashboard)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
