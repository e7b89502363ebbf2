// Package httpapi exposes the core services over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
	"github.com/recapd/recapd/internal/core/ports/driving"
	"github.com/recapd/recapd/internal/logger"
)

// maxUploadBytes caps multipart form memory while parsing uploads.
const maxUploadBytes = 512 << 20

// minQueryLength is the shortest accepted search query.
const minQueryLength = 2

// Server is the HTTP adapter. It translates requests into core service
// calls and core errors into status codes; it holds no business logic.
type Server struct {
	engine *gin.Engine
	intake driving.IntakeService
	runner driving.PipelineRunner
	search driving.SearchService
	store  driven.RecordStore
	log    *logrus.Entry
}

// New builds the server and registers all routes.
func New(
	intake driving.IntakeService,
	runner driving.PipelineRunner,
	search driving.SearchService,
	store driven.RecordStore,
	log *logrus.Entry,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), corsMiddleware())

	s := &Server{
		engine: engine,
		intake: intake,
		runner: runner,
		search: search,
		store:  store,
		log:    log,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler. The serve command owns
// the listener so it can drain connections on shutdown.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/uploads", s.handleUpload)
		v1.GET("/jobs/:id", s.handleJob)
		v1.GET("/meetings/:id", s.handleMeeting)
		v1.GET("/search", s.handleSearch)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "recapd"})
}

// handleUpload accepts a multipart recording, creates its job, and
// dispatches the pipeline in the background. The response carries the
// job ID so the client can poll.
func (s *Server) handleUpload(c *gin.Context) {
	log := logger.WithRequest(s.log, c.Request)

	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		errorResponse(c, http.StatusBadRequest, "malformed multipart form")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "file field is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		log.WithError(err).Error("opening uploaded file")
		errorResponse(c, http.StatusInternalServerError, "reading upload")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	job, err := s.intake.Submit(c.Request.Context(), file, header.Filename, contentType)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedMedia) {
			errorResponse(c, http.StatusBadRequest, "unsupported media type: "+contentType)
			return
		}
		log.WithError(err).Error("storing upload")
		errorResponse(c, http.StatusInternalServerError, "storing upload")
		return
	}

	log.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"filename": job.Filename,
	}).Info("upload accepted")

	// The request context dies with the response; the pipeline gets
	// its own.
	go s.runner.Run(context.Background(), job.ID)

	c.JSON(http.StatusAccepted, jobResponse(job))
}

func (s *Server) handleJob(c *gin.Context) {
	job, err := s.store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, "job not found")
			return
		}
		logger.WithRequest(s.log, c.Request).WithError(err).Error("loading job")
		errorResponse(c, http.StatusInternalServerError, "loading job")
		return
	}

	c.JSON(http.StatusOK, jobResponse(job))
}

func (s *Server) handleMeeting(c *gin.Context) {
	record, err := s.store.GetMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, "meeting not found")
			return
		}
		logger.WithRequest(s.log, c.Request).WithError(err).Error("loading meeting")
		errorResponse(c, http.StatusInternalServerError, "loading meeting")
		return
	}

	c.JSON(http.StatusOK, meetingResponse(record))
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < minQueryLength {
		errorResponse(c, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	results, err := s.search.Search(c.Request.Context(), query, limit)
	if err != nil {
		logger.WithRequest(s.log, c.Request).WithError(err).Error("search failed")
		errorResponse(c, http.StatusInternalServerError, "search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}

// corsMiddleware allows browser clients on other origins to call the
// API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
