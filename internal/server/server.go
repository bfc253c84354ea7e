package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/facturx-engine/internal/engine"
	"github.com/rezonia/facturx-engine/internal/model"
)

// Config holds server configuration
type Config struct {
	Address           string
	VeraPDFPath       string
	ValidationTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	Debug             bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	engine *engine.Engine
	log    zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config, log zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())

	engineOpts := []engine.Option{engine.WithLogger(log)}
	if config.VeraPDFPath != "" {
		engineOpts = append(engineOpts, engine.WithVeraPDFPath(config.VeraPDFPath))
	}
	if config.ValidationTimeout > 0 {
		engineOpts = append(engineOpts, engine.WithValidationTimeout(config.ValidationTimeout))
	}

	s := &Server{
		config: config,
		router: router,
		engine: engine.New(engineOpts...),
		log:    log,
	}

	s.setupRoutes()
	return s
}

// requestID tags every request with an id for log correlation
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Generation endpoints
		v1.POST("/invoices", s.handleGenerate)
		v1.POST("/invoices/xml", s.handleGenerateXML)

		// Artifact endpoints
		v1.POST("/validate", s.handleValidate)
		v1.POST("/extract", s.handleExtract)
		v1.POST("/info", s.handleInfo)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("address", s.config.Address).Msg("starting HTTP server")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req model.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	result, err := s.engine.Generate(c.Request.Context(), &req)
	if err != nil {
		s.renderPipelineError(c, err)
		return
	}

	// Raw artifact for callers that only want the PDF
	if c.GetHeader("Accept") == "application/pdf" {
		c.Header("X-Overall-Compliant", strconv.FormatBool(result.Report.OverallCompliant()))
		c.Data(http.StatusOK, "application/pdf", result.PDF)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Invoice: result.Document,
		PDF:     result.PDF,
		XML:     result.XML,
		Report:  result.Report,
	})
}

func (s *Server) handleGenerateXML(c *gin.Context) {
	var req model.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	doc, xmlBytes, err := s.engine.GenerateXML(&req)
	if err != nil {
		s.renderPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, XMLResponse{Invoice: doc, XML: xmlBytes})
}

func (s *Server) handleValidate(c *gin.Context) {
	pdf, ok := s.readPDFBody(c)
	if !ok {
		return
	}

	report := s.engine.Validate(c.Request.Context(), pdf, nil)
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleExtract(c *gin.Context) {
	pdf, ok := s.readPDFBody(c)
	if !ok {
		return
	}

	xmlBytes, err := s.engine.Extract(pdf)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{XML: xmlBytes})
}

func (s *Server) handleInfo(c *gin.Context) {
	pdf, ok := s.readPDFBody(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.engine.Inspect(pdf))
}

func (s *Server) readPDFBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

// renderPipelineError maps pipeline errors onto HTTP statuses: field-level
// validation errors are 422 with structured fields, everything else 500
func (s *Server) renderPipelineError(c *gin.Context, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "invoice validation failed",
			Fields: verr.Fields,
		})
		return
	}

	var serr *model.SerializationError
	if errors.As(err, &serr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: serr.Error()})
		return
	}

	s.log.Error().Err(err).Msg("pipeline failure")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
