// Package server exposes the report pipeline over HTTP. Requests name
// local files; each report runs synchronously within its request.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/wgs-report/internal/pipeline"
	"github.com/inodb/wgs-report/internal/table"
	"github.com/inodb/wgs-report/internal/validate"
	"github.com/inodb/wgs-report/internal/workbook"
)

// Server is the HTTP front end.
type Server struct {
	router   *gin.Engine
	defaults pipeline.Options
	version  string
	logger   *zap.Logger
}

// New creates a server. defaults fill options a request leaves unset.
func New(defaults pipeline.Options, version string) *Server {
	s := &Server{
		router:   gin.New(),
		defaults: defaults,
		version:  version,
		logger:   zap.NewNop(),
	}
	s.router.Use(gin.Recovery(), s.requestID())
	s.setupRoutes()
	return s
}

// SetLogger sets the logger.
func (s *Server) SetLogger(l *zap.Logger) {
	s.logger = l
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.health)
	v1 := s.router.Group("/v1")
	{
		v1.POST("/reports", s.createReport)
		v1.POST("/checks", s.check)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

const requestIDKey = "run_id"

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String(requestIDKey, id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

// ReportRequest is the body of POST /v1/reports.
type ReportRequest struct {
	Inputs  pipeline.Inputs   `json:"inputs" binding:"required"`
	Options *pipeline.Options `json:"options"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Sheet  string `json:"sheet,omitempty"`
	Column string `json:"column,omitempty"`
}

func (s *Server) createReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}

	opts := s.defaults
	if req.Options != nil {
		dir, err := confine(s.defaults.OutDir, req.Options.OutDir, req.Options.Output)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "bad_request"})
			return
		}
		opts.OutDir = dir
		if req.Options.Output != "" {
			opts.Output = req.Options.Output
		}
		if len(req.Options.Sheets) > 0 {
			opts.Sheets = req.Options.Sheets
		}
		opts.TSV = opts.TSV || req.Options.TSV
	}

	logger := s.logger.With(zap.String(requestIDKey, c.GetString(requestIDKey)))
	rep, err := pipeline.Run(c.Request.Context(), req.Inputs, opts, logger)
	if err != nil {
		logger.Error("report failed", zap.Error(err))
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusCreated, rep)
}

// confine resolves a requested output directory against root, the
// configured out_dir, and fails if the directory or the output name inside
// it would land outside root. A relative dir is taken relative to root.
func confine(root, dir, name string) (string, error) {
	base, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve out_dir: %w", err)
	}
	target := base
	if dir != "" {
		target = dir
		if !filepath.IsAbs(target) {
			target = filepath.Join(base, target)
		}
	}
	for _, p := range []string{target, filepath.Join(target, name)} {
		rel, err := filepath.Rel(base, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("output %q is outside %s", filepath.Join(dir, name), base)
		}
	}
	return filepath.Clean(target), nil
}

// CheckRequest is the body of POST /v1/checks.
type CheckRequest struct {
	Path   string         `json:"path" binding:"required"`
	Sheets []string       `json:"sheets"`
	Rows   map[string]int `json:"rows"`
}

func (s *Server) check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	sheets := req.Sheets
	if len(sheets) == 0 {
		sheets = []string{workbook.SheetSNV, workbook.SheetSV}
	}
	exp := pipeline.Expectations(sheets, -1, -1)
	for i := range exp.Sheets {
		if n, ok := req.Rows[exp.Sheets[i].Name]; ok {
			exp.Sheets[i].Rows = n
		}
	}

	if err := validate.Workbook(req.Path, exp); err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "sheets": exp.Names()})
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		mi *table.MalformedInputError
		ve *validate.ValidationError
	)
	switch {
	case errors.As(err, &mi):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(), Kind: "malformed_input",
			File: mi.File, Line: mi.Line, Sheet: mi.Sheet, Column: mi.Column,
		}
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(), Kind: "validation", Sheet: ve.Sheet, Column: ve.Column,
		}
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: "not_found"}
	case errors.Is(err, context.Canceled):
		return 499, ErrorResponse{Error: err.Error(), Kind: "cancelled"}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: "internal"}
}
