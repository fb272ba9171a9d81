package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/dateutil"
	"github.com/alnah/go-charsheet/internal/store"
)

// CallerHeader carries the id of the user asking for a sheet.
const CallerHeader = "X-Caller-ID"

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// server serves generated sheets over HTTP.
type server struct {
	composer *charsheet.Composer
	backend  renderBackend
	print    config.PrintConfig
	now      func() time.Time
	logger   *zap.Logger
}

// runServe executes the serve command. It returns when ctx is cancelled
// and in-flight requests have finished.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f := &serveFlags{}
	positional, err := parseFlags(buildServeFlagSet(f), args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positional)
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	f.render.apply(cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.dataDir != "" {
		cfg.Data.Dir = f.dataDir
	}

	logger := newLogger(env.Stderr, f.common)
	defer func() { _ = logger.Sync() }()

	backend := newBackend(cfg, env, logger)
	defer func() { _ = backend.Close() }()

	comp, err := newComposer(cfg, store.NewDir(cfg.Data.Dir), backend, logger)
	if err != nil {
		return err
	}

	s := &server{composer: comp, backend: backend, print: cfg.Print, now: env.Now, logger: logger}
	if !f.common.verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.router(cfg.Server),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("data", cfg.Data.Dir))

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// router builds the HTTP handler.
func (s *server) router(sc config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if len(sc.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  sc.AllowOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost},
			AllowHeaders:  []string{"Content-Type", CallerHeader},
			ExposeHeaders: []string{"Content-Disposition"},
			MaxAge:        time.Hour,
		}))
	}

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	if sc.RateLimit > 0 {
		v1.Use(rateLimit(rate.NewLimiter(rate.Limit(sc.RateLimit), max(sc.RateBurst, 1))))
	}
	v1.POST("/characters/:id/pdf", s.generate)
	return r
}

// health reports whether the browser is up. A backend that has not
// rendered yet is healthy; it starts on the first request.
func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "browser": s.backend.Connected()})
}

// generate handles POST /v1/characters/:id/pdf.
//
// Query parameters: sections (comma separated or repeated), readOnly,
// strict and date. Unset parameters take the configured print defaults.
func (s *server) generate(c *gin.Context) {
	caller := strings.TrimSpace(c.GetHeader(CallerHeader))
	if caller == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + CallerHeader + " header"})
		return
	}

	id := c.Param("id")
	if err := store.ValidateID(id); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pcfg, err := s.printConfig(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pdf, err := s.composer.Generate(c.Request.Context(), id, caller, pcfg)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("generate failed", zap.String("character", id), zap.Error(err))
		}
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// printConfig merges query parameters over the configured defaults.
func (s *server) printConfig(c *gin.Context) (charsheet.PrintConfig, error) {
	tags := s.print.Sections
	if q := c.QueryArray("sections"); len(q) > 0 {
		tags = nil
		for _, v := range q {
			tags = append(tags, strings.Split(v, ",")...)
		}
	}
	sections, err := charsheet.ParseSections(tags)
	if err != nil {
		return charsheet.PrintConfig{}, err
	}

	readOnly, err := queryBool(c, "readOnly", s.print.ReadOnly)
	if err != nil {
		return charsheet.PrintConfig{}, err
	}
	strict, err := queryBool(c, "strict", s.print.StrictSections)
	if err != nil {
		return charsheet.PrintConfig{}, err
	}

	date := s.print.Date
	if v, ok := c.GetQuery("date"); ok {
		date = v
	}
	stamp, err := dateutil.ResolveDate(date, s.now())
	if err != nil {
		return charsheet.PrintConfig{}, err
	}

	return charsheet.PrintConfig{
		Sections:       sections,
		ReadOnly:       readOnly,
		StrictSections: strict,
		Stamp:          stamp,
	}, nil
}

func queryBool(c *gin.Context, name string, def bool) (bool, error) {
	v, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %q is not a boolean", name, v)
	}
	return b, nil
}

// statusFor maps a Generate error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, charsheet.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, charsheet.ErrCharacterNotFound):
		return http.StatusNotFound
	case errors.Is(err, charsheet.ErrInvalidSection), errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, charsheet.ErrRenderBackend), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// rateLimit rejects requests beyond the limiter's rate with 429.
func rateLimit(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": http.StatusText(http.StatusTooManyRequests)})
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("caller", c.GetHeader(CallerHeader)),
		)
	}
}
