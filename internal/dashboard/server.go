package dashboard

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/config"
	"github.com/KaramelBytes/medintel/internal/session"
)

const ctxSession = "medintel.session"

// BackendFactory builds an AI backend by name.
type BackendFactory func(name string, cfg ai.BackendConfig) (ai.Backend, error)

// Options configures a Server. Store defaults to an in-memory store and
// NewBackend to ai.NewBackend.
type Options struct {
	Config     *config.Global
	Logger     *zap.Logger
	Store      session.Store
	NewBackend BackendFactory
}

// Server is the media intelligence dashboard.
type Server struct {
	cfg        *config.Global
	log        *zap.Logger
	store      session.Store
	newBackend BackendFactory
	aiSem      *semaphore.Weighted
	locks      sessionLocks
	page       *template.Template
	e          *echo.Echo
}

// sessionLocks serializes read-modify-write cycles on one session within
// this process.
type sessionLocks [64]sync.Mutex

func (l *sessionLocks) of(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &l[h.Sum32()%uint32(len(l))]
}

// New wires middleware and routes.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("dashboard: config is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore(opts.Config.SessionTTL(), 5*time.Minute)
	}
	if opts.NewBackend == nil {
		opts.NewBackend = ai.NewBackend
	}
	maxAI := opts.Config.AIMaxConcurrent
	if maxAI < 1 {
		maxAI = 1
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:        opts.Config,
		log:        opts.Logger,
		store:      opts.Store,
		newBackend: opts.NewBackend,
		aiSem:      semaphore.NewWeighted(int64(maxAI)),
		page:       page,
		e:          echo.New(),
	}
	s.setup()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) setup() {
	e := s.e
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = HandleError(s.log, c, err)
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("http.request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	e.GET("/health", s.healthCheck)

	withSess := s.withSession
	e.GET("/", s.index, withSess)

	v1 := e.Group("/v1", withSess)
	v1.GET("/sample", s.sample)
	v1.POST("/data/manual", s.manualData)
	v1.POST("/data/upload", s.uploadData, middleware.BodyLimit(fmt.Sprintf("%dM", s.cfg.MaxUploadMB)))
	v1.GET("/data", s.dataStatus)
	v1.GET("/charts", s.chartSpecs)
	v1.GET("/charts/:id", s.chartImage)
	v1.GET("/models", s.models)
	v1.POST("/ai/:backend", s.analyze)
	v1.GET("/report", s.report)
}

// withSession loads the caller's session, creating and persisting a new
// one when the cookie is missing, malformed or expired.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var sess *session.Session
		if ck, err := c.Cookie(session.CookieName); err == nil && session.ValidID(ck.Value) {
			got, err := s.store.Get(ctx, ck.Value)
			switch {
			case err == nil:
				sess = got
			case !errors.Is(err, session.ErrNotFound):
				return fmt.Errorf("load session: %w", err)
			}
		}
		if sess == nil {
			sess = session.New()
			if err := s.store.Save(ctx, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			c.SetCookie(&http.Cookie{
				Name:     session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(s.cfg.SessionTTL().Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(ctxSession, sess)
		return next(c)
	}
}

func sessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(ctxSession).(*session.Session)
	return sess
}

// update reloads the caller's session from the store, applies fn and saves
// the result. Nothing is saved when fn fails. Store calls outlive a
// cancelled request so that a timed-out analysis can still be recorded.
func (s *Server) update(c echo.Context, fn func(*session.Session) error) (*session.Session, error) {
	id := sessionFrom(c).ID
	mu := s.locks.of(id)
	mu.Lock()
	defer mu.Unlock()

	ctx := context.WithoutCancel(c.Request().Context())
	sess, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		sess = &session.Session{ID: id}
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err := fn(sess); err != nil {
		return sess, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.Set(ctxSession, sess)
	return sess, nil
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
