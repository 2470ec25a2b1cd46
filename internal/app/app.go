package app

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
	"github.com/klabast/wb-services/beschikbaarheid/internal/view"
)

// App bundles everything the HTTP handlers need.
type App struct {
	Config    Config
	Logger    *zap.Logger
	Sessions  *SessionStore
	Templates *Templates
	Auth      *Authenticator
	Static    fs.FS

	start    calendar.Cursor
	now      func() time.Time
	validate *validator.Validate
}

// New wires the application. ui holds the templates/ and static/ trees.
// auth may be nil, which disables Basic Auth.
func New(cfg Config, logger *zap.Logger, auth *Authenticator, ui fs.FS) (*App, error) {
	tmpl, err := NewTemplates(ui)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	static, err := fs.Sub(ui, "static")
	if err != nil {
		return nil, fmt.Errorf("loading static files: %w", err)
	}

	if auth == nil {
		auth = &Authenticator{logger: logger}
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Templates: tmpl,
		Auth:      auth,
		Static:    static,
		now:       time.Now,
		validate:  validator.New(),
	}

	a.start, err = startCursor(cfg.InitialMonth, a.now())
	if err != nil {
		return nil, err
	}

	a.Sessions = NewSessionStore(cfg.SessionTTL, a.newWidget, logger)
	return a, nil
}

func (a *App) newWidget() *view.Synchronizer {
	return view.New(a.start, view.WithToday(a.now))
}

// startCursor resolves INITIAL_MONTH; empty means the current month.
func startCursor(month string, now time.Time) (calendar.Cursor, error) {
	if month == "" {
		return calendar.CursorAt(now), nil
	}
	c, err := calendar.ParseCursor(month)
	if err != nil {
		return calendar.Cursor{}, fmt.Errorf("invalid INITIAL_MONTH: %w", err)
	}
	return c, nil
}
