package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
	"github.com/klabast/wb-services/beschikbaarheid/internal/notify"
	"github.com/klabast/wb-services/beschikbaarheid/internal/selection"
	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
	"github.com/klabast/wb-services/beschikbaarheid/internal/view"
)

const maxBodyBytes = 64 << 10

type ctxKey int

const sessionKey ctxKey = iota

// WidgetResponse is the JSON answer to every widget request.
type WidgetResponse struct {
	View         view.View     `json:"view"`
	Notification notify.Notice `json:"notification"`
	Error        string        `json:"error,omitempty"`
}

type formBinder interface {
	fromForm(url.Values)
}

type dateInput struct {
	Date string `json:"date" validate:"required"`
}

func (in *dateInput) fromForm(v url.Values) {
	in.Date = strings.TrimSpace(v.Get("date"))
}

type pairInput struct {
	Date string `json:"date" validate:"required"`
	Slot string `json:"slot" validate:"required"`
}

func (in *pairInput) fromForm(v url.Values) {
	in.Date = strings.TrimSpace(v.Get("date"))
	in.Slot = strings.TrimSpace(v.Get("slot"))
}

type exportInput struct {
	Format   string `validate:"oneof=ics csv json"`
	Reminder int    `validate:"min=0,max=10080"`
}

// withSession attaches the caller's session, starting one when the cookie is
// missing or expired.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if c, err := r.Cookie(SessionCookieName); err == nil {
			sess, _ = a.Sessions.Get(c.Value)
		}
		if sess == nil {
			sess = a.Sessions.Create()
		}

		cookie := &http.Cookie{
			Name:     SessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(a.Config.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   a.Config.IsProduction(),
			SameSite: http.SameSiteLaxMode,
		}
		// Cross-site API callers only get the cookie back with SameSite=None
		if a.Config.CredentialedOrigins() {
			cookie.SameSite = http.SameSiteNoneMode
			cookie.Secure = true
		}
		http.SetCookie(w, cookie)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *Session {
	sess, _ := r.Context().Value(sessionKey).(*Session)
	return sess
}

// Index renders the widget.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	var data PageData
	sessionFrom(r).Do(func(s *view.Synchronizer, n *notify.Notifier) {
		data = PageData{View: s.View(), Notification: n.Current()}
	})

	if err := a.Templates.Render(w, http.StatusOK, PageIndex, data); err != nil {
		a.Logger.Error("rendering index", zap.Error(err))
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
	}
}

// APIView returns the current View as JSON.
func (a *App) APIView(w http.ResponseWriter, r *http.Request) {
	var resp WidgetResponse
	sessionFrom(r).Do(func(s *view.Synchronizer, n *notify.Notifier) {
		resp = WidgetResponse{View: s.View(), Notification: n.Current()}
	})
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *App) PrevMonth(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(s *view.Synchronizer) (view.View, error) {
		return s.PrevMonth(), nil
	})
}

func (a *App) NextMonth(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(s *view.Synchronizer) (view.View, error) {
		return s.NextMonth(), nil
	})
}

// SelectDate makes the posted date the active one.
func (a *App) SelectDate(w http.ResponseWriter, r *http.Request) {
	var in dateInput
	if !a.bind(w, r, &in) {
		return
	}
	a.apply(w, r, func(s *view.Synchronizer) (view.View, error) {
		return s.SelectDate(in.Date)
	})
}

// ToggleSlot flips the slot in the URL for the active date.
func (a *App) ToggleSlot(w http.ResponseWriter, r *http.Request) {
	sl, err := slot.Parse(chi.URLParam(r, "slot"))
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, ErrInvalidSlot)
		return
	}
	a.apply(w, r, func(s *view.Synchronizer) (view.View, error) {
		return s.ToggleSlot(sl)
	})
}

// RemoveSelection deletes one (date, slot) pair from the list.
func (a *App) RemoveSelection(w http.ResponseWriter, r *http.Request) {
	var in pairInput
	if !a.bind(w, r, &in) {
		return
	}
	sl, err := slot.Parse(in.Slot)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, ErrInvalidSlot)
		return
	}
	a.apply(w, r, func(s *view.Synchronizer) (view.View, error) {
		return s.Remove(in.Date, sl), nil
	})
}

// Export downloads the selection.
// Query params: format (ics, csv, json; default ics), reminder (minutes, ics only)
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	in := exportInput{Format: r.URL.Query().Get("format")}
	if in.Format == "" {
		in.Format = "ics"
	}
	if reminder := r.URL.Query().Get("reminder"); reminder != "" {
		n, err := strconv.Atoi(reminder)
		if err != nil {
			http.Error(w, ErrInvalidRequest, http.StatusBadRequest)
			return
		}
		in.Reminder = n
	}
	if err := a.validate.Struct(in); err != nil {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	var entries []selection.Entry
	sessionFrom(r).Do(func(s *view.Synchronizer, _ *notify.Notifier) {
		entries = s.Entries()
	})

	if !a.export(w, in.Format, in.Reminder, entries) {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// Healthz reports liveness.
func (a *App) Healthz(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.Sessions.Len(),
	})
}

// NotFound renders the 404 page, or a JSON error for API clients.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": http.StatusText(http.StatusNotFound)})
		return
	}
	if err := a.Templates.Render(w, http.StatusNotFound, Page404, nil); err != nil {
		a.Logger.Error("rendering 404", zap.Error(err))
		http.NotFound(w, r)
	}
}

// bind decodes a JSON body or a form post into in and validates it. On
// failure the response has been written.
func (a *App) bind(w http.ResponseWriter, r *http.Request, in formBinder) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(in); err != nil {
			a.fail(w, r, http.StatusBadRequest, ErrInvalidRequest)
			return false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			a.fail(w, r, http.StatusBadRequest, ErrInvalidRequest)
			return false
		}
		in.fromForm(r.PostForm)
	}

	if err := a.validate.Struct(in); err != nil {
		a.fail(w, r, http.StatusBadRequest, ErrInvalidRequest)
		return false
	}
	return true
}

// apply runs one event against the session and answers with the new View.
// A slot event without an active date raises the notification.
func (a *App) apply(w http.ResponseWriter, r *http.Request, event func(*view.Synchronizer) (view.View, error)) {
	var resp WidgetResponse
	var err error
	sessionFrom(r).Do(func(s *view.Synchronizer, n *notify.Notifier) {
		resp.View, err = event(s)
		if errors.Is(err, view.ErrNoActiveDate) {
			n.Show(view.MessageSelectDateFirst)
		}
		resp.Notification = n.Current()
	})

	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, view.ErrNoActiveDate):
		status = http.StatusConflict
		resp.Error = view.MessageSelectDateFirst
	case errors.Is(err, calendar.ErrInvalidKey):
		status = http.StatusBadRequest
		resp.Error = ErrInvalidDateKey
	case errors.Is(err, slot.ErrUnknown):
		status = http.StatusBadRequest
		resp.Error = ErrInvalidSlot
	default:
		a.Logger.Error("applying event", zap.String("path", r.URL.Path), zap.Error(err))
		status = http.StatusInternalServerError
		resp.Error = ErrInternalServer
	}

	if wantsJSON(r) {
		a.writeJSON(w, status, resp)
		return
	}
	if status >= http.StatusBadRequest && status != http.StatusConflict {
		http.Error(w, resp.Error, status)
		return
	}
	redirectHome(w, r)
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		a.writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, status)
}
