package shell

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName    = "leapdash"
	sessionIDKey   = "sid"
	sessionLangKey = "lang"
)

// sessionID returns the id stored in the request's session cookie.
func (h *Handlers) sessionID(r *http.Request) (string, bool) {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	id, ok := sess.Values[sessionIDKey].(string)
	return id, ok && id != ""
}

// browserSession is what the session cookie carries.
type browserSession struct {
	id   string
	lang string
}

// ensureSession returns the session values, issuing a new id when the
// request has none. A non-empty lang replaces the stored language choice.
// Must run before anything is written to w.
func (h *Handlers) ensureSession(w http.ResponseWriter, r *http.Request, lang string) (browserSession, error) {
	// a cookie that fails to decode still yields a usable new session
	sess, err := h.sessions.Get(r, sessionName)
	if sess == nil {
		return browserSession{}, fmt.Errorf("failed to load session: %w", err)
	}

	dirty := false
	id, _ := sess.Values[sessionIDKey].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values[sessionIDKey] = id
		dirty = true
	}
	stored, _ := sess.Values[sessionLangKey].(string)
	if lang != "" && lang != stored {
		stored = lang
		sess.Values[sessionLangKey] = lang
		dirty = true
	}
	if !dirty {
		return browserSession{id: id, lang: stored}, nil
	}

	if sess.Options == nil {
		sess.Options = &sessions.Options{Path: "/"}
	}
	sess.Options.HttpOnly = true
	sess.Options.SameSite = http.SameSiteLaxMode
	if err := sess.Save(r, w); err != nil {
		return browserSession{}, fmt.Errorf("failed to save session: %w", err)
	}
	return browserSession{id: id, lang: stored}, nil
}
