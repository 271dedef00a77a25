package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const CookieName = "sf_session"

// DefaultLockTTL bounds how long Exclusive holds a session when the handler
// never returns.
const DefaultLockTTL = time.Minute

type sessionKey struct{}

type controlKey struct{}

// control is what the middleware knows about the session of one request.
type control struct {
	sessions  *Sessions
	session   *entity.Session
	ephemeral bool
	// fresh sessions were minted by this request, so the client never saw
	// their id before.
	fresh bool
}

// SessionFrom returns the session attached by Sessions.Middleware, or nil.
func SessionFrom(ctx context.Context) *entity.Session {
	s, _ := ctx.Value(sessionKey{}).(*entity.Session)
	return s
}

// WithSession stores s in ctx and forwards its token to backend calls.
func WithSession(ctx context.Context, s *entity.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, s)
	return interceptors.WithAuthToken(ctx, s.Token)
}

// Sessions loads the browser session named by the session cookie before a
// request is served and saves it afterwards.
type Sessions struct {
	store   ports.SessionStore
	ttl     time.Duration
	lockTTL time.Duration
	secure  bool
	now     func() time.Time
}

func NewSessions(store ports.SessionStore, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{store: store, ttl: ttl, lockTTL: DefaultLockTTL, secure: secure, now: time.Now}
}

// Middleware resolves the caller's session and saves it once the handler
// returns. A bearer token yields a throwaway session that is never stored.
// An entry that no longer decodes is dropped and replaced by a new session.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token := bearerToken(r); token != "" {
			sess := entity.NewSession(s.now())
			sess.Login(entity.AuthResult{Token: token, Role: RoleFromToken(token)}, "")
			ctx = context.WithValue(ctx, controlKey{}, &control{sessions: s, session: sess, ephemeral: true})
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
			return
		}

		var sess *entity.Session
		if c, err := r.Cookie(CookieName); err == nil {
			sess, err = s.store.Get(ctx, c.Value)
			switch {
			case errors.Is(err, ports.ErrCorruptSession):
				slog.WarnContext(ctx, "dropping unreadable session", "error", err)
				if err := s.store.Delete(ctx, c.Value); err != nil {
					slog.ErrorContext(ctx, "session delete failed", "error", err)
				}
				sess = nil
			case err != nil:
				slog.ErrorContext(ctx, "session lookup failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "session_unavailable", "Session store unavailable")
				return
			}
		}
		ctl := &control{sessions: s}
		if sess == nil {
			sess = entity.NewSession(s.now())
			ctl.fresh = true
			http.SetCookie(w, s.cookie(sess.ID))
		}
		ctl.session = sess

		ctx = context.WithValue(ctx, controlKey{}, ctl)
		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))

		if err := s.store.Save(context.WithoutCancel(ctx), sess); err != nil {
			slog.ErrorContext(ctx, "session save failed", "session_id", sess.ID, "error", err)
		}
	})
}

// Exclusive lets one request at a time through for a session. A request
// arriving while the lock is held gets 409. Once the lock is taken the
// session is reloaded, and it is saved before the lock is released, so the
// next holder sees the outcome of the previous one.
func (s *Sessions) Exclusive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctl, _ := ctx.Value(controlKey{}).(*control)
		if ctl == nil || ctl.ephemeral {
			next.ServeHTTP(w, r)
			return
		}
		sess := ctl.session

		ok, err := s.store.Lock(ctx, sess.ID, s.lockTTL)
		if err != nil {
			slog.ErrorContext(ctx, "session lock failed", "session_id", sess.ID, "error", err)
			writeError(w, http.StatusServiceUnavailable, "session_unavailable", "Session store unavailable")
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "processing", "Your order is already being placed")
			return
		}
		defer func() {
			if err := s.store.Unlock(context.WithoutCancel(ctx), sess.ID); err != nil {
				slog.ErrorContext(ctx, "session unlock failed", "session_id", sess.ID, "error", err)
			}
		}()

		current, err := s.store.Get(ctx, sess.ID)
		if err != nil && !errors.Is(err, ports.ErrCorruptSession) {
			slog.ErrorContext(ctx, "session reload failed", "session_id", sess.ID, "error", err)
			writeError(w, http.StatusServiceUnavailable, "session_unavailable", "Session store unavailable")
			return
		}
		if current != nil {
			*sess = *current
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))

		if err := s.store.Save(context.WithoutCancel(ctx), sess); err != nil {
			slog.ErrorContext(ctx, "session save failed", "session_id", sess.ID, "error", err)
		}
	})
}

// RotateSession moves the request's session to a new id and cookie and
// deletes the old entry. Handlers call it whenever the session's privileges
// change, so an id handed out before login is worthless after it. Bearer
// sessions and sessions minted by this request are left alone.
func RotateSession(w http.ResponseWriter, r *http.Request) error {
	ctl, _ := r.Context().Value(controlKey{}).(*control)
	if ctl == nil || ctl.ephemeral || ctl.fresh {
		return nil
	}
	old := ctl.session.ID
	if err := ctl.sessions.store.Delete(r.Context(), old); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	ctl.session.RenewID()
	http.SetCookie(w, ctl.sessions.cookie(ctl.session.ID))
	return nil
}

func (s *Sessions) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RoleFromToken reads the "role" claim without checking the signature; the
// backend verifies the token on every call it receives.
func RoleFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
