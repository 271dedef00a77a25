package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the per-browser state the storefront keeps server-side.
type Session struct {
	ID        string         `json:"id"`
	Token     string         `json:"token,omitempty"`
	Role      string         `json:"role,omitempty"`
	Email     string         `json:"email,omitempty"`
	Toasts    []Toast        `json:"toasts,omitempty"`
	Checkout  *CheckoutState `json:"checkout,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func NewSession(now time.Time) *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: now}
}

// RenewID gives the session a fresh id and keeps its contents.
func (s *Session) RenewID() {
	s.ID = uuid.NewString()
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

func (s *Session) IsAdmin() bool {
	return s.LoggedIn() && s.Role == RoleAdmin
}

func (s *Session) Login(res AuthResult, email string) {
	s.Token = res.Token
	s.Role = res.Role
	s.Email = email
}

// Logout drops credentials and any in-progress checkout. Pending toasts survive.
func (s *Session) Logout() {
	s.Token = ""
	s.Role = ""
	s.Email = ""
	s.Checkout = nil
}

func (s *Session) AddToast(message string, typ ToastType, now time.Time) Toast {
	if typ == "" {
		typ = ToastInfo
	}
	t := Toast{ID: uuid.NewString(), Message: message, Type: typ, CreatedAt: now}
	s.Toasts = append(s.Toasts, t)
	return t
}

// DrainToasts returns the toasts still visible at now and empties the queue.
func (s *Session) DrainToasts(now time.Time, ttl time.Duration) []Toast {
	out := make([]Toast, 0, len(s.Toasts))
	for _, t := range s.Toasts {
		if !t.Expired(now, ttl) {
			out = append(out, t)
		}
	}
	s.Toasts = nil
	return out
}

func (s *Session) DismissToast(id string) bool {
	for i, t := range s.Toasts {
		if t.ID == id {
			s.Toasts = append(s.Toasts[:i], s.Toasts[i+1:]...)
			return true
		}
	}
	return false
}
