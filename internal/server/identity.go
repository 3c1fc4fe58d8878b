package server

import (
	"context"
	"net/http"
)

type contextKey int

const userInfoKey contextKey = 0

// UserInfo is the identity of the caller. Login is the client email that
// keys their document.
type UserInfo struct {
	ID          int    `json:"id,omitempty"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// DevIdentity returns middleware that serves every request as login, for
// local development without Tailscale.
func DevIdentity(login string) func(http.Handler) http.Handler {
	if login == "" {
		login = "local"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), userInfoKey, UserInfo{ID: 1, Login: login, DisplayName: "Local Dev User"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TailscaleIdentity returns middleware that resolves the caller with a
// WhoIs lookup and records them as a user.
func TailscaleIdentity(whois WhoIser, db Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := whois.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who.UserProfile == nil || who.UserProfile.LoginName == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet identity"})
				return
			}
			info := UserInfo{
				Login:       who.UserProfile.LoginName,
				DisplayName: who.UserProfile.DisplayName,
			}
			id, err := db.GetOrCreateUser(r.Context(), info.Login, info.DisplayName)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			info.ID = id
			ctx := context.WithValue(r.Context(), userInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identity picks Tailscale or dev identity per request, so SetTailscale
// may be called after routes are built.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(s.devLogin)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.db)(next).ServeHTTP(w, r)
	})
}

// userInfoFromContext returns the caller set by identity middleware, or the
// local dev user.
func userInfoFromContext(r *http.Request) UserInfo {
	return UserFromContext(r.Context())
}

// UserFromContext returns the caller stored by identity middleware, or the
// local dev user.
func UserFromContext(ctx context.Context) UserInfo {
	if info, ok := ctx.Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return UserInfo{ID: 1, Login: "local", DisplayName: "Local Dev User"}
}
