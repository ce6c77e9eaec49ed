package web

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"golang.org/x/crypto/bcrypt"

	"github.com/umputun/nsnt/app/web/enums"
)

const (
	authCookieName = "nsnt-auth"
	authUser       = "nsnt" // basic auth user name
	sessionTTL     = 7 * 24 * 60 * 60
)

// loginRateLimiter limits login attempts per client ip
func loginRateLimiter() func(http.Handler) http.Handler {
	lmt := tollbooth.NewLimiter(5, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessage("too many login attempts, try again later")
	return tollbooth.HTTPMiddleware(lmt)
}

// loginData is the login page template data
type loginData struct {
	Error   string
	Theme   enums.Theme
	BaseURL string
}

// handleLoginForm displays the login form
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, http.StatusOK, loginData{Theme: s.getTheme(r), BaseURL: s.baseURL})
}

// handleLogin checks the submitted password and sets the session cookie
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	switch password := r.FormValue("password"); {
	case password == "":
		s.renderLoginError(w, r, "Password is required")
		return
	case !s.checkPassword(password):
		log.Printf("[WARN] failed login attempt from %s", r.RemoteAddr)
		s.renderLoginError(w, r, "Invalid password")
		return
	}

	http.SetCookie(w, s.authCookie(r, s.generateAuthToken(), sessionTTL))
	http.Redirect(w, r, s.url("/"), http.StatusSeeOther)
}

// handleLogout drops the session cookie and sends the browser back to the login page
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.authCookie(r, "", -1))
	w.Header().Set("HX-Refresh", "true") // full reload for htmx-initiated logout
	http.Redirect(w, r, s.url("/login"), http.StatusSeeOther)
}

// authCookie makes the session cookie, maxAge < 0 deletes it
func (s *Server) authCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     s.cookiePath(),
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	}
}

func (s *Server) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
}

// renderLoginError renders the login form with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg string) {
	s.renderLogin(w, http.StatusUnauthorized, loginData{Error: errorMsg, Theme: s.getTheme(r), BaseURL: s.baseURL})
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, data loginData) {
	tmpl, ok := s.templates["login"]
	if !ok {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("[ERROR] failed to render login template: %v", err)
	}
}

// authMiddleware lets through requests with a valid session cookie or basic auth credentials.
// Browsers are redirected to the login page, clients sending wrong basic auth and non-html clients get 401.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || strings.HasPrefix(r.URL.Path, "/static/") || s.authenticated(r) {
			next.ServeHTTP(w, r)
			return
		}

		_, _, hasBasic := r.BasicAuth()
		if accept := r.Header.Get("Accept"); !hasBasic && (accept == "" || strings.Contains(accept, "text/html")) {
			http.Redirect(w, r, s.url("/login"), http.StatusSeeOther)
			return
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="nsnt"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// authenticated reports whether the request carries the session cookie or valid basic auth
func (s *Server) authenticated(r *http.Request) bool {
	if cookie, err := r.Cookie(authCookieName); err == nil && s.validateAuthToken(cookie.Value) {
		return true
	}
	user, password, ok := r.BasicAuth()
	return ok && user == authUser && s.checkPassword(password)
}

// generateAuthToken derives the cookie token from the password hash
func (s *Server) generateAuthToken() string {
	h := sha256.Sum256([]byte(s.passwordHash + "nsnt-auth-token"))
	return hex.EncodeToString(h[:])
}

// validateAuthToken checks if the auth token is valid
func (s *Server) validateAuthToken(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.generateAuthToken())) == 1
}
