package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// TokenValidator проверяет access-токен и возвращает id пользователя
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// RequestLogger пишет строку лога на каждый запрос
func RequestLogger(logger log.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request completed")
				return
			}
			entry.Info("request completed")
		})
	}
}

func bearerToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate кладет id пользователя в контекст, если токен валиден.
// Запрос без токена или с невалидным токеном идет дальше анонимным.
func Authenticate(validator TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r, cookieName); token != "" {
				if userID, err := validator.ValidateAccessToken(token); err == nil {
					r = r.WithContext(auth.WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserIDFromContext(r.Context()) == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

var (
	protectedPrefixes = []string{"/dashboard"}
	authPrefixes      = []string{"/login", "/signup", "/auth-error"}
)

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RouteGuard: защищенные страницы без сессии уводят на /login,
// страницы входа с сессией уводят на /dashboard
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loggedIn := auth.UserIDFromContext(r.Context()) != ""
		path := r.URL.Path

		switch {
		case !loggedIn && hasPrefix(path, protectedPrefixes):
			http.Redirect(w, r, "/login?callbackUrl="+url.QueryEscape(path), http.StatusSeeOther)
			return
		case loggedIn && hasPrefix(path, authPrefixes):
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ipLimiter - токен-бакет на каждый IP клиента.
// Ведро заполняется полностью за limiterIdle, поэтому лимитер, простоявший
// дольше, равен новому и удаляется из карты.
type ipLimiter struct {
	mu        sync.Mutex
	perIP     map[string]*ipEntry
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

type ipEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const limiterIdle = time.Minute

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		perIP: make(map[string]*ipEntry),
		limit: rate.Every(limiterIdle / time.Duration(perMinute)),
		burst: perMinute,
		now:   time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastPrune) >= limiterIdle {
		l.prune(now)
	}
	e, ok := l.perIP[ip]
	if !ok {
		e = &ipEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.perIP[ip] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.lim.AllowN(now, 1)
}

// prune вызывается под l.mu
func (l *ipLimiter) prune(now time.Time) {
	for ip, e := range l.perIP {
		if now.Sub(e.lastSeen) >= limiterIdle {
			delete(l.perIP, ip)
		}
	}
	l.lastPrune = now
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.perIP)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit ограничивает число запросов с одного IP в минуту; perMinute <= 0 отключает лимит
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newIPLimiter(perMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				respondError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
