// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/observability"
)

// API wires the authentication core to HTTP routes. All dependencies are
// injected at construction; nothing here reads process-global state.
type API struct {
	engine     *auth.Engine
	resets     *auth.ResetService
	authn      auth.Authenticator
	cookieName string
	sessionTTL time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
	backend    string
}

// Options configures optional API behavior.
type Options struct {
	// SessionTTL bounds the Max-Age of the session cookie; <= 0 issues a
	// session cookie with no Max-Age.
	SessionTTL time.Duration

	// Metrics receives request and login counters when non-nil.
	Metrics *observability.Metrics

	// SessionBackend labels the sessions-issued counter.
	SessionBackend string
}

// New creates the API.
func New(engine *auth.Engine, resets *auth.ResetService, authn auth.Authenticator, cookieName string, logger *slog.Logger, opts Options) (*API, error) {
	if engine == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("engine is required")
	}
	if resets == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("reset service is required")
	}
	if authn == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("authenticator is required")
	}
	if cookieName == "" {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("cookie name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		engine:     engine,
		resets:     resets,
		authn:      authn,
		cookieName: cookieName,
		sessionTTL: opts.SessionTTL,
		logger:     logger,
		metrics:    opts.Metrics,
		backend:    opts.SessionBackend,
	}, nil
}

// Routes returns the full handler tree with authentication middleware
// applied.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", a.handleStatus)
	mux.HandleFunc("POST /api/v1/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", a.handleLogout)
	mux.HandleFunc("POST /api/v1/auth/reset/request", a.handleResetRequest)
	mux.HandleFunc("POST /api/v1/auth/reset/redeem", a.handleResetRedeem)
	mux.HandleFunc("GET /api/v1/me", a.handleMe)

	return RequireAuth(a.authn)(mux)
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.count(r, http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := a.engine.Register(r.Context(), email, password)
	if err != nil {
		status := http.StatusBadRequest
		if errorCode(err) == "AUTH_USER_EXISTS" {
			status = http.StatusConflict
		}
		a.count(r, status)
		writeError(w, status, "registration failed")
		return
	}

	a.logger.Info("user registered", "user_id", user.ID.String())
	a.count(r, http.StatusCreated)
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, token, err := a.engine.Login(r.Context(), email, password)
	if err != nil {
		if errorCode(err) == "AUTH_INVALID_CREDENTIALS" {
			a.countLogin("failure")
			a.count(r, http.StatusUnauthorized)
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		a.logger.Error("login failed", "error", err)
		a.countLogin("error")
		a.count(r, http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, a.sessionCookie(token))
	a.countLogin("success")
	if a.metrics != nil {
		a.metrics.SessionsIssuedTotal.WithLabelValues(a.backend).Inc()
	}
	a.count(r, http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(a.cookieName); err == nil {
		token = c.Value
	}

	destroyed := a.engine.Logout(r.Context(), token)
	http.SetCookie(w, a.clearedCookie())
	a.count(r, http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]bool{"destroyed": destroyed})
}

// handleResetRequest answers identically for known and unknown emails so
// the endpoint cannot be used to enumerate accounts. The token is logged
// for out-of-band delivery; it never appears in the response.
func (a *API) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	token, err := a.resets.Issue(r.Context(), email)
	if err != nil {
		if errorCode(err) != "RESET_UNKNOWN_IDENTITY" {
			a.logger.Error("reset token issue failed", "error", err)
		}
	} else {
		a.logger.Info("reset token issued", "email", email, "token", token)
		if a.metrics != nil {
			a.metrics.ResetTokensIssuedTotal.Inc()
		}
	}

	a.count(r, http.StatusAccepted)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (a *API) handleResetRedeem(w http.ResponseWriter, r *http.Request) {
	token := r.PostFormValue("token")
	password := r.PostFormValue("password")

	if err := a.resets.Redeem(r.Context(), token, password); err != nil {
		status := http.StatusBadRequest
		if errorCode(err) == "RESET_REDEEM_FAILED" {
			a.logger.Error("reset redemption failed", "error", err)
			status = http.StatusInternalServerError
		}
		a.count(r, status)
		writeError(w, status, "password reset failed")
		return
	}

	a.count(r, http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		// Reachable only if the route is ever excluded from the guard.
		a.count(r, http.StatusUnauthorized)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	a.count(r, http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}

func (a *API) sessionCookie(token string) *http.Cookie {
	c := &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if a.sessionTTL > 0 {
		c.MaxAge = int(a.sessionTTL / time.Second)
	}
	return c
}

func (a *API) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

func (a *API) count(r *http.Request, status int) {
	if a.metrics != nil {
		a.metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
	}
}

func (a *API) countLogin(outcome string) {
	if a.metrics != nil {
		a.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

// errorCode extracts the oops error code, or "" for plain errors.
func errorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error is not recoverable here
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
