package authapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cadastro/cmd/identity"
	"cadastro/cmd/internal/activity"
	"cadastro/cmd/internal/auth/policy"
	"cadastro/cmd/internal/auth/session"
	"cadastro/cmd/internal/metrics"
	"cadastro/cmd/security/password"

	"github.com/go-chi/chi/v5"
)

const (
	msgUsernameTaken      = "Username já cadastrado."
	msgEmailTaken         = "Email já cadastrado."
	msgInvalidCredentials = "Usuário ou senha inválidos."
	msgUserNotFound       = "Usuário não encontrado."
	msgForbidden          = "Você só pode alterar o próprio usuário."
	msgInternal           = "Erro interno."
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Store    identity.Store
	Hasher   password.Hasher
	Tokens   *session.Service
	Activity *activity.Log
	// Metrics is optional.
	Metrics *metrics.Metrics
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// Handler wires the HTTP endpoints to the identity, token and activity services.
type Handler struct {
	log *slog.Logger
	cfg Config

	store    identity.Store
	hasher   password.Hasher
	tokens   *session.Service
	activity *activity.Log
	metrics  *metrics.Metrics
	now      func() time.Time

	dummyHash string
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, cfg Config, deps Deps) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if deps.Store == nil || deps.Hasher == nil || deps.Tokens == nil || deps.Activity == nil {
		return nil, errors.New("authapi: missing dependency")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.StreamPing <= 0 {
		cfg.StreamPing = 25 * time.Second
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		store:    deps.Store,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		activity: deps.Activity,
		metrics:  deps.Metrics,
		now:      deps.Now,
	}
	if h.now == nil {
		h.now = func() time.Time { return time.Now().UTC() }
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := h.hasher.Hash("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	} else {
		log.Warn("auth.dummy_hash.fail", "err", err)
	}

	return h, nil
}

// Register wires the routes onto r.
func (h *Handler) Register(r chi.Router) {
	if h == nil || r == nil {
		return
	}
	r.Post("/cadastro", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/usuario/{id}", h.handleGetUser)
	r.Put("/usuario/{id}", h.handleUpdateUser)
	r.Delete("/usuario/{id}", h.handleDeleteUser)
	r.Get("/usuarios", h.handleListUsers)
	r.Get("/me", h.handleMe)
	r.Get("/logs", h.handleLogs)
	r.Get("/logs/stream", h.handleLogStream)
	r.Get("/stats", h.handleStats)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	reg, err := h.validateRegistration(req)
	if err != nil {
		h.metrics.Registration("invalid")
		h.writeFailure(w, r, "auth.register", err)
		return
	}

	hash, err := h.hasher.Hash(reg.Password)
	if err != nil {
		h.metrics.Registration("invalid")
		h.writeFailure(w, r, "auth.register", err)
		return
	}

	ctx := r.Context()
	u, err := h.store.CreateUser(ctx, identity.CreateUserInput{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		FullName:     reg.FullName,
		Age:          reg.Age,
		Now:          h.now(),
	})
	if err != nil {
		if identity.IsConflict(err) {
			h.metrics.Registration("conflict")
		}
		h.writeFailure(w, r, "auth.register", err)
		return
	}

	h.metrics.Registration("ok")
	h.auditCreate(ctx, u.ID, u.Username)
	h.log.Info("auth.register.success", "user_id", u.ID)

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Username == nil {
		h.writeFailure(w, r, "auth.login", invalidField("username", "campo obrigatório"))
		return
	}
	if req.Password == nil {
		h.writeFailure(w, r, "auth.login", invalidField("password", "campo obrigatório"))
		return
	}

	ctx := r.Context()
	ip := ipString(clientIP(r, h.cfg.TrustProxy))
	username := identity.NormalizeUsername(*req.Username)

	u, found := h.store.FindByUsername(ctx, username)
	if !found {
		// Timing resistance: perform a dummy verify when user is missing.
		if h.dummyHash != "" {
			_, _ = h.hasher.Verify(h.dummyHash, *req.Password)
		}
		h.loginFailed(w, ip, "not_found")
		return
	}

	ok, err := h.hasher.Verify(u.PasswordHash, *req.Password)
	if err != nil {
		h.log.Error("auth.login.verify.fail", "user_id", u.ID, "err", err)
	}
	if !ok {
		h.loginFailed(w, ip, "bad_password")
		return
	}

	now := h.now()
	if _, err := h.store.MarkLogin(ctx, u.ID, now); err != nil {
		if identity.IsNotFound(err) {
			// Deleted between lookup and here.
			h.loginFailed(w, ip, "not_found")
			return
		}
		h.writeFailure(w, r, "auth.login", err)
		return
	}

	issued, err := h.tokens.IssueLogin(u.Username, now)
	if err != nil {
		h.metrics.Login("error")
		h.writeFailure(w, r, "auth.login", err)
		return
	}

	h.metrics.Login("ok")
	h.auditLogin(ctx, u.ID, u.Username, issued.Degraded)
	h.log.Info("auth.login.success", "user_id", u.ID, "ip", ip, "degraded", issued.Degraded)

	writeJSON(w, http.StatusOK, loginResponse{
		Message:     fmt.Sprintf("Login bem-sucedido! Bem-vindo, %s!", u.Username),
		AccessToken: issued.Token,
		TokenType:   issued.TokenType,
		ExpiresIn:   issued.ExpiresIn,
	})
}

// loginFailed writes the single body shared by unknown users and wrong passwords.
func (h *Handler) loginFailed(w http.ResponseWriter, ip, reason string) {
	h.metrics.Login("invalid_credentials")
	h.log.Info("auth.login.fail", "reason", reason, "ip", ip)

	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "invalid_credentials", msgInvalidCredentials)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	p, ok := h.readPrincipal(w, r)
	if !ok {
		return
	}

	id, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "user.get", err)
		return
	}

	ctx := r.Context()
	u, err := h.store.GetUserByID(ctx, id)
	if err != nil {
		h.writeFailure(w, r, "user.get", err)
		return
	}

	h.auditView(ctx, p.UserID, u.ID)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	id, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "user.update", err)
		return
	}

	var req updateRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	patch, err := validateUpdate(req)
	if err != nil {
		h.writeFailure(w, r, "user.update", err)
		return
	}

	ctx := r.Context()
	u, err := h.store.UpdateUser(ctx, id, policy.OwnerOnly(p), patch)
	if err != nil {
		h.writeFailure(w, r, "user.update", err)
		return
	}

	h.auditUpdate(ctx, u.ID, patchFields(patch))
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	id, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "user.delete", err)
		return
	}

	ctx := r.Context()
	if err := h.store.DeleteUser(ctx, id, policy.OwnerOnly(p)); err != nil {
		h.writeFailure(w, r, "user.delete", err)
		return
	}

	h.auditDelete(ctx, id, p.Username)
	h.log.Info("user.delete.success", "user_id", id)

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Usuário %s removido com sucesso.", p.Username),
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.readPrincipal(w, r); !ok {
		return
	}

	q := r.URL.Query()
	limit, err := parseLimit(q)
	if err != nil {
		h.writeFailure(w, r, "user.list", err)
		return
	}
	offset, err := parseOffset(q)
	if err != nil {
		h.writeFailure(w, r, "user.list", err)
		return
	}

	ctx := r.Context()
	users, err := h.store.ListUsers(ctx, offset, limit)
	if err != nil {
		h.writeFailure(w, r, "user.list", err)
		return
	}

	h.auditList(ctx, len(users), offset, limit)
	writeJSON(w, http.StatusOK, toUserResponses(users))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	u, found := h.store.FindByUsername(ctx, p.Username)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", msgUserNotFound)
		return
	}

	h.auditView(ctx, u.ID, u.ID)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		h.writeFailure(w, r, "activity.query", err)
		return
	}
	if p.UserID == 0 {
		writeError(w, http.StatusNotFound, "not_found", msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toLogEntryResponses(h.activity.Query(p.UserID, limit)))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.readPrincipal(w, r); !ok {
		return
	}

	s := h.store.Stats(r.Context())
	writeJSON(w, http.StatusOK, statsResponse{
		TotalUsers:    s.TotalUsers,
		TotalLogs:     h.activity.Count(),
		UsersLoggedIn: s.UsersLoggedIn,
	})
}

// ---- error translation ----

// writeFailure maps domain errors onto HTTP. Unknown errors are logged and
// collapse to a generic 500.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve validationError

	switch {
	case errors.As(err, &ve):
		writeFieldError(w, http.StatusUnprocessableEntity, "validation_error", ve.Field, ve.Error())
	case errors.Is(err, password.ErrPasswordTooShort):
		writeFieldError(w, http.StatusUnprocessableEntity, "validation_error", "password", "password: senha muito curta")
	case errors.Is(err, password.ErrPasswordTooLong):
		writeFieldError(w, http.StatusUnprocessableEntity, "validation_error", "password", "password: senha muito longa")
	case errors.Is(err, password.ErrWeakPassword):
		writeFieldError(w, http.StatusUnprocessableEntity, "validation_error", "password", "password: senha muito fraca")
	case identity.IsConflict(err):
		if identity.ConflictField(err) == identity.FieldEmail {
			writeError(w, http.StatusBadRequest, "email_taken", msgEmailTaken)
			return
		}
		writeError(w, http.StatusBadRequest, "username_taken", msgUsernameTaken)
	case identity.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", msgUserNotFound)
	case policy.IsForbidden(err):
		writeError(w, http.StatusForbidden, "forbidden", msgForbidden)
	case identity.IsInvalidInput(err):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, context.Canceled):
		h.log.Info(op+".canceled", "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "canceled", "Requisição cancelada.")
	default:
		h.log.Error(op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", msgInternal)
	}
}

func patchFields(p identity.Patch) []string {
	var fields []string
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.FullName != nil {
		fields = append(fields, "full_name")
	}
	if p.Age != nil {
		fields = append(fields, "age")
	}
	return fields
}
