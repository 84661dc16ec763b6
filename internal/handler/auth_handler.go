package handler

import (
	"net/http"
	"time"

	"movie-catalog/internal/credential"
	"movie-catalog/internal/middleware"
	"movie-catalog/internal/model"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/logger"
	"movie-catalog/pkg/session"
	"movie-catalog/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RegisterRequest is the allow-listed input for self registration.
type RegisterRequest struct {
	Username  string  `json:"username" form:"username"`
	Password  string  `json:"password" form:"password"`
	FirstName string  `json:"first_name" form:"first_name"`
	LastName  string  `json:"last_name" form:"last_name"`
	Email     string  `json:"email" form:"email"`
	Phone     *string `json:"phone,omitempty" form:"phone"`
	CountryID uint    `json:"country_id" form:"country_id"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AuthHandler handles registration, login and the current user's details.
type AuthHandler struct {
	users    store.UserStore
	lookups  store.LookupStore
	sessions *session.Manager
}

// NewAuthHandler creates an AuthHandler with its required dependencies.
func NewAuthHandler(users store.UserStore, lookups store.LookupStore, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{users: users, lookups: lookups, sessions: sessions}
}

// Register creates a new account. A duplicate username is a field-level
// validation error, never an insert.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRegistration()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	fieldErrors := validateRegistration(req.Username, req.Password, req.Email)

	defer prometheus.TrackDBOperation("query")(time.Now())
	if len(fieldErrors) == 0 {
		taken, err := h.users.UsernameTaken(req.Username)
		if err != nil {
			log.Error("Failed to check username", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
		if taken {
			fieldErrors["username"] = "Username already exists."
		}
	}

	if len(fieldErrors) > 0 {
		log.Warn("Registration rejected", zap.Any("errors", fieldErrors))
		prometheus.RecordAuthError("validation_failed")
		return h.registrationFailed(c, req, fieldErrors)
	}

	hash, salt, err := credential.HashPassword(req.Password)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := newUser(req, hash, salt)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.users.Create(user); err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login verifies credentials and stores the principal in the session.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLogin()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.FindByUsername(req.Username)
	if err != nil {
		// Unknown username and wrong password are indistinguishable to the
		// caller.
		log.Warn("Login failed: user not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !credential.Verify(req.Password, user.PwdHash, user.PwdSalt) {
		log.Warn("Login failed: wrong password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	principal := session.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	if err := h.sessions.SetPrincipal(c.Request(), c.Response(), principal); err != nil {
		log.Error("Failed to save session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Logout drops the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromContext(c)

	if err := h.sessions.Clear(c.Request(), c.Response()); err != nil {
		log.Error("Failed to clear session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	log.Info("User logged out")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// MyDetails returns the record of the logged-in user.
func (h *AuthHandler) MyDetails(c echo.Context) error {
	log := logger.FromContext(c)

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	user, err := h.users.FindByID(principal.UserID)
	if err == store.ErrNotFound {
		log.Warn("Logged-in user no longer exists", zap.Uint("user_id", principal.UserID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		log.Error("Failed to load user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	return c.JSON(http.StatusOK, user)
}

// registrationFailed re-renders the registration data: field errors, the
// submitted input and the country lookup so the form keeps its state.
func (h *AuthHandler) registrationFailed(c echo.Context, req RegisterRequest, fieldErrors map[string]string) error {
	countries, err := h.lookups.Countries()
	if err != nil {
		logger.FromContext(c).Error("Failed to load countries", zap.Error(err))
	}
	req.Password = ""
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"errors":    fieldErrors,
		"input":     req,
		"countries": countries,
	})
}

// newUser builds a user record from the allow-listed registration fields.
// Registration always yields a confirmed member with a fresh security token.
func newUser(req RegisterRequest, hash, salt string) *model.User {
	return &model.User{
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PwdHash:       hash,
		PwdSalt:       salt,
		Phone:         req.Phone,
		IsConfirmed:   true,
		SecurityToken: credential.NewSecurityToken(),
		Role:          middleware.RoleMember,
		CountryID:     req.CountryID,
	}
}

func validateRegistration(username, password, email string) map[string]string {
	errs := map[string]string{}
	if username == "" {
		errs["username"] = "Username is required."
	}
	if password == "" {
		errs["password"] = "Password is required."
	}
	if email == "" {
		errs["email"] = "Email is required."
	}
	return errs
}
