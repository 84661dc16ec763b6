package handler

import (
	"net/http"
	"time"

	"movie-catalog/internal/credential"
	"movie-catalog/internal/middleware"
	"movie-catalog/internal/model"
	"movie-catalog/internal/query"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/logger"
	"movie-catalog/pkg/session"
	"movie-catalog/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// searchKeyUsers is the session key for the users list filter.
const searchKeyUsers = "users"

// UserRequest is the allow-listed input for administrative user create/edit
// requests. Password is only honored on create.
type UserRequest struct {
	ID        uint    `json:"id" form:"id"`
	Username  string  `json:"username" form:"username"`
	Password  string  `json:"password" form:"password"`
	FirstName string  `json:"first_name" form:"first_name"`
	LastName  string  `json:"last_name" form:"last_name"`
	Email     string  `json:"email" form:"email"`
	Phone     *string `json:"phone,omitempty" form:"phone"`
	CountryID uint    `json:"country_id" form:"country_id"`
}

// UserHandler handles administrative user management.
type UserHandler struct {
	users    store.UserStore
	lookups  store.LookupStore
	sessions *session.Manager
	pageSize int
}

// NewUserHandler creates a UserHandler with its required dependencies.
func NewUserHandler(users store.UserStore, lookups store.LookupStore, sessions *session.Manager, pageSize int) *UserHandler {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &UserHandler{users: users, lookups: lookups, sessions: sessions, pageSize: pageSize}
}

// List returns one page of users, with the same search precedence as the
// video list: explicit parameter first, then the session-persisted filter.
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	explicit := c.QueryParam("search")
	stored := h.sessions.SearchString(c.Request(), searchKeyUsers)

	search, override := query.ResolveSearch(explicit, stored)
	page := query.ParsePage(c.QueryParam("page"))
	if override {
		page = 1
		if err := h.sessions.SetSearchString(c.Request(), c.Response(), searchKeyUsers, search); err != nil {
			log.Warn("Failed to persist search string", zap.Error(err))
		}
	}
	if search != "" {
		prometheus.RecordSearch("users")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	result, err := h.users.Search(search, page, h.pageSize)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	log.Info("Users listed",
		zap.String("search", search),
		zap.Int("page", result.Page),
		zap.Int64("total", result.TotalItems))
	return c.JSON(http.StatusOK, result)
}

// Detail returns a single user by id.
func (h *UserHandler) Detail(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	user, err := h.users.FindByID(id)
	if err == store.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		log.Error("Failed to load user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	return c.JSON(http.StatusOK, user)
}

// CreateForm returns the country lookup needed to render the create form.
func (h *UserHandler) CreateForm(c echo.Context) error {
	return h.formData(c, nil)
}

// Create inserts a new user with a freshly salted credential and redirects
// to the list.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid user request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	fieldErrors := validateRegistration(req.Username, req.Password, req.Email)
	if len(fieldErrors) == 0 {
		taken, err := h.users.UsernameTaken(req.Username)
		if err != nil {
			log.Error("Failed to check username", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
		}
		if taken {
			fieldErrors["username"] = "Username already exists."
		}
	}
	if len(fieldErrors) > 0 {
		log.Warn("User creation rejected", zap.Any("errors", fieldErrors))
		return h.validationFailed(c, req, fieldErrors)
	}

	hash, salt, err := credential.HashPassword(req.Password)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	user := model.User{
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

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.users.Create(&user); err != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	prometheus.RecordMutation("users", "create")
	log.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return c.Redirect(http.StatusSeeOther, "/users")
}

// EditForm returns the user plus the country lookup needed to render the
// edit form.
func (h *UserHandler) EditForm(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	user, err := h.users.FindByID(id)
	if err == store.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		log.Error("Failed to load user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	return h.formData(c, user)
}

// Update applies the allow-listed profile fields to an existing user under
// an optimistic concurrency check. The credential fields are never touched.
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid user request", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.ID != 0 && req.ID != id {
		log.Warn("User id mismatch",
			zap.Uint("path_id", id),
			zap.Uint("payload_id", req.ID))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"errors": map[string]string{"id": "Payload id does not match the requested user."},
		})
	}

	fieldErrors := map[string]string{}
	if req.Username == "" {
		fieldErrors["username"] = "Username is required."
	}
	if req.Email == "" {
		fieldErrors["email"] = "Email is required."
	}
	if len(fieldErrors) > 0 {
		log.Warn("User update rejected", zap.Uint("user_id", id), zap.Any("errors", fieldErrors))
		return h.validationFailed(c, req, fieldErrors)
	}

	user, err := h.users.FindByID(id)
	if err == store.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		log.Error("Failed to load user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	user.Username = req.Username
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.Phone = req.Phone
	user.CountryID = req.CountryID

	defer prometheus.TrackDBOperation("update")(time.Now())
	switch err := h.users.Update(user); err {
	case nil:
	case store.ErrNotFound:
		log.Warn("User vanished during update", zap.Uint("user_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case store.ErrConflict:
		log.Error("Concurrent modification of user", zap.Uint("user_id", id))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user was modified concurrently"})
	default:
		log.Error("Failed to update user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	prometheus.RecordMutation("users", "edit")
	log.Info("User updated", zap.Uint("user_id", id), zap.String("username", user.Username))
	return c.Redirect(http.StatusSeeOther, "/users")
}

// DeleteConfirm returns the record a delete confirmation view would render.
func (h *UserHandler) DeleteConfirm(c echo.Context) error {
	return h.Detail(c)
}

// Delete soft-deletes the user. Deleting an id that is already gone
// succeeds.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if _, err := h.users.FindByID(id); err == store.ErrNotFound {
		log.Info("User already deleted", zap.Uint("user_id", id))
		return c.Redirect(http.StatusSeeOther, "/users")
	} else if err != nil {
		log.Error("Failed to load user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	if err := h.users.Delete(id); err != nil {
		log.Error("Failed to delete user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	prometheus.RecordMutation("users", "delete")
	log.Info("User deleted", zap.Uint("user_id", id))
	return c.Redirect(http.StatusSeeOther, "/users")
}

// formData responds with the country lookup, plus the user being edited when
// present.
func (h *UserHandler) formData(c echo.Context, user *model.User) error {
	log := logger.FromContext(c)

	countries, err := h.lookups.Countries()
	if err != nil {
		log.Error("Failed to load countries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load lookup data"})
	}

	response := echo.Map{"countries": countries}
	if user != nil {
		response["user"] = user
	}
	return c.JSON(http.StatusOK, response)
}

// validationFailed re-renders the input data: field errors, the submitted
// values (password stripped) and the country lookup.
func (h *UserHandler) validationFailed(c echo.Context, req UserRequest, fieldErrors map[string]string) error {
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
