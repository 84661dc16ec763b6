package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"
	"movie-catalog/internal/store/storetest"
	"movie-catalog/pkg/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserHandlerFixture() (*UserHandler, *storetest.UserStore) {
	users := storetest.NewUserStore()
	users.CountriesByID = map[uint]model.Country{
		1: {ID: 1, Code: "HR", Name: "Croatia"},
		2: {ID: 2, Code: "NO", Name: "Norway"},
	}
	lookups := &storetest.LookupStore{
		CountryList: []model.Country{
			{ID: 1, Code: "HR", Name: "Croatia"},
			{ID: 2, Code: "NO", Name: "Norway"},
		},
	}
	sessions := session.NewManager("test-secret", 0)
	return NewUserHandler(users, lookups, sessions, 6), users
}

func seedUser(t *testing.T, users *storetest.UserStore, username string, countryID uint) *model.User {
	t.Helper()
	user := &model.User{
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Email:     username + "@example.com",
		PwdHash:   "hash",
		PwdSalt:   "salt",
		CountryID: countryID,
	}
	require.NoError(t, users.Create(user))
	return user
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	e := echo.New()
	h, users := newUserHandlerFixture()
	seedUser(t, users, "alice", 1)

	req := jsonRequest(http.MethodPost, "/users", UserRequest{
		Username:  "alice",
		Password:  "pw123",
		Email:     "other@example.com",
		CountryID: 1,
	})
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 1, users.Len())
}

func TestUserSearchMatchesCountryName(t *testing.T) {
	e := echo.New()
	h, users := newUserHandlerFixture()
	seedUser(t, users, "alice", 1)
	seedUser(t, users, "bob", 2)

	req := httptest.NewRequest(http.MethodGet, "/users?search=norway", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var result query.PagedResult[model.User]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "bob", result.Items[0].Username)
}

func TestUserUpdateIDMismatch(t *testing.T) {
	e := echo.New()
	h, users := newUserHandlerFixture()
	seedUser(t, users, "alice", 1)

	req := jsonRequest(http.MethodPost, "/users/5", UserRequest{
		ID:       7,
		Username: "mallory",
		Email:    "mallory@example.com",
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	stored, err := users.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username, "no store mutation on id mismatch")
}

func TestUserUpdateAllowListedFieldsOnly(t *testing.T) {
	e := echo.New()
	h, users := newUserHandlerFixture()
	seeded := seedUser(t, users, "alice", 1)
	originalHash := seeded.PwdHash

	req := jsonRequest(http.MethodPost, "/users/1", UserRequest{
		ID:        1,
		Username:  "alice2",
		Password:  "should-be-ignored",
		FirstName: "Alicia",
		Email:     "alice2@example.com",
		CountryID: 2,
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	stored, err := users.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)
	assert.Equal(t, "Alicia", stored.FirstName)
	assert.Equal(t, uint(2), stored.CountryID)
	assert.Equal(t, originalHash, stored.PwdHash, "edit must never touch the credential")
}

func TestUserDeleteIsIdempotent(t *testing.T) {
	e := echo.New()
	h, users := newUserHandlerFixture()
	seedUser(t, users, "alice", 1)

	del := func() *httptest.ResponseRecorder {
		req := jsonRequest(http.MethodPost, "/users/1/delete", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Delete(c))
		return rec
	}

	first := del()
	assert.Equal(t, http.StatusSeeOther, first.Code)
	assert.Equal(t, 0, users.Len())

	second := del()
	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, 0, users.Len())
}

func TestUserEditFormRepopulatesCountries(t *testing.T) {
	e := echo.New()
	h, users := newUserHandlerFixture()
	seedUser(t, users, "alice", 1)

	req := httptest.NewRequest(http.MethodGet, "/users/1/edit", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.EditForm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User      model.User      `json:"user"`
		Countries []model.Country `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Username)
	assert.Len(t, body.Countries, 2)
}
