package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"
	"movie-catalog/internal/store"
	"movie-catalog/internal/store/storetest"
	"movie-catalog/pkg/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVideoHandler() (*VideoHandler, *storetest.VideoStore, *session.Manager) {
	videos := storetest.NewVideoStore()
	videos.GenresByID = map[uint]model.Genre{
		1: {ID: 1, Name: "Action"},
		2: {ID: 2, Name: "Drama"},
	}
	lookups := &storetest.LookupStore{
		GenreList: []model.Genre{{ID: 1, Name: "Action"}, {ID: 2, Name: "Drama"}},
		ImageList: []model.Image{{ID: 1, Content: "/covers/1.jpg"}},
	}
	sessions := session.NewManager("test-secret", 0)
	return NewVideoHandler(videos, lookups, sessions, 6), videos, sessions
}

func seedVideos(t *testing.T, videos *storetest.VideoStore, genreID uint, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, videos.Create(&model.Video{
			Name:         name,
			Description:  "seeded",
			TotalSeconds: 5400,
			StreamingURL: "https://stream.example.com/" + name,
			GenreID:      genreID,
			ImageID:      1,
		}))
	}
}

func listVideos(t *testing.T, h *VideoHandler, target string, cookies []*http.Cookie) (*httptest.ResponseRecorder, query.PagedResult[model.Video]) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var result query.PagedResult[model.Video]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return rec, result
}

func videoNames(items []model.Video) []string {
	names := make([]string, 0, len(items))
	for _, v := range items {
		names = append(names, v.Name)
	}
	return names
}

func TestVideoListSessionPersistedFilterPaging(t *testing.T) {
	h, videos, _ := newVideoHandler()

	var matching []string
	for i := 1; i <= 8; i++ {
		matching = append(matching, fmt.Sprintf("Shark Attack %d", i))
	}
	seedVideos(t, videos, 2, matching...)
	seedVideos(t, videos, 2, "Quiet Lake", "Still Water")

	// An explicit search stores the filter in the session.
	firstRec, firstPage := listVideos(t, h, "/videos?search=Shark", nil)
	assert.Equal(t, int64(8), firstPage.TotalItems)
	assert.Equal(t, 2, firstPage.TotalPages)
	assert.Equal(t, matching[:6], videoNames(firstPage.Items))

	cookies := firstRec.Result().Cookies()
	require.NotEmpty(t, cookies, "search must be persisted in the session")

	// Paging without a search parameter applies the stored filter.
	_, secondPage := listVideos(t, h, "/videos?page=2", cookies)
	assert.Equal(t, matching[6:], videoNames(secondPage.Items))

	// Consistent with requesting the same filter explicitly.
	_, explicitSecond := listVideos(t, h, "/videos?search=Shark&page=2", nil)
	assert.Equal(t, videoNames(secondPage.Items), videoNames(explicitSecond.Items))
}

func TestVideoListBlankSearchKeepsStoredFilter(t *testing.T) {
	h, videos, _ := newVideoHandler()
	seedVideos(t, videos, 1, "Blast Radius")
	seedVideos(t, videos, 2, "Slow Afternoon")

	firstRec, _ := listVideos(t, h, "/videos?search=Blast", nil)
	cookies := firstRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// A blank search field on a submitted form does not clear the filter.
	_, blank := listVideos(t, h, "/videos?search=", cookies)
	assert.Equal(t, []string{"Blast Radius"}, videoNames(blank.Items))

	// And the stored filter still applies on the next plain listing.
	_, followUp := listVideos(t, h, "/videos", cookies)
	assert.Equal(t, []string{"Blast Radius"}, videoNames(followUp.Items))
}

func TestVideoListSearchMatchesGenreName(t *testing.T) {
	h, videos, _ := newVideoHandler()
	seedVideos(t, videos, 1, "Blast Radius")
	seedVideos(t, videos, 2, "Slow Afternoon")

	_, result := listVideos(t, h, "/videos?search=action", nil)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Blast Radius", result.Items[0].Name)
}

func TestVideoListNewSearchResetsPage(t *testing.T) {
	h, videos, _ := newVideoHandler()

	var names []string
	for i := 1; i <= 9; i++ {
		names = append(names, fmt.Sprintf("Chase Scene %d", i))
	}
	seedVideos(t, videos, 1, names...)

	// page=5 is ignored because a fresh search resets paging to page 1.
	_, result := listVideos(t, h, "/videos?search=Chase&page=5", nil)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, names[:6], videoNames(result.Items))
}

func TestVideoCreateRoundTrip(t *testing.T) {
	e := echo.New()
	h, videos, _ := newVideoHandler()

	req := jsonRequest(http.MethodPost, "/videos", VideoRequest{
		Name:         "The Long Haul",
		Description:  "A trucker drama",
		TotalSeconds: 7200,
		StreamingURL: "https://stream.example.com/long-haul",
		GenreID:      2,
		ImageID:      1,
	})
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/videos", rec.Header().Get("Location"))

	created, err := videos.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "The Long Haul", created.Name)
	assert.Equal(t, "A trucker drama", created.Description)
	assert.Equal(t, 7200, created.TotalSeconds)
	assert.Equal(t, "https://stream.example.com/long-haul", created.StreamingURL)
	assert.Equal(t, uint(2), created.GenreID)
	assert.Equal(t, uint(1), created.ImageID)
}

func TestVideoCreateValidation(t *testing.T) {
	e := echo.New()
	h, videos, _ := newVideoHandler()

	req := jsonRequest(http.MethodPost, "/videos", VideoRequest{Description: "no name"})
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, videos.Len())

	var body struct {
		Errors map[string]string `json:"errors"`
		Input  VideoRequest      `json:"input"`
		Genres []model.Genre     `json:"genres"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "name")
	assert.Equal(t, "no name", body.Input.Description, "submitted input must be preserved")
	assert.NotEmpty(t, body.Genres, "lookup data must be repopulated")
}

func TestVideoUpdateIDMismatch(t *testing.T) {
	e := echo.New()
	h, videos, _ := newVideoHandler()
	seedVideos(t, videos, 1, "Original Name")

	req := jsonRequest(http.MethodPost, "/videos/5", VideoRequest{
		ID:           7,
		Name:         "Hijacked",
		StreamingURL: "https://stream.example.com/x",
		GenreID:      1,
		ImageID:      1,
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// No store mutation happened.
	stored, err := videos.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Original Name", stored.Name)
}

func TestVideoUpdate(t *testing.T) {
	e := echo.New()
	h, videos, _ := newVideoHandler()
	seedVideos(t, videos, 1, "Original Name")

	req := jsonRequest(http.MethodPost, "/videos/1", VideoRequest{
		ID:           1,
		Name:         "Renamed",
		Description:  "updated",
		TotalSeconds: 600,
		StreamingURL: "https://stream.example.com/renamed",
		GenreID:      2,
		ImageID:      1,
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	stored, err := videos.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, uint(2), stored.GenreID)
	assert.Equal(t, 2, stored.Version, "version advances on update")
}

// conflictingVideoStore reports every update as lost to a concurrent writer.
type conflictingVideoStore struct {
	*storetest.VideoStore
}

func (s conflictingVideoStore) Update(video *model.Video) error {
	return store.ErrConflict
}

// vanishingVideoStore reports every update as targeting a deleted record.
type vanishingVideoStore struct {
	*storetest.VideoStore
}

func (s vanishingVideoStore) Update(video *model.Video) error {
	return store.ErrNotFound
}

func updateSeededVideo(t *testing.T, videos store.VideoStore) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	lookups := &storetest.LookupStore{
		GenreList: []model.Genre{{ID: 1, Name: "Action"}},
		ImageList: []model.Image{{ID: 1, Content: "/covers/1.jpg"}},
	}
	h := NewVideoHandler(videos, lookups, session.NewManager("test-secret", 0), 6)

	req := jsonRequest(http.MethodPost, "/videos/1", VideoRequest{
		ID:           1,
		Name:         "Renamed",
		StreamingURL: "https://stream.example.com/renamed",
		GenreID:      1,
		ImageID:      1,
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))
	return rec
}

func TestVideoUpdateConcurrencyConflict(t *testing.T) {
	backing := storetest.NewVideoStore()
	seedVideos(t, backing, 1, "Original Name")

	rec := updateSeededVideo(t, conflictingVideoStore{backing})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVideoUpdateConflictOnDeletedRecord(t *testing.T) {
	backing := storetest.NewVideoStore()
	seedVideos(t, backing, 1, "Original Name")

	rec := updateSeededVideo(t, vanishingVideoStore{backing})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func deleteVideo(t *testing.T, h *VideoHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := jsonRequest(http.MethodPost, "/videos/"+id+"/delete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	return rec
}

func TestVideoDeleteIsIdempotent(t *testing.T) {
	h, videos, _ := newVideoHandler()
	seedVideos(t, videos, 1, "Doomed")

	first := deleteVideo(t, h, "1")
	assert.Equal(t, http.StatusSeeOther, first.Code)
	assert.Equal(t, 0, videos.Len())

	// Deleting the same id again is not an error and changes nothing.
	second := deleteVideo(t, h, "1")
	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, 0, videos.Len())
}

func TestVideoDetailNotFound(t *testing.T) {
	e := echo.New()
	h, _, _ := newVideoHandler()

	req := httptest.NewRequest(http.MethodGet, "/videos/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.Detail(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVideoDeleteConfirmReturnsRecord(t *testing.T) {
	e := echo.New()
	h, videos, _ := newVideoHandler()
	seedVideos(t, videos, 1, "Condemned")

	req := httptest.NewRequest(http.MethodGet, "/videos/1/delete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.DeleteConfirm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Condemned", got.Name)
	assert.Equal(t, 1, videos.Len(), "confirmation must not delete anything")
}
