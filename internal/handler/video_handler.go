package handler

import (
	"net/http"
	"strconv"
	"time"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/logger"
	"movie-catalog/pkg/session"
	"movie-catalog/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// searchKeyVideos is the session key for the videos list filter.
const searchKeyVideos = "videos"

// VideoRequest is the allow-listed input for video create/edit requests.
type VideoRequest struct {
	ID           uint   `json:"id" form:"id"`
	Name         string `json:"name" form:"name"`
	Description  string `json:"description" form:"description"`
	TotalSeconds int    `json:"total_seconds" form:"total_seconds"`
	StreamingURL string `json:"streaming_url" form:"streaming_url"`
	GenreID      uint   `json:"genre_id" form:"genre_id"`
	ImageID      uint   `json:"image_id" form:"image_id"`
}

// VideoHandler handles the video catalog resource.
type VideoHandler struct {
	videos   store.VideoStore
	lookups  store.LookupStore
	sessions *session.Manager
	pageSize int
}

// NewVideoHandler creates a VideoHandler with its required dependencies.
func NewVideoHandler(videos store.VideoStore, lookups store.LookupStore, sessions *session.Manager, pageSize int) *VideoHandler {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &VideoHandler{videos: videos, lookups: lookups, sessions: sessions, pageSize: pageSize}
}

// List returns one page of videos. A non-empty search parameter overrides the
// session-persisted filter and resets paging to the first page; a blank or
// absent one leaves the stored filter in place.
func (h *VideoHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	explicit := c.QueryParam("search")
	stored := h.sessions.SearchString(c.Request(), searchKeyVideos)

	search, override := query.ResolveSearch(explicit, stored)
	page := query.ParsePage(c.QueryParam("page"))
	if override {
		page = 1
		if err := h.sessions.SetSearchString(c.Request(), c.Response(), searchKeyVideos, search); err != nil {
			log.Warn("Failed to persist search string", zap.Error(err))
		}
	}
	if search != "" {
		prometheus.RecordSearch("videos")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	result, err := h.videos.Search(search, page, h.pageSize)
	if err != nil {
		log.Error("Failed to list videos", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve videos"})
	}

	log.Info("Videos listed",
		zap.String("search", search),
		zap.Int("page", result.Page),
		zap.Int64("total", result.TotalItems))
	return c.JSON(http.StatusOK, result)
}

// Detail returns a single video by id.
func (h *VideoHandler) Detail(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}

	video, err := h.videos.FindByID(id)
	if err == store.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	if err != nil {
		log.Error("Failed to load video", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve video"})
	}

	return c.JSON(http.StatusOK, video)
}

// CreateForm returns the lookup data needed to render the create form.
func (h *VideoHandler) CreateForm(c echo.Context) error {
	return h.formData(c, nil)
}

// Create inserts a new video and redirects to the list.
func (h *VideoHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req VideoRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid video request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if fieldErrors := validateVideo(req); len(fieldErrors) > 0 {
		log.Warn("Video creation rejected", zap.Any("errors", fieldErrors))
		return h.validationFailed(c, req, fieldErrors)
	}

	video := model.Video{
		Name:         req.Name,
		Description:  req.Description,
		TotalSeconds: req.TotalSeconds,
		StreamingURL: req.StreamingURL,
		GenreID:      req.GenreID,
		ImageID:      req.ImageID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.videos.Create(&video); err != nil {
		log.Error("Failed to create video", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create video"})
	}

	prometheus.RecordMutation("videos", "create")
	log.Info("Video created",
		zap.Uint("video_id", video.ID),
		zap.String("name", video.Name))
	return c.Redirect(http.StatusSeeOther, "/videos")
}

// EditForm returns the video plus lookup data needed to render the edit form.
func (h *VideoHandler) EditForm(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}

	video, err := h.videos.FindByID(id)
	if err == store.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	if err != nil {
		log.Error("Failed to load video", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve video"})
	}

	return h.formData(c, video)
}

// Update applies the allow-listed fields to an existing video under an
// optimistic concurrency check.
func (h *VideoHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}

	var req VideoRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid video request", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	// The payload id must agree with the path before anything is loaded.
	if req.ID != 0 && req.ID != id {
		log.Warn("Video id mismatch",
			zap.Uint("path_id", id),
			zap.Uint("payload_id", req.ID))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"errors": map[string]string{"id": "Payload id does not match the requested video."},
		})
	}

	if fieldErrors := validateVideo(req); len(fieldErrors) > 0 {
		log.Warn("Video update rejected", zap.Uint("video_id", id), zap.Any("errors", fieldErrors))
		return h.validationFailed(c, req, fieldErrors)
	}

	video, err := h.videos.FindByID(id)
	if err == store.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	if err != nil {
		log.Error("Failed to load video", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve video"})
	}

	video.Name = req.Name
	video.Description = req.Description
	video.TotalSeconds = req.TotalSeconds
	video.StreamingURL = req.StreamingURL
	video.GenreID = req.GenreID
	video.ImageID = req.ImageID

	defer prometheus.TrackDBOperation("update")(time.Now())
	switch err := h.videos.Update(video); err {
	case nil:
	case store.ErrNotFound:
		// Deleted while the edit was in flight.
		log.Warn("Video vanished during update", zap.Uint("video_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	case store.ErrConflict:
		log.Error("Concurrent modification of video", zap.Uint("video_id", id))
		return c.JSON(http.StatusConflict, echo.Map{"error": "video was modified concurrently"})
	default:
		log.Error("Failed to update video", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update video"})
	}

	prometheus.RecordMutation("videos", "edit")
	log.Info("Video updated", zap.Uint("video_id", id), zap.String("name", video.Name))
	return c.Redirect(http.StatusSeeOther, "/videos")
}

// DeleteConfirm returns the record a delete confirmation view would render.
func (h *VideoHandler) DeleteConfirm(c echo.Context) error {
	return h.Detail(c)
}

// Delete removes the video. Deleting an id that is already gone succeeds.
func (h *VideoHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if _, err := h.videos.FindByID(id); err == store.ErrNotFound {
		// Already gone; the delete is idempotent.
		log.Info("Video already deleted", zap.Uint("video_id", id))
		return c.Redirect(http.StatusSeeOther, "/videos")
	} else if err != nil {
		log.Error("Failed to load video", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve video"})
	}

	if err := h.videos.Delete(id); err != nil {
		log.Error("Failed to delete video", zap.Uint("video_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete video"})
	}

	prometheus.RecordMutation("videos", "delete")
	log.Info("Video deleted", zap.Uint("video_id", id))
	return c.Redirect(http.StatusSeeOther, "/videos")
}

// formData responds with the genre and image lookups, plus the video being
// edited when present.
func (h *VideoHandler) formData(c echo.Context, video *model.Video) error {
	log := logger.FromContext(c)

	genres, err := h.lookups.Genres()
	if err != nil {
		log.Error("Failed to load genres", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load lookup data"})
	}
	images, err := h.lookups.Images()
	if err != nil {
		log.Error("Failed to load images", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load lookup data"})
	}

	response := echo.Map{"genres": genres, "images": images}
	if video != nil {
		response["video"] = video
	}
	return c.JSON(http.StatusOK, response)
}

// validationFailed re-renders the input data: field errors, the submitted
// values and the lookups the form needs.
func (h *VideoHandler) validationFailed(c echo.Context, req VideoRequest, fieldErrors map[string]string) error {
	log := logger.FromContext(c)

	genres, err := h.lookups.Genres()
	if err != nil {
		log.Error("Failed to load genres", zap.Error(err))
	}
	images, err := h.lookups.Images()
	if err != nil {
		log.Error("Failed to load images", zap.Error(err))
	}

	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"errors": fieldErrors,
		"input":  req,
		"genres": genres,
		"images": images,
	})
}

func validateVideo(req VideoRequest) map[string]string {
	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "Name is required."
	}
	if req.TotalSeconds < 0 {
		errs["total_seconds"] = "Duration cannot be negative."
	}
	if req.StreamingURL == "" {
		errs["streaming_url"] = "Streaming URL is required."
	}
	if req.GenreID == 0 {
		errs["genre_id"] = "Genre is required."
	}
	if req.ImageID == 0 {
		errs["image_id"] = "Image is required."
	}
	return errs
}

// parseID parses the :id path parameter.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
