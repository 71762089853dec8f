package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Multipart field carrying the track file.
const trackField = "gpx"

const gpxContentType = "application/gpx+xml"

// Bodies larger than this are rejected before parsing.
const maxTrailBody = 32 << 20

type TrailHandler struct {
	trailService *service.TrailService
}

func NewTrailHandler(trailService *service.TrailService) *TrailHandler {
	return &TrailHandler{trailService: trailService}
}

func (h *TrailHandler) List(c *gin.Context) {
	filter, err := service.ParseTrailFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	trails, err := h.trailService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(trails))
}

func (h *TrailHandler) Near(c *gin.Context) {
	trails, err := h.trailService.Near(c.Request.Context(), service.NearQuery{
		Lat:    c.Query("lat"),
		Lon:    c.Query("lon"),
		Radius: c.Query("radius"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(trails))
}

func (h *TrailHandler) Get(c *gin.Context) {
	trail, err := h.trailService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trail)
}

func (h *TrailHandler) Create(c *gin.Context) {
	in, file, cleanup, err := readTrailPayload(c)
	if err != nil {
		logger.Log.Warn("Trail payload parsing failed", zap.Error(err))
		badRequest(c, "Invalid request body")
		return
	}
	defer cleanup()

	trail, filePath, err := h.trailService.Create(c.Request.Context(), currentActor(c), in, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"trail":    trail,
		"filePath": filePath,
	})
}

func (h *TrailHandler) Update(c *gin.Context) {
	in, file, cleanup, err := readTrailPayload(c)
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	defer cleanup()

	trail, err := h.trailService.Update(c.Request.Context(), c.Param("id"), in, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trail)
}

func (h *TrailHandler) ReplaceTrack(c *gin.Context) {
	_, file, cleanup, err := readTrailPayload(c)
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	defer cleanup()

	trail, filePath, err := h.trailService.ReplaceAsset(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trail":    trail,
		"filePath": filePath,
	})
}

func (h *TrailHandler) Delete(c *gin.Context) {
	if err := h.trailService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamTrack serves the track inline.
func (h *TrailHandler) StreamTrack(c *gin.Context) {
	h.serveTrack(c, false)
}

// DownloadTrack serves the track as an attachment.
func (h *TrailHandler) DownloadTrack(c *gin.Context) {
	h.serveTrack(c, true)
}

func (h *TrailHandler) serveTrack(c *gin.Context, attachment bool) {
	id := c.Param("id")

	f, info, err := h.trailService.OpenAsset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", gpxContentType)
	if attachment {
		c.Header("Content-Disposition", `attachment; filename="trail-`+id+`.gpx"`)
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// readTrailPayload accepts a multipart form (fields plus an optional gpx
// file) or a JSON object. The returned cleanup releases temporary files.
func readTrailPayload(c *gin.Context) (service.TrailInput, *service.Upload, func(), error) {
	noop := func() {}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTrailBody)

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		in := service.TrailInput{}
		if c.Request.ContentLength == 0 {
			return in, nil, noop, nil
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			return nil, nil, noop, err
		}
		return in, nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, noop, err
	}
	cleanup := func() {
		if err := form.RemoveAll(); err != nil {
			logger.Log.Warn("Failed to remove multipart temp files", zap.Error(err))
		}
	}

	in := service.TrailInput{}
	for key, values := range form.Value {
		switch len(values) {
		case 0:
		case 1:
			in[key] = values[0]
		default:
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			in[key] = list
		}
	}

	headers := form.File[trackField]
	if len(headers) == 0 {
		return in, nil, cleanup, nil
	}

	upload, err := openUpload(headers[0])
	if err != nil {
		cleanup()
		return nil, nil, noop, err
	}
	return in, upload.Upload, func() {
		_ = upload.file.Close()
		cleanup()
	}, nil
}

type openedUpload struct {
	*service.Upload
	file multipart.File
}

func openUpload(fh *multipart.FileHeader) (*openedUpload, error) {
	if fh == nil {
		return nil, errors.New("missing file header")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &openedUpload{
		Upload: &service.Upload{Filename: fh.Filename, Body: f},
		file:   f,
	}, nil
}

func nonNil(trails []models.Trail) []models.Trail {
	if trails == nil {
		return []models.Trail{}
	}
	return trails
}
