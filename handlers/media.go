package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/portfolio-cms/content-api/internal/storage"
	"github.com/portfolio-cms/content-api/pkg/logger"
	"github.com/portfolio-cms/content-api/pkg/metrics"
)

// MediaStore is the object storage used for uploaded images.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (*storage.Object, error)
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// MediaHandler serves image uploads whose URLs can be used in records
// (portrait_url, image_url, cover_image, process_images).
type MediaHandler struct {
	store          MediaStore
	maxBytes       int64
	presignExpires time.Duration
}

func NewMediaHandler(ms MediaStore, maxBytes int64, presignExpires time.Duration) *MediaHandler {
	return &MediaHandler{store: ms, maxBytes: maxBytes, presignExpires: presignExpires}
}

// Register mounts POST /api/media and GET /api/media/:key.
func (h *MediaHandler) Register(r gin.IRouter) {
	r.POST("/api/media", h.Upload)
	r.GET("/api/media/:key", h.Download)
}

func (h *MediaHandler) Upload(c *gin.Context) {
	// room for the multipart envelope around the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.reject(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	if fh.Size > h.maxBytes {
		h.reject(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	ct := fh.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err != nil || !strings.HasPrefix(mt, "image/") {
		h.reject(c, http.StatusBadRequest, "file must be an image")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.reject(c, http.StatusBadRequest, "could not read file")
		return
	}
	defer f.Close()

	key := uuid.NewString() + strings.ToLower(path.Ext(fh.Filename))
	ctx := c.Request.Context()
	if err := h.store.Upload(ctx, key, f, fh.Size, ct); err != nil {
		logger.Errorf("media upload %s: %v", key, err)
		metrics.MediaUploads.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": truncate(err.Error(), maxErrorLen)})
		return
	}
	presigned, err := h.store.PresignedURL(ctx, key, h.presignExpires)
	if err != nil {
		// the object is stored, the public URL still works
		logger.Warnf("media presign %s: %v", key, err)
	}
	metrics.MediaUploads.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, gin.H{
		"key":           key,
		"url":           absoluteURL(c, "/api/media/"+key),
		"presigned_url": presigned,
	})
}

func (h *MediaHandler) Download(c *gin.Context) {
	obj, err := h.store.Download(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Errorf("media download %s: %v", c.Param("key"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": truncate(err.Error(), maxErrorLen)})
		return
	}
	defer obj.Body.Close()
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

func (h *MediaHandler) reject(c *gin.Context, status int, msg string) {
	metrics.MediaUploads.WithLabelValues("rejected").Inc()
	c.JSON(status, gin.H{"error": msg})
}

// absoluteURL builds an http(s) URL for p on the host the client used.
func absoluteURL(c *gin.Context, p string) string {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return scheme + "://" + host + p
}
