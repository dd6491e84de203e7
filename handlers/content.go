package handlers

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/internal/content"
	"github.com/portfolio-cms/content-api/internal/content/service"
	"github.com/portfolio-cms/content-api/internal/schema"
	"github.com/portfolio-cms/content-api/internal/store"
	"github.com/portfolio-cms/content-api/pkg/logger"
)

// maxBodyBytes bounds JSON payloads for record creation.
const maxBodyBytes = 1 << 20

// maxErrorLen bounds error text returned to clients.
const maxErrorLen = 80

// RegisterContentRoutes registers GET and POST /api/<path> for every record kind.
// Kinds that are not listable only get POST.
func RegisterContentRoutes(r gin.IRouter, svc *service.Service) {
	api := r.Group("/api")
	for _, k := range content.Kinds() {
		if k.Listable {
			api.GET("/"+k.Path, listHandler(svc, k))
		}
		api.POST("/"+k.Path, createHandler(svc, k))
	}
}

func listHandler(svc *service.Service, k content.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svc.List(c.Request.Context(), k)
		if err != nil {
			logger.Errorf("list %s: %v", k.Collection, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": truncate(err.Error(), maxErrorLen)})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func createHandler(svc *service.Service, k content.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
			return
		}

		id, err := svc.Create(c.Request.Context(), k, body)
		if err != nil {
			var verr *schema.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": verr.Fields})
			case errors.Is(err, store.ErrDuplicate):
				c.JSON(http.StatusConflict, gin.H{"error": k.Name + " already exists with this " + uniqueLabel(k)})
			default:
				logger.Errorf("create %s: %v", k.Collection, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": truncate(err.Error(), maxErrorLen)})
			}
			return
		}

		resp := gin.H{"inserted_id": id}
		if k.Ack != "" {
			resp["status"] = k.Ack
		}
		c.JSON(http.StatusOK, resp)
	}
}

func uniqueLabel(k content.Kind) string {
	if len(k.Unique) == 1 {
		return k.Unique[0]
	}
	return "value"
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
