package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/internal/store"
	"github.com/portfolio-cms/content-api/pkg/logger"
)

// probeTimeout bounds each store call made by the diagnostics endpoints.
const probeTimeout = 5 * time.Second

// Diagnostic is the /test response.
type Diagnostic struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// RegisterDiagnostics registers the identity, liveness and store diagnostic routes:
//   - GET /        -> {"message": "<app> running"}
//   - GET /health  -> "healthy"
//   - GET /ready   -> 200 when the store answers a ping, 503 otherwise
//   - GET /test    -> Diagnostic, always 200
func RegisterDiagnostics(r gin.IRouter, appName string, st store.Store, urlConfigured bool) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": appName + " running"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()
		if err := probe(func() error { return st.Ping(ctx) }); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": truncate(err.Error(), maxErrorLen)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, diagnose(c.Request.Context(), st, urlConfigured))
	})
}

// diagnose inspects st. Every probe is isolated: a failure or panic only
// degrades the field it fills.
func diagnose(ctx context.Context, st store.Store, urlConfigured bool) Diagnostic {
	d := Diagnostic{
		Backend:          "Running",
		Database:         "Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	err := probe(func() error { return st.Ping(pingCtx) })
	if errors.Is(err, store.ErrNotConnected) {
		return d
	}

	flag := "not set"
	if urlConfigured {
		flag = "set"
	}
	d.DatabaseURL = &flag

	name := "Unknown"
	if perr := probe(func() error {
		if n := st.Name(); n != "" {
			name = n
		}
		return nil
	}); perr != nil {
		logger.Warnf("diagnostics: store name: %v", perr)
	}
	d.DatabaseName = &name

	if err != nil {
		d.Database = "Error: " + truncate(err.Error(), maxErrorLen)
		return d
	}
	d.Database = "Available"
	d.ConnectionStatus = "Connected"

	listCtx, cancelList := context.WithTimeout(ctx, probeTimeout)
	defer cancelList()
	var names []string
	if err := probe(func() (err error) {
		names, err = st.CollectionNames(listCtx)
		return err
	}); err != nil {
		d.Database = "Connected but Error: " + truncate(err.Error(), maxErrorLen)
		return d
	}
	if names != nil {
		d.Collections = names
	}
	d.Database = "Connected & Working"
	return d
}

// probe runs fn, converting a panic into an error.
func probe(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
