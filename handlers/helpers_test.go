package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/internal/content/service"
	"github.com/portfolio-cms/content-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(t *testing.T, st store.Store) *gin.Engine {
	t.Helper()
	svc := service.NewService(st)
	return NewRouter(RouterOptions{
		AppName:        "Portfolio API",
		Service:        svc,
		DatabaseURLSet: true,
		Gatherer:       prometheus.NewRegistry(),
	})
}

func do(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type validationBody struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func (v validationBody) fields() []string {
	out := make([]string, 0, len(v.Details))
	for _, d := range v.Details {
		out = append(out, d.Field)
	}
	return out
}
