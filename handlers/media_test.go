package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/internal/storage"
	"github.com/portfolio-cms/content-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObject struct {
	data        []byte
	contentType string
}

type fakeMedia struct {
	mu         sync.Mutex
	objects    map[string]memObject
	uploadErr  error
	presignErr error
}

func newFakeMedia() *fakeMedia { return &fakeMedia{objects: map[string]memObject{}} }

func (f *fakeMedia) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = memObject{data: b, contentType: contentType}
	return nil
}

func (f *fakeMedia) Download(ctx context.Context, key string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(o.data)), ContentType: o.contentType, Size: int64(len(o.data))}, nil
}

func (f *fakeMedia) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://minio.example/portfolio-media/" + key + "?X-Amz-Expires=" + expires.String(), nil
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func mediaRouter(ms MediaStore, max int64) *gin.Engine {
	r := gin.New()
	NewMediaHandler(ms, max, time.Hour).Register(r)
	return r
}

func upload(r http.Handler, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", contentType)
	req.Host = "api.portfolio.example"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMedia_UploadThenDownload(t *testing.T) {
	ms := newFakeMedia()
	r := mediaRouter(ms, 1<<20)
	png := []byte("\x89PNG\r\n\x1a\nfake")

	ok := metrics.MediaUploads.WithLabelValues("ok")
	before := testutil.ToFloat64(ok)

	body, ct := multipartBody(t, "Portrait.PNG", "image/png", png)
	w := upload(r, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decodeJSON[map[string]string](t, w)
	require.True(t, strings.HasSuffix(res["key"], ".png"), res["key"])
	assert.Equal(t, "http://api.portfolio.example/api/media/"+res["key"], res["url"])
	assert.Contains(t, res["presigned_url"], res["key"])
	assert.Equal(t, before+1, testutil.ToFloat64(ok))

	w = do(r, http.MethodGet, "/api/media/"+res["key"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())
}

func TestMedia_ForwardedHTTPS(t *testing.T) {
	r := mediaRouter(newFakeMedia(), 1<<20)
	body, ct := multipartBody(t, "a.jpg", "image/jpeg", []byte("jpg"))
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "cdn.portfolio.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, strings.HasPrefix(decodeJSON[map[string]string](t, w)["url"], "https://cdn.portfolio.example/api/media/"))
}

func TestMedia_Rejections(t *testing.T) {
	r := mediaRouter(newFakeMedia(), 16)

	body, ct := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, upload(r, body, ct).Code)

	body, ct = multipartBody(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 100))
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload(r, body, ct).Code)

	assert.Equal(t, http.StatusBadRequest, upload(r, strings.NewReader("{}"), "application/json").Code)
}

func TestMedia_StorageFailures(t *testing.T) {
	ms := newFakeMedia()
	ms.presignErr = errors.New("presign unavailable")
	r := mediaRouter(ms, 1<<20)

	body, ct := multipartBody(t, "a.gif", "image/gif", []byte("gif"))
	w := upload(r, body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, decodeJSON[map[string]string](t, w)["presigned_url"])

	ms.uploadErr = errors.New("bucket gone")
	body, ct = multipartBody(t, "a.gif", "image/gif", []byte("gif"))
	w = upload(r, body, ct)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "bucket gone", decodeJSON[map[string]string](t, w)["error"])

	w = do(r, http.MethodGet, "/api/media/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
