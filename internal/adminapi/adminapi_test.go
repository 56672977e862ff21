package adminapi_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionmark/visionmark/internal/adminapi"
	"github.com/visionmark/visionmark/internal/app"
	"github.com/visionmark/visionmark/internal/app/apptest"
	"github.com/visionmark/visionmark/internal/webserver"
)

type client struct {
	t     *testing.T
	app   *app.Application
	token string
}

type envelope struct {
	Data    json.RawMessage   `json:"data"`
	Meta    *adminapi.Meta    `json:"meta"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func newClient(t *testing.T) *client {
	a := apptest.New(t)
	webserver.Init(a)
	adminapi.Init()
	c := &client{t: t, app: a}

	rec := c.do(http.MethodPost, "/login", `{"username":"admin","password":"visionmark"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	c.decode(rec, &res)
	require.NotEmpty(t, res.Token)
	c.token = res.Token
	return c
}

func (c *client) serve(req *http.Request) *httptest.ResponseRecorder {
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	webserver.Root().ServeHTTP(rec, req)
	return rec
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, webserver.AdminAPIPrefix+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return c.serve(req)
}

type upload struct {
	field, name string
	data        []byte
}

func (c *client) multipart(method, path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(c.t, err)
		_, err = fw.Write(f.data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())
	req := httptest.NewRequest(method, webserver.AdminAPIPrefix+path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return c.serve(req)
}

func (c *client) decode(rec *httptest.ResponseRecorder, v interface{}) *envelope {
	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if v != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, v))
	}
	return &env
}

func pngData(t *testing.T) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	img.Set(2, 2, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (c *client) mediaPath(rel string) string {
	return filepath.Join(c.app.Media().Root(), filepath.FromSlash(rel))
}

func TestLogin(t *testing.T) {
	c := newClient(t)

	c.token = ""
	rec := c.do(http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", c.decode(rec, nil).Code)

	rec = c.do(http.MethodPost, "/login", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", c.decode(rec, nil).Code)

	rec = c.do(http.MethodGet, "/navigation", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNavigation(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodGet, "/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/admin/products")
}

func TestServiceLifecycle(t *testing.T) {
	c := newClient(t)

	rec := c.multipart(http.MethodPost, "/services", map[string]string{
		"name":        "Eye Exam",
		"description": "Full check",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "required", c.decode(rec, nil).Details["image"])

	rec = c.multipart(http.MethodPost, "/services", map[string]string{
		"name":        "Eye Exam",
		"description": "Full check",
	}, upload{"image", "exam.png", pngData(t)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var svc struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Image        string `json:"image"`
		ImagePreview string `json:"image_preview"`
	}
	c.decode(rec, &svc)
	assert.Equal(t, "services/exam.webp", svc.Image)
	assert.Equal(t, "/media/services/exam.webp", svc.ImagePreview)
	assert.FileExists(t, c.mediaPath(svc.Image))

	rec = c.do(http.MethodPut, "/services/"+svc.ID, `{"name":"Comprehensive Eye Exam"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Image       string `json:"image"`
	}
	c.decode(rec, &updated)
	assert.Equal(t, "Comprehensive Eye Exam", updated.Name)
	assert.Equal(t, "Full check", updated.Description)
	assert.Equal(t, svc.Image, updated.Image)

	rec = c.multipart(http.MethodPut, "/services/"+svc.ID, nil, upload{"image", "new.png", pngData(t)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c.decode(rec, &updated)
	assert.Equal(t, "services/new.webp", updated.Image)
	assert.NoFileExists(t, c.mediaPath(svc.Image))

	rec = c.do(http.MethodGet, "/services?q=comprehensive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, c.decode(rec, nil).Meta.Total)

	rec = c.do(http.MethodDelete, "/services/"+svc.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoFileExists(t, c.mediaPath(updated.Image))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/services/"+svc.ID, "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/services/abc", "").Code)
}

func TestBlogSlugs(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/blogs", `{"title":"Caring for Your Lenses","content":"<p>x</p>","is_published":true,"published_at":"2024-03-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var blog struct {
		Slug        string `json:"slug"`
		PublishedAt string `json:"published_at"`
	}
	c.decode(rec, &blog)
	assert.Equal(t, "caring-for-your-lenses", blog.Slug)
	assert.True(t, strings.HasPrefix(blog.PublishedAt, "2024-03-01"))

	rec = c.do(http.MethodPost, "/blogs", `{"title":"Caring for your lenses","content":"again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SLUG_EXISTS", c.decode(rec, nil).Code)

	rec = c.do(http.MethodPost, "/blogs", `{"title":"Bad date","content":"x","published_at":"not a date"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/blogs?is_published=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, c.decode(rec, nil).Meta.Total)
}

func TestNewsDefaults(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/news", `{"title":"Store Opening","content":"Come by"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var news struct {
		NewsType      string `json:"news_type"`
		NewsTypeLabel string `json:"news_type_label"`
		IsPublished   bool   `json:"is_published"`
	}
	c.decode(rec, &news)
	assert.Equal(t, "announcement", news.NewsType)
	assert.Equal(t, "Announcement", news.NewsTypeLabel)
	assert.True(t, news.IsPublished)

	rec = c.do(http.MethodPost, "/news", `{"title":"Odd","content":"x","news_type":"gossip"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "oneof", c.decode(rec, nil).Details["news_type"])

	rec = c.do(http.MethodGet, "/news/types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "announcement")
}

func TestTestimonials(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/testimonials", `{"name":"Asha","comment":"Great service"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tm struct {
		ID          string   `json:"id"`
		Rating      float64  `json:"rating"`
		IsPublished bool     `json:"is_published"`
		Stars       []string `json:"stars"`
	}
	c.decode(rec, &tm)
	assert.Equal(t, 5.0, tm.Rating)
	assert.True(t, tm.IsPublished)
	assert.Len(t, tm.Stars, 5)

	rec = c.do(http.MethodPost, "/testimonials", `{"name":"Ravi","comment":"ok","rating":6}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "lte=5", c.decode(rec, nil).Details["rating"])

	rec = c.do(http.MethodPost, "/testimonials", `{"name":"Ravi","comment":"ok","sort_order":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "gte=0", c.decode(rec, nil).Details["sort_order"])

	rec = c.do(http.MethodPut, "/testimonials/"+tm.ID, `{"is_published":false,"rating":3.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c.decode(rec, &tm)
	assert.False(t, tm.IsPublished)
	assert.Equal(t, 3.5, tm.Rating)

	rec = c.do(http.MethodGet, "/testimonials?is_published=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, c.decode(rec, nil).Meta.Total)
}

func TestSlugCheckFailureIsReported(t *testing.T) {
	for _, tc := range []struct{ path, body string }{
		{"/blogs", `{"title":"Lens care","content":"x"}`},
		{"/news", `{"title":"Opening","content":"x"}`},
		{"/products", `{"name":"Frame","price":"10"}`},
	} {
		t.Run(tc.path, func(t *testing.T) {
			c := newClient(t)
			sqlDB, err := c.app.DB().DB()
			require.NoError(t, err)
			require.NoError(t, sqlDB.Close())

			rec := c.do(http.MethodPost, tc.path, tc.body)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			var res struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, "DATABASE_ERROR", res.Code)
			assert.Equal(t, "Failed to check slug", res.Message)
		})
	}
}
