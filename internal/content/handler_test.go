package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kenobul/portfolio/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *Carousel) {
	t.Helper()
	c, err := Load()
	require.NoError(t, err)
	carousel := NewCarousel(c.Testimonials)
	return NewHandler(c, carousel, logging.New("error")), carousel
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHandler_Profile(t *testing.T) {
	h, _ := newTestHandler(t)
	var p Profile
	assert.Equal(t, http.StatusOK, get(t, h.Routes(), "/content/profile", &p))
	assert.Equal(t, "Full Stack Web & Mobile Developer", p.Headline)
}

func TestHandler_ListPosts(t *testing.T) {
	h, _ := newTestHandler(t)
	var posts []PostSummary
	assert.Equal(t, http.StatusOK, get(t, h.Routes(), "/blogs", &posts))
	require.Len(t, posts, 4)
	assert.Equal(t, "clarity-of-mind-in-ui-development", posts[0].Slug)
	for _, p := range posts {
		assert.GreaterOrEqual(t, p.ReadingTime, 1)
	}
}

func TestHandler_GetPost(t *testing.T) {
	h, _ := newTestHandler(t)
	var view struct {
		Slug        string   `json:"slug"`
		ReadingTime int      `json:"reading_time"`
		Paragraphs  []string `json:"paragraphs"`
	}
	assert.Equal(t, http.StatusOK, get(t, h.Routes(), "/blogs/turning-fear-into-growth", &view))
	assert.Equal(t, "turning-fear-into-growth", view.Slug)
	require.NotEmpty(t, view.Paragraphs)
	assert.Contains(t, view.Paragraphs[1], "<br />")
	assert.Contains(t, view.Paragraphs, "But I began to realize something profound:<br /><strong>Growth does not happen in the absence of fear — it happens in the presence of it.</strong>")
}

func TestHandler_GetPostNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	var body map[string]string
	assert.Equal(t, http.StatusNotFound, get(t, h.Routes(), "/blogs/nope", &body))
	assert.Equal(t, "Post not found", body["message"])
}

func TestHandler_WorksAndServices(t *testing.T) {
	h, _ := newTestHandler(t)

	var works []Work
	assert.Equal(t, http.StatusOK, get(t, h.Routes(), "/works", &works))
	require.Len(t, works, 6)
	assert.Equal(t, "Recp Recipe Sharing App", works[0].Title)

	var services []Service
	assert.Equal(t, http.StatusOK, get(t, h.Routes(), "/services", &services))
	require.Len(t, services, 6)
	assert.Equal(t, "UI/UX Design", services[0].Title)
}

func TestHandler_Testimonials(t *testing.T) {
	h, carousel := newTestHandler(t)
	routes := h.Routes()

	var page TestimonialPage
	assert.Equal(t, http.StatusOK, get(t, routes, "/testimonials", &page))
	assert.Equal(t, 0, page.Index)
	assert.Equal(t, 2, page.Next)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Daniel Mwangi", page.Items[0].Name)
	assert.Equal(t, "Sarah K.", page.Items[1].Name)

	carousel.Advance()
	page = TestimonialPage{}
	assert.Equal(t, http.StatusOK, get(t, routes, "/testimonials", &page))
	assert.Equal(t, 2, page.Index)
	assert.Equal(t, 0, page.Next)
	assert.Equal(t, "Angela Roberts", page.Items[0].Name)

	page = TestimonialPage{}
	assert.Equal(t, http.StatusOK, get(t, routes, "/testimonials?index=0", &page))
	assert.Equal(t, "Daniel Mwangi", page.Items[0].Name)

	assert.Equal(t, http.StatusBadRequest, get(t, routes, "/testimonials?index=9", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, routes, "/testimonials?index=abc", nil))
}
