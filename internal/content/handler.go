package content

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kenobul/portfolio/pkg/logging"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	catalog  *Catalog
	carousel *Carousel
	logger   *logging.Logger
}

// NewHandler creates a content handler. carousel may be nil, in which case a
// fixed carousel over the catalog's testimonials is used.
func NewHandler(catalog *Catalog, carousel *Carousel, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if carousel == nil {
		carousel = NewCarousel(catalog.Testimonials)
	}
	return &Handler{catalog: catalog, carousel: carousel, logger: logger}
}

// PostSummary is a blog post as listed on the index page.
type PostSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	ReadingTime int    `json:"reading_time"`
}

// PostView is a single rendered blog post.
type PostView struct {
	PostSummary
	Paragraphs []template.HTML `json:"paragraphs"`
}

// TestimonialPage is the carousel window served to the about page.
type TestimonialPage struct {
	Index int           `json:"index"`
	Next  int           `json:"next"`
	Total int           `json:"total"`
	Items []Testimonial `json:"items"`
}

// Routes mounts the content endpoints under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/content/profile", h.GetProfile)
	r.Get("/blogs", h.ListPosts)
	r.Get("/blogs/{slug}", h.GetPost)
	r.Get("/works", h.ListWorks)
	r.Get("/services", h.ListServices)
	r.Get("/testimonials", h.GetTestimonials)
	return r
}

// GetProfile returns the owner profile.
// GET /api/content/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Profile)
}

// ListPosts returns every post without its body.
// GET /api/blogs
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	out := make([]PostSummary, 0, len(h.catalog.Posts))
	for _, p := range h.catalog.Posts {
		out = append(out, summarize(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPost returns one post rendered as HTML paragraphs.
// GET /api/blogs/{slug}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, ok := h.catalog.PostBySlug(slug)
	if !ok {
		h.logger.Debug("content: post not found", "slug", slug)
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Post not found"})
		return
	}
	paragraphs := Paragraphs(post.Content)
	view := PostView{
		PostSummary: summarize(post),
		Paragraphs:  make([]template.HTML, 0, len(paragraphs)),
	}
	for _, p := range paragraphs {
		view.Paragraphs = append(view.Paragraphs, FormatParagraph(p))
	}
	writeJSON(w, http.StatusOK, view)
}

// ListWorks returns the projects.
// GET /api/works
func (h *Handler) ListWorks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Works)
}

// ListServices returns the offered services.
// GET /api/services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Services)
}

// GetTestimonials returns the current carousel window, or the window at
// ?index= when given.
// GET /api/testimonials
func (h *Handler) GetTestimonials(w http.ResponseWriter, r *http.Request) {
	index := h.carousel.Index()
	if raw := r.URL.Query().Get("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil || i < 0 || (i >= h.carousel.Len() && h.carousel.Len() > 0) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid index"})
			return
		}
		index = i
	}
	items := h.carousel.Window(index)
	if items == nil {
		items = []Testimonial{}
	}
	writeJSON(w, http.StatusOK, TestimonialPage{
		Index: index,
		Next:  NextIndex(index, h.carousel.Len()),
		Total: h.carousel.Len(),
		Items: items,
	})
}

func summarize(p Post) PostSummary {
	return PostSummary{
		Slug:        p.Slug,
		Title:       p.Title,
		Author:      p.Author,
		Image:       p.Image,
		ReadingTime: ReadingTime(p.Content),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
