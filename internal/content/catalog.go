// Package content serves the read-only portfolio content: profile, blog posts,
// projects, services and testimonials.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var catalogYAML []byte

// Stat is a headline number on the about page.
type Stat struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Experience is one entry in the work history.
type Experience struct {
	Company string `yaml:"company" json:"company"`
	Role    string `yaml:"role" json:"role"`
	Years   string `yaml:"years" json:"years"`
}

// Profile describes the site owner.
type Profile struct {
	Name       string       `yaml:"name" json:"name"`
	Headline   string       `yaml:"headline" json:"headline"`
	Intro      string       `yaml:"intro" json:"intro"`
	Bio        string       `yaml:"bio" json:"bio"`
	Email      string       `yaml:"email" json:"email"`
	Stats      []Stat       `yaml:"stats" json:"stats"`
	Expertise  []string     `yaml:"expertise" json:"expertise"`
	Experience []Experience `yaml:"experience" json:"experience"`
}

// Post is a blog post. Content uses blank lines between paragraphs and
// **double asterisks** for bold.
type Post struct {
	Slug    string `yaml:"slug" json:"slug"`
	Title   string `yaml:"title" json:"title"`
	Author  string `yaml:"author" json:"author"`
	Image   string `yaml:"image" json:"image"`
	Content string `yaml:"content" json:"-"`
}

// Work is a portfolio project.
type Work struct {
	Title    string `yaml:"title" json:"title"`
	Category string `yaml:"category" json:"category"`
	Date     string `yaml:"date" json:"date"`
	Image    string `yaml:"image" json:"image"`
	URL      string `yaml:"url" json:"url"`
}

// Service is an offered service.
type Service struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Testimonial is a client quote.
type Testimonial struct {
	Quote string `yaml:"quote" json:"quote"`
	Name  string `yaml:"name" json:"name"`
	Role  string `yaml:"role" json:"role"`
	Image string `yaml:"image" json:"image"`
}

// Catalog is the immutable content table.
type Catalog struct {
	Profile      Profile       `yaml:"profile"`
	Posts        []Post        `yaml:"posts"`
	Works        []Work        `yaml:"works"`
	Services     []Service     `yaml:"services"`
	Testimonials []Testimonial `yaml:"testimonials"`

	bySlug map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a YAML catalog and indexes posts by slug. Slugs must be
// present and unique.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("content: decode catalog: %w", err)
	}
	c.bySlug = make(map[string]int, len(c.Posts))
	for i, p := range c.Posts {
		if p.Slug == "" {
			return nil, fmt.Errorf("content: post %d has no slug", i)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("content: duplicate post slug %q", p.Slug)
		}
		c.bySlug[p.Slug] = i
	}
	return &c, nil
}

// PostBySlug returns the post with the given slug.
func (c *Catalog) PostBySlug(slug string) (Post, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Post{}, false
	}
	return c.Posts[i], true
}
