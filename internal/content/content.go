// Package content loads the static catalog the site is rendered from.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ullas9525/portfolio/internal/projects"
	"github.com/ullas9525/portfolio/internal/reveal"
	"github.com/ullas9525/portfolio/internal/skills"
)

//go:embed site.yaml
var defaultSite []byte

// Profile is the hero and about copy.
type Profile struct {
	Name      string `yaml:"name"`
	Headline  string `yaml:"headline"`
	Intro     string `yaml:"intro"`
	About     string `yaml:"about"`
	Logo      string `yaml:"logo"`
	Photo     string `yaml:"photo"`
	HeroImage string `yaml:"hero_image"`
	Copyright string `yaml:"copyright"`
}

// Section is one revealable block of the page.
type Section struct {
	ID     string         `yaml:"id"`
	Title  string         `yaml:"title"`
	Nav    string         `yaml:"nav,omitempty"`
	Delay  string         `yaml:"delay"`
	Reveal *reveal.Config `yaml:"reveal,omitempty"`
}

// NavLabel is the section's navigation link text, its title unless a shorter
// label is given.
func (s Section) NavLabel() string {
	if s.Nav != "" {
		return s.Nav
	}
	return s.Title
}

// RevealConfig returns the section's animation settings. Sections without an
// explicit reveal block use the defaults with their own delay.
func (s Section) RevealConfig() reveal.Config {
	if s.Reveal != nil {
		return *s.Reveal
	}
	cfg := reveal.DefaultConfig()
	if s.Delay != "" {
		cfg.TransitionDelay = s.Delay
	}
	return cfg
}

// Link is an outbound contact link.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
	Icon  string `yaml:"icon"`
}

// SkillSet is the skills area: the default tab and the ordered categories.
type SkillSet struct {
	Default    string            `yaml:"default"`
	Categories []skills.Category `yaml:"categories"`
}

// Site is everything the page shows.
type Site struct {
	Profile  Profile           `yaml:"profile"`
	Sections []Section         `yaml:"sections"`
	Skills   SkillSet          `yaml:"skills"`
	Projects []projects.Record `yaml:"projects"`
	Links    []Link            `yaml:"links"`
	Email    string            `yaml:"email"`

	SkillCatalog   *skills.Catalog   `yaml:"-"`
	ProjectCatalog *projects.Catalog `yaml:"-"`
}

// Section looks up a section by id.
func (s *Site) Section(id string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// Default returns the embedded site.
func Default() (*Site, error) {
	return Load(bytes.NewReader(defaultSite))
}

// LoadFile reads a site from path, or the embedded one when path is empty.
func LoadFile(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening content: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a site document.
func Load(r io.Reader) (*Site, error) {
	var site Site
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("decoding content: %w", err)
	}
	if err := site.build(); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Site) build() error {
	if s.Profile.Name == "" {
		return errors.New("profile name is required")
	}

	seen := make(map[string]bool, len(s.Sections))
	for i, sec := range s.Sections {
		if sec.ID == "" {
			return fmt.Errorf("section %d has no id", i)
		}
		if seen[sec.ID] {
			return fmt.Errorf("duplicate section %q", sec.ID)
		}
		seen[sec.ID] = true
		if err := sec.RevealConfig().Validate(); err != nil {
			return fmt.Errorf("section %q: %w", sec.ID, err)
		}
	}

	skillCatalog, err := skills.NewCatalog(s.Skills.Categories)
	if err != nil {
		return err
	}
	if !skillCatalog.Has(s.Skills.Default) {
		return fmt.Errorf("default skill tab %q: %w", s.Skills.Default, skills.ErrUnknownCategory)
	}
	s.SkillCatalog = skillCatalog

	projectCatalog, err := projects.NewCatalog(s.Projects)
	if err != nil {
		return err
	}
	s.ProjectCatalog = projectCatalog

	for _, l := range s.Links {
		u, err := url.Parse(l.URL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("link %q: invalid url %q", l.Label, l.URL)
		}
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return fmt.Errorf("invalid email %q", s.Email)
	}
	return nil
}
