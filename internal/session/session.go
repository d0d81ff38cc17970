// Package session keeps the per-browser UI state of the page: one reveal
// observer per section, the skills tab, the project modal and the resume notice.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ullas9525/portfolio/internal/content"
	"github.com/ullas9525/portfolio/internal/notice"
	"github.com/ullas9525/portfolio/internal/projects"
	"github.com/ullas9525/portfolio/internal/reveal"
	"github.com/ullas9525/portfolio/internal/skills"
)

// ErrUnknownSection is returned for a section id the site does not have.
var ErrUnknownSection = errors.New("unknown section")

// DefaultTTL is how long an idle visitor is kept.
const DefaultTTL = 30 * time.Minute

// Options tune a Store.
type Options struct {
	TTL         time.Duration
	Clock       notice.Clock
	NoticeDelay time.Duration
	Now         func() time.Time
}

// Visitor is the UI state of one browser.
type Visitor struct {
	ID     string
	Skills *skills.Selector
	Modal  *projects.Modal
	Notice *notice.Controller

	hub       *reveal.Hub
	observers map[string]*reveal.Observer

	mu       sync.Mutex
	lastSeen time.Time
}

// Reveal returns the observer of section.
func (v *Visitor) Reveal(section string) (*reveal.Observer, bool) {
	o, ok := v.observers[section]
	return o, ok
}

// Intersect reports that ratio of section is visible.
func (v *Visitor) Intersect(section string, ratio float64) error {
	if _, ok := v.observers[section]; !ok {
		return fmt.Errorf("intersect %q: %w", section, ErrUnknownSection)
	}
	v.hub.Publish(reveal.Entry{Region: section, Ratio: ratio})
	return nil
}

// LastSeen returns when the visitor was last touched.
func (v *Visitor) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

// unmount releases every subscription and the pending notice reset.
func (v *Visitor) unmount() {
	for _, o := range v.observers {
		o.Stop()
	}
	v.Notice.Close()
}

// Store holds visitors by session id.
type Store struct {
	site *content.Site
	opts Options

	mu       sync.Mutex
	visitors map[string]*Visitor
}

// New returns an empty store for site.
func New(site *content.Site, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Clock == nil {
		opts.Clock = notice.RealClock{}
	}
	if opts.NoticeDelay <= 0 {
		opts.NoticeDelay = notice.DefaultDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{site: site, opts: opts, visitors: make(map[string]*Visitor)}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Mount gives id a freshly mounted page. Any previous state for id is
// unmounted first, so a reload starts from unrevealed sections, the default
// tab, a closed modal and a lowered notice.
func (s *Store) Mount(id string) (*Visitor, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	v, err := s.newVisitor(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.visitors[id]
	s.visitors[id] = v
	s.mu.Unlock()

	if old != nil {
		old.unmount()
	}
	return v, nil
}

// Get returns the visitor for id, mounting one if the session is unknown or
// has expired.
func (s *Store) Get(id string) (*Visitor, error) {
	s.mu.Lock()
	v, ok := s.visitors[id]
	s.mu.Unlock()
	if !ok {
		return s.Mount(id)
	}
	v.touch(s.opts.Now())
	return v, nil
}

// Len returns the number of mounted visitors.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// Sweep unmounts visitors idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.opts.Now().Add(-s.opts.TTL)

	s.mu.Lock()
	var stale []*Visitor
	for id, v := range s.visitors {
		if v.LastSeen().Before(cutoff) {
			stale = append(stale, v)
			delete(s.visitors, id)
		}
	}
	s.mu.Unlock()

	for _, v := range stale {
		v.unmount()
	}
	return len(stale)
}

// Run sweeps every interval until stop is closed.
func (s *Store) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}

// Close unmounts every visitor.
func (s *Store) Close() {
	s.mu.Lock()
	visitors := s.visitors
	s.visitors = make(map[string]*Visitor)
	s.mu.Unlock()

	for _, v := range visitors {
		v.unmount()
	}
}

func (s *Store) newVisitor(id string) (*Visitor, error) {
	selector, err := skills.NewSelector(s.site.SkillCatalog, s.site.Skills.Default)
	if err != nil {
		return nil, err
	}
	v := &Visitor{
		ID:        id,
		Skills:    selector,
		Modal:     projects.NewModal(),
		Notice:    notice.New(s.opts.Clock, s.opts.NoticeDelay),
		hub:       reveal.NewHub(),
		observers: make(map[string]*reveal.Observer, len(s.site.Sections)),
		lastSeen:  s.opts.Now(),
	}
	for _, sec := range s.site.Sections {
		o := reveal.NewObserver(sec.ID, sec.RevealConfig())
		o.Start(v.hub)
		v.observers[sec.ID] = o
	}
	return v, nil
}
