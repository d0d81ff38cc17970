package reveal

import (
	"errors"
	"sync"
)

// ErrRegionObserved is returned when a region already has a subscriber.
var ErrRegionObserved = errors.New("region already observed")

// Entry reports how much of a region is currently visible.
type Entry struct {
	Region string
	Ratio  float64
}

// Subscription is a live registration with a Source.
type Subscription interface {
	Close()
}

// Source delivers intersection entries for named regions.
type Source interface {
	Subscribe(region string, fn func(Entry)) (Subscription, error)
}

// Observer tracks whether a single region has been revealed.
type Observer struct {
	region string
	cfg    Config

	mu       sync.Mutex
	revealed bool
	sub      Subscription
	stopped  bool
}

// NewObserver returns an unrevealed observer for region.
func NewObserver(region string, cfg Config) *Observer {
	return &Observer{region: region, cfg: cfg}
}

// Config returns the animation settings of the region.
func (o *Observer) Config() Config { return o.cfg }

// Start subscribes to src. Without a usable source the region simply never
// reveals.
func (o *Observer) Start(src Source) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sub != nil || o.stopped || src == nil {
		return
	}
	sub, err := src.Subscribe(o.region, o.handle)
	if err != nil {
		return
	}
	o.sub = sub
}

// Stop releases the subscription. Entries delivered afterwards are ignored.
func (o *Observer) Stop() {
	o.mu.Lock()
	sub := o.sub
	o.sub = nil
	o.stopped = true
	o.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Revealed reports whether the region has crossed its threshold.
func (o *Observer) Revealed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.revealed
}

// Style returns the current style of the region.
func (o *Observer) Style() Style {
	return Animate(o.Revealed(), o.cfg)
}

func (o *Observer) handle(e Entry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped || e.Region != o.region {
		return
	}
	if e.Ratio >= o.cfg.Threshold {
		o.revealed = true
	}
}

// Hub is an in-process Source. Entries are published by whatever observes the
// real viewport, here the HTTP handlers receiving HTMX intersect triggers.
type Hub struct {
	mu   sync.Mutex
	subs map[string]*hubSub
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*hubSub)}
}

// Subscribe registers fn for region. A region has at most one subscriber.
func (h *Hub) Subscribe(region string, fn func(Entry)) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[region]; ok {
		return nil, ErrRegionObserved
	}
	s := &hubSub{hub: h, region: region, fn: fn}
	h.subs[region] = s
	return s, nil
}

// Publish delivers e to the subscriber of e.Region. It reports whether
// anyone was listening.
func (h *Hub) Publish(e Entry) bool {
	h.mu.Lock()
	s, ok := h.subs[e.Region]
	h.mu.Unlock()
	if !ok {
		return false
	}
	s.fn(e)
	return true
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

type hubSub struct {
	hub    *Hub
	region string
	fn     func(Entry)
	once   sync.Once
}

func (s *hubSub) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if s.hub.subs[s.region] == s {
			delete(s.hub.subs, s.region)
		}
	})
}
