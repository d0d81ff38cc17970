package reveal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimateBlurDisabled(t *testing.T) {
	for _, strength := range []float64{0, 4, 12.5} {
		cfg := DefaultConfig()
		cfg.BlurStrength = strength
		assert.Zero(t, Animate(false, cfg).Blur)
		assert.Zero(t, Animate(true, cfg).Blur)
	}
}

func TestAnimateStates(t *testing.T) {
	cfg := Config{
		BaseOpacity:        0.2,
		EnableBlur:         true,
		BaseRotation:       -5,
		BlurStrength:       8,
		TransitionDuration: "0.7s",
		TransitionDelay:    "0.3s",
		Threshold:          0.1,
	}

	hidden := Animate(false, cfg)
	assert.Equal(t, Style{Opacity: 0.2, Blur: 8, Rotation: -5, OffsetY: 20, Duration: "0.7s", Delay: "0.3s"}, hidden)

	shown := Animate(true, cfg)
	assert.Equal(t, Style{Opacity: 1, Duration: "0.7s", Delay: "0.3s"}, shown)
}

func TestStyleCSS(t *testing.T) {
	css := Animate(false, DefaultConfig()).CSS()
	assert.Contains(t, css, "opacity: 0;")
	assert.Contains(t, css, "filter: none;")
	assert.Contains(t, css, "transform: rotate(0deg) translateY(20px);")
	assert.Contains(t, css, "opacity 0.7s ease 0s, filter 0.7s ease 0s, transform 0.7s ease 0s")

	cfg := DefaultConfig()
	cfg.EnableBlur = true
	cfg.BlurStrength = 4
	assert.Contains(t, Animate(false, cfg).CSS(), "filter: blur(4px);")
	assert.Contains(t, Animate(true, cfg).CSS(), "translateY(0px)")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := []func(*Config){
		func(c *Config) { c.Threshold = 1.5 },
		func(c *Config) { c.Threshold = -0.1 },
		func(c *Config) { c.BaseOpacity = 2 },
		func(c *Config) { c.BlurStrength = -1 },
		func(c *Config) { c.TransitionDuration = "fast" },
		func(c *Config) { c.TransitionDelay = "" },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
	}

	cfg := DefaultConfig()
	cfg.TransitionDelay = "250ms"
	assert.NoError(t, cfg.Validate())
}

func TestObserverRevealsOnce(t *testing.T) {
	hub := NewHub()
	obs := NewObserver("about", DefaultConfig())
	obs.Start(hub)

	hub.Publish(Entry{Region: "about", Ratio: 0.05})
	assert.False(t, obs.Revealed())

	hub.Publish(Entry{Region: "about", Ratio: 0.1})
	assert.True(t, obs.Revealed())

	for _, ratio := range []float64{0, 0.02, 1, 0} {
		hub.Publish(Entry{Region: "about", Ratio: ratio})
		assert.True(t, obs.Revealed())
	}
}

func TestObserverThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		ratio     float64
		revealed  bool
	}{
		{"zero threshold reveals at zero", 0, 0, true},
		{"zero threshold reveals partial", 0, 0.3, true},
		{"default below", 0.1, 0.099, false},
		{"default exact", 0.1, 0.1, true},
		{"full threshold almost", 1, 0.999, false},
		{"full threshold exact", 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Threshold = tt.threshold
			require.NoError(t, cfg.Validate())

			hub := NewHub()
			obs := NewObserver("about", cfg)
			obs.Start(hub)
			hub.Publish(Entry{Region: "about", Ratio: tt.ratio})
			assert.Equal(t, tt.revealed, obs.Revealed())
		})
	}
}

func TestObserverNeverScrolledIntoView(t *testing.T) {
	hub := NewHub()
	obs := NewObserver("contact", DefaultConfig())
	obs.Start(hub)

	hub.Publish(Entry{Region: "hero", Ratio: 1})

	assert.False(t, obs.Revealed())
	assert.Equal(t, 0.0, obs.Style().Opacity)
}

func TestObserverStopReleasesSubscription(t *testing.T) {
	hub := NewHub()
	obs := NewObserver("skills", DefaultConfig())
	obs.Start(hub)
	require.Equal(t, 1, hub.Len())

	obs.Stop()
	obs.Stop()
	assert.Equal(t, 0, hub.Len())

	assert.False(t, hub.Publish(Entry{Region: "skills", Ratio: 1}))
	assert.False(t, obs.Revealed())

	// A stopped observer cannot be restarted.
	obs.Start(hub)
	assert.Equal(t, 0, hub.Len())
}

func TestObserverWithoutSource(t *testing.T) {
	obs := NewObserver("hero", DefaultConfig())
	obs.Start(nil)
	obs.Stop()
	assert.False(t, obs.Revealed())
}

type failingSource struct{}

func (failingSource) Subscribe(string, func(Entry)) (Subscription, error) {
	return nil, errors.New("intersection observation unsupported")
}

func TestObserverDegradesWhenSubscribeFails(t *testing.T) {
	obs := NewObserver("hero", DefaultConfig())
	obs.Start(failingSource{})
	assert.False(t, obs.Revealed())
	obs.Stop()
}

func TestHubRejectsSecondSubscriber(t *testing.T) {
	hub := NewHub()
	first := NewObserver("projects", DefaultConfig())
	first.Start(hub)

	_, err := hub.Subscribe("projects", func(Entry) {})
	assert.ErrorIs(t, err, ErrRegionObserved)

	second := NewObserver("projects", DefaultConfig())
	second.Start(hub)
	hub.Publish(Entry{Region: "projects", Ratio: 1})
	assert.True(t, first.Revealed())
	assert.False(t, second.Revealed())
}

func TestHubStaleCloseKeepsNewSubscriber(t *testing.T) {
	hub := NewHub()
	old := NewObserver("resume", DefaultConfig())
	old.Start(hub)
	old.Stop()

	fresh := NewObserver("resume", DefaultConfig())
	fresh.Start(hub)
	old.Stop()

	hub.Publish(Entry{Region: "resume", Ratio: 0.5})
	assert.True(t, fresh.Revealed())
}
