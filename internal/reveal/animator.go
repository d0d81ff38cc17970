// Package reveal implements the scroll-triggered reveal used by every page
// section: an observer that flips once when enough of a region is visible, and
// the style that region takes before and after.
package reveal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Offset is the vertical slide, in pixels, of a section that is not yet revealed.
const Offset = 20

// Easing is shared by every animated property.
const Easing = "ease"

var durationPattern = regexp.MustCompile(`^\d+(\.\d+)?m?s$`)

// Config describes how a single section animates in. It is fixed for the
// lifetime of a mounted section.
type Config struct {
	BaseOpacity        float64 `yaml:"base_opacity"`
	EnableBlur         bool    `yaml:"enable_blur"`
	BaseRotation       float64 `yaml:"base_rotation"`
	BlurStrength       float64 `yaml:"blur_strength"`
	TransitionDuration string  `yaml:"transition_duration"`
	TransitionDelay    string  `yaml:"transition_delay"`
	Threshold          float64 `yaml:"threshold"`
}

// DefaultConfig returns the settings every section starts from.
func DefaultConfig() Config {
	return Config{
		BaseOpacity:        0,
		TransitionDuration: "0.7s",
		TransitionDelay:    "0s",
		Threshold:          0.1,
	}
}

// Validate reports the first setting that cannot be rendered.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", c.Threshold)
	}
	if c.BaseOpacity < 0 || c.BaseOpacity > 1 {
		return fmt.Errorf("base opacity %v outside [0,1]", c.BaseOpacity)
	}
	if c.BlurStrength < 0 {
		return fmt.Errorf("blur strength %v is negative", c.BlurStrength)
	}
	if !durationPattern.MatchString(c.TransitionDuration) {
		return fmt.Errorf("invalid transition duration %q", c.TransitionDuration)
	}
	if !durationPattern.MatchString(c.TransitionDelay) {
		return fmt.Errorf("invalid transition delay %q", c.TransitionDelay)
	}
	return nil
}

// Style is the visual state of a section at one point in time.
type Style struct {
	Opacity  float64
	Blur     float64
	Rotation float64
	OffsetY  float64
	Duration string
	Delay    string
}

// Animate computes the style of a section given whether it has been revealed.
func Animate(revealed bool, cfg Config) Style {
	s := Style{Duration: cfg.TransitionDuration, Delay: cfg.TransitionDelay}
	if revealed {
		s.Opacity = 1
		return s
	}
	s.Opacity = cfg.BaseOpacity
	if cfg.EnableBlur {
		s.Blur = cfg.BlurStrength
	}
	s.Rotation = cfg.BaseRotation
	s.OffsetY = Offset
	return s
}

// CSS renders the style as an inline style attribute value.
func (s Style) CSS() string {
	filter := "none"
	if s.Blur > 0 {
		filter = "blur(" + num(s.Blur) + "px)"
	}

	timing := s.Duration + " " + Easing + " " + s.Delay
	transitions := make([]string, 0, 3)
	for _, prop := range []string{"opacity", "filter", "transform"} {
		transitions = append(transitions, prop+" "+timing)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "opacity: %s; ", num(s.Opacity))
	fmt.Fprintf(&b, "filter: %s; ", filter)
	fmt.Fprintf(&b, "transform: rotate(%sdeg) translateY(%spx); ", num(s.Rotation), num(s.OffsetY))
	fmt.Fprintf(&b, "transition: %s; ", strings.Join(transitions, ", "))
	b.WriteString("will-change: opacity, filter, transform;")
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
