package imgfilter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wbrown/imgfilter/imageutil"
)

var (
	// ErrUnknownFilter is returned for a step naming no registered filter.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrInvalidStep is returned for a step that cannot be parsed.
	ErrInvalidStep = errors.New("invalid step")
)

// DefaultLevel is used for leveled filters when a step gives no level.
const DefaultLevel = 1

// Step is one filter invocation in a pipeline, written "name" or
// "name:level".
type Step struct {
	Filter Filter
	Level  int
}

func (s Step) String() string {
	if s.Filter.Leveled() {
		return s.Filter.Name() + ":" + strconv.Itoa(s.Level)
	}
	return s.Filter.Name()
}

// Apply runs the step's filter. Errors name the step.
func (s Step) Apply(img *imageutil.PixelBuffer) (*imageutil.PixelBuffer, error) {
	out, err := s.Filter.Apply(img, s.Level)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", s.String(), err)
	}
	return out, nil
}

// ParseStep parses a single step. The level is not range checked here;
// an out of range level fails when the step is applied.
func ParseStep(text string) (Step, error) {
	text = strings.TrimSpace(text)
	name, levelText, hasLevel := strings.Cut(text, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Step{}, fmt.Errorf("%w: %q: missing filter name", ErrInvalidStep, text)
	}

	f, ok := Lookup(name)
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}

	step := Step{Filter: f}
	if !hasLevel {
		if f.Leveled() {
			step.Level = DefaultLevel
		}
		return step, nil
	}
	if !f.Leveled() {
		return Step{}, fmt.Errorf("%w: %q: %s takes no level", ErrInvalidStep, text, f.Name())
	}
	level, err := strconv.Atoi(strings.TrimSpace(levelText))
	if err != nil {
		return Step{}, fmt.Errorf("%w: %q: bad level: %w", ErrInvalidStep, text, err)
	}
	step.Level = level
	return step, nil
}

// ParseSteps parses a comma separated pipeline such as
// "grayscale,blur:2,sharpen:1,edges,invert". An empty string is an empty
// pipeline.
func ParseSteps(text string) ([]Step, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	steps := make([]Step, 0, len(parts))
	for _, part := range parts {
		step, err := ParseStep(part)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// FormatSteps is the inverse of ParseSteps.
func FormatSteps(steps []Step) string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}
