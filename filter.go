package imgfilter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wbrown/imgfilter/imageutil"
)

// Filter is a named image transform that can be referenced from a step.
type Filter interface {
	Name() string
	Description() string
	// Leveled reports whether the filter takes a strength level.
	Leveled() bool
	Apply(img *imageutil.PixelBuffer, level int) (*imageutil.PixelBuffer, error)
}

type funcFilter struct {
	name        string
	description string
	leveled     bool
	apply       func(img *imageutil.PixelBuffer, level int) (*imageutil.PixelBuffer, error)
}

func (f funcFilter) Name() string        { return f.name }
func (f funcFilter) Description() string { return f.description }
func (f funcFilter) Leveled() bool       { return f.leveled }

func (f funcFilter) Apply(img *imageutil.PixelBuffer, level int) (*imageutil.PixelBuffer, error) {
	return f.apply(img, level)
}

// NewFilter wraps a plain function as a Filter.
func NewFilter(name, description string, leveled bool,
	apply func(img *imageutil.PixelBuffer, level int) (*imageutil.PixelBuffer, error)) Filter {
	return funcFilter{name: name, description: description, leveled: leveled, apply: apply}
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Filter)
	aliases    = make(map[string]string)
)

// Register adds a filter under its name. Registering a name twice replaces
// the earlier filter.
func Register(f Filter, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f.Name()] = f
	for _, a := range alias {
		aliases[a] = f.Name()
	}
}

// Lookup finds a filter by name or alias.
func Lookup(name string) (Filter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	f, ok := registry[name]
	return f, ok
}

// Filters returns the registered filter names in sorted order.
func Filters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs the named filter.
func Apply(name string, img *imageutil.PixelBuffer, level int) (*imageutil.PixelBuffer, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	return f.Apply(img, level)
}

func init() {
	Register(NewFilter("invert", "Replace every byte v, alpha included, with 255-v", false,
		func(img *imageutil.PixelBuffer, _ int) (*imageutil.PixelBuffer, error) {
			return imageutil.Invert(img), nil
		}))
	Register(NewFilter("grayscale", "Reduce to one luma channel", false,
		func(img *imageutil.PixelBuffer, _ int) (*imageutil.PixelBuffer, error) {
			return imageutil.Grayscale(img)
		}), "gray")
	Register(NewFilter("blur", "Box blur over a (2*level+1) square", true,
		imageutil.BoxBlur), "boxblur")
	Register(NewFilter("sharpen", "Unsharp mask against a box blur of the given level", true,
		imageutil.Sharpen))
	Register(NewFilter("edges", "Sobel gradient magnitude", false,
		func(img *imageutil.PixelBuffer, _ int) (*imageutil.PixelBuffer, error) {
			return imageutil.EdgeDetect(img), nil
		}), "edge", "sobel")
}
