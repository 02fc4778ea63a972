package nodes

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/matzehuels/nodeflow/pkg/node"
)

// Registry names of the built-in nodes.
const (
	NameConstant  = "Constant"
	NameAdd       = "Add"
	NameScale     = "Scale"
	NameFail      = "Fail"
	NameLoadImage = "Load Image"
	NameSaveImage = "Save Image"
	NameGrayscale = "Grayscale"
	NameBlur      = "Blur"
	NameCanny     = "Canny Edge"
	NameDisplay   = "Display"
)

// Categories used by the built-ins.
const (
	CategoryMath    = "Math"
	CategoryIO      = "IO"
	CategoryFilters = "Filters"
	CategoryDisplay = "Display"
	CategoryDebug   = "Debug"
)

// builtins lists every built-in in catalogue order. rooted is set for the
// nodes that touch the file system.
var builtins = []struct {
	name   string
	ctor   node.Constructor
	rooted func(*os.Root) node.Node
}{
	{NameConstant, NewConstant, nil},
	{NameAdd, NewAdd, nil},
	{NameScale, NewScale, nil},
	{NameFail, NewFail, nil},
	{NameLoadImage, NewLoadImage, NewLoadImageIn},
	{NameSaveImage, NewSaveImage, NewSaveImageIn},
	{NameGrayscale, NewGrayscale, nil},
	{NameBlur, NewBlur, nil},
	{NameCanny, NewCanny, nil},
	{NameDisplay, NewDisplay, nil},
}

// Option configures [Register].
type Option func(*options)

type options struct {
	noFiles bool
	root    *os.Root
}

// WithoutFiles leaves out the nodes that read or write files.
func WithoutFiles() Option {
	return func(o *options) { o.noFiles = true }
}

// WithFileRoot confines the file nodes to root. Their paths must be local
// (see [filepath.IsLocal]) and are opened inside root. A nil root leaves
// the nodes unconfined.
func WithFileRoot(root *os.Root) Option {
	return func(o *options) { o.root = root }
}

// Register adds the built-in node types to reg. Conflicting names are
// reported together; the remaining built-ins are still registered.
//
// Without options the file nodes resolve paths against the working
// directory. Anything that runs documents from untrusted callers should
// pass [WithoutFiles] or [WithFileRoot].
func Register(reg *node.Registry, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var errs []error
	for _, b := range builtins {
		ctor := b.ctor
		if b.rooted != nil {
			if o.noFiles {
				continue
			}
			if root := o.root; root != nil {
				rooted := b.rooted
				ctor = func() node.Node { return rooted(root) }
			}
		}
		if err := reg.Register(b.name, ctor); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultRegistry returns a new registry populated with the built-ins.
func DefaultRegistry(opts ...Option) *node.Registry {
	reg := node.NewRegistry()
	if err := Register(reg, opts...); err != nil {
		panic(err)
	}
	return reg
}

// Info describes a registered node type.
type Info struct {
	Name        string      `json:"name"`
	Category    string      `json:"category,omitempty"`
	Description string      `json:"description,omitempty"`
	Inputs      []string    `json:"inputs"`
	Outputs     []string    `json:"outputs"`
	Params      node.Params `json:"parameters"`
}

// Catalog instantiates every type in reg once and reports its ports and
// default parameters, sorted by name.
func Catalog(reg *node.Registry) []Info {
	names := reg.Names()
	out := make([]Info, 0, len(names))
	for _, name := range names {
		n, ok := reg.New(name)
		if !ok {
			continue
		}
		info := Info{
			Name:    name,
			Inputs:  n.Inputs(),
			Outputs: n.Outputs(),
			Params:  n.Params(),
		}
		if info.Inputs == nil {
			info.Inputs = []string{}
		}
		if info.Outputs == nil {
			info.Outputs = []string{}
		}
		if d, ok := n.(node.Describer); ok {
			info.Category = d.Category()
			info.Description = d.Description()
		}
		out = append(out, info)
	}
	return out
}

// ImageSummary stands in for an image when published values are reported
// as text or JSON.
type ImageSummary struct {
	Kind   string `json:"kind"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s ImageSummary) String() string {
	return fmt.Sprintf("%s image %dx%d", s.Kind, s.Width, s.Height)
}

// Summarize returns v unchanged unless it is an image, which is replaced by
// its [ImageSummary].
func Summarize(v any) any {
	img, ok := v.(image.Image)
	if !ok || img == nil {
		return v
	}
	b := img.Bounds()
	return ImageSummary{Kind: imageKind(img), Width: b.Dx(), Height: b.Dy()}
}

func imageKind(img image.Image) string {
	switch img.(type) {
	case *image.Gray:
		return "gray"
	case *image.RGBA:
		return "rgba"
	case *image.NRGBA:
		return "nrgba"
	case *image.Paletted:
		return "paletted"
	case *image.YCbCr:
		return "ycbcr"
	default:
		return "image"
	}
}

// meta supplies catalogue metadata to the built-ins.
type meta struct {
	category    string
	description string
}

func (m meta) Category() string    { return m.category }
func (m meta) Description() string { return m.description }

// paramFloat reads a numeric parameter.
func paramFloat(b *node.Base, name string) (float64, error) {
	v, ok := b.ParamValue(name)
	if !ok {
		return 0, &node.ParameterNotFoundError{Node: b.Name(), Param: name}
	}
	f, ok := node.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("parameter %q: expected a number, got %T", name, v)
	}
	return f, nil
}

// paramString reads a string parameter.
func paramString(b *node.Base, name string) (string, error) {
	v, ok := b.ParamValue(name)
	if !ok {
		return "", &node.ParameterNotFoundError{Node: b.Name(), Param: name}
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q: expected a string, got %T", name, v)
	}
	return s, nil
}

// inputImage returns the image bound to port. A missing or nil input
// reports false; any other type is an error.
func inputImage(in node.Values, port string) (image.Image, bool, error) {
	v, ok := in.Get(port)
	if !ok || v == nil {
		return nil, false, nil
	}
	img, ok := v.(image.Image)
	if !ok {
		return nil, false, fmt.Errorf("input %q: expected an image, got %T", port, v)
	}
	return img, true, nil
}
