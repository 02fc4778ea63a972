package nodes

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/nodeflow/pkg/node"
)

// ErrPathOutsideRoot is returned by a confined file node whose path is not
// local to its root.
var ErrPathOutsideRoot = errors.New("path outside the file root")

// LoadImage decodes an image file as grayscale.
type LoadImage struct {
	node.Base
	meta
	root *os.Root
}

// NewLoadImage creates a LoadImage node reading the bundled sample.
func NewLoadImage() node.Node { return NewLoadImageIn(nil) }

// NewLoadImageIn is like [NewLoadImage] but only opens files inside root.
func NewLoadImageIn(root *os.Root) node.Node {
	return &LoadImage{
		Base: node.NewBase(NameLoadImage, nil, []string{"image"}, node.Params{"path": "sample_data/checkerboard.png"}),
		meta: meta{CategoryIO, "Loads an image from a specified file path."},
		root: root,
	}
}

func (l *LoadImage) Execute(context.Context, node.Values) (node.Values, error) {
	path, err := paramString(&l.Base, "path")
	if err != nil {
		return nil, err
	}
	img, err := openImage(l.root, path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	return node.Values{"image": toGray(img)}, nil
}

// SaveImage encodes its input in the format named by the path extension
// (png, jpg, gif, tif or bmp).
type SaveImage struct {
	node.Base
	meta
	root *os.Root
}

// NewSaveImage creates a SaveImage node writing output.png.
func NewSaveImage() node.Node { return NewSaveImageIn(nil) }

// NewSaveImageIn is like [NewSaveImage] but only writes files inside root.
func NewSaveImageIn(root *os.Root) node.Node {
	return &SaveImage{
		Base: node.NewBase(NameSaveImage, []string{"image"}, nil, node.Params{"path": "output.png"}),
		meta: meta{CategoryIO, "Saves an image to a specified file path."},
		root: root,
	}
}

func (s *SaveImage) Execute(_ context.Context, in node.Values) (node.Values, error) {
	img, ok, err := inputImage(in, "image")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("save image: no input image")
	}
	path, err := paramString(&s.Base, "path")
	if err != nil {
		return nil, err
	}
	if err := saveImage(s.root, img, path); err != nil {
		return nil, fmt.Errorf("save image %s: %w", path, err)
	}
	return node.Values{}, nil
}

// openImage decodes the file at path, inside root when root is set.
func openImage(root *os.Root, path string) (image.Image, error) {
	if root == nil {
		return imaging.Open(path, imaging.AutoOrientation(true))
	}
	if !filepath.IsLocal(path) {
		return nil, ErrPathOutsideRoot
	}
	f, err := root.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imaging.Decode(f, imaging.AutoOrientation(true))
}

// saveImage encodes img to path, creating missing parent directories.
func saveImage(root *os.Root, img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return err
	}
	if root == nil {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		return imaging.Save(img, path)
	}

	if !filepath.IsLocal(path) {
		return ErrPathOutsideRoot
	}
	if err := mkdirAllIn(root, filepath.Dir(path)); err != nil {
		return err
	}
	f, err := root.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// mkdirAllIn creates dir and its parents inside root.
func mkdirAllIn(root *os.Root, dir string) error {
	if dir == "." {
		return nil
	}
	if err := mkdirAllIn(root, filepath.Dir(dir)); err != nil {
		return err
	}
	if err := root.Mkdir(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	return nil
}

// Grayscale converts its input to 8-bit gray. Gray input passes through.
type Grayscale struct {
	node.Base
	meta
}

// NewGrayscale creates a Grayscale node.
func NewGrayscale() node.Node {
	return &Grayscale{
		Base: node.NewBase(NameGrayscale, []string{"image"}, []string{"image"}, nil),
		meta: meta{CategoryFilters, "Converts a color image to grayscale."},
	}
}

func (g *Grayscale) Execute(_ context.Context, in node.Values) (node.Values, error) {
	img, ok, err := inputImage(in, "image")
	if err != nil || !ok {
		return node.Values{"image": nil}, err
	}
	return node.Values{"image": toGray(img)}, nil
}

// Blur applies a box filter. Even kernel sizes are rounded up to the next
// odd number.
type Blur struct {
	node.Base
	meta
}

// NewBlur creates a Blur node with a 5x5 kernel.
func NewBlur() node.Node {
	return &Blur{
		Base: node.NewBase(NameBlur, []string{"image"}, []string{"image"}, node.Params{"kernel_size": 5}),
		meta: meta{CategoryFilters, "Applies a blur to an image."},
	}
}

func (b *Blur) Execute(_ context.Context, in node.Values) (node.Values, error) {
	img, ok, err := inputImage(in, "image")
	if err != nil || !ok {
		return node.Values{"image": nil}, err
	}
	k, err := paramFloat(&b.Base, "kernel_size")
	if err != nil {
		return nil, err
	}
	return node.Values{"image": boxBlur(img, oddKernel(int(k)))}, nil
}

// Canny detects edges and outputs a binary gray image.
type Canny struct {
	node.Base
	meta
}

// NewCanny creates a Canny node with thresholds 100 and 200.
func NewCanny() node.Node {
	return &Canny{
		Base: node.NewBase(NameCanny, []string{"image"}, []string{"image"},
			node.Params{"threshold1": 100, "threshold2": 200}),
		meta: meta{CategoryFilters, "Detects edges in an image using the Canny algorithm."},
	}
}

func (c *Canny) Execute(_ context.Context, in node.Values) (node.Values, error) {
	img, ok, err := inputImage(in, "image")
	if err != nil || !ok {
		return node.Values{"image": nil}, err
	}
	t1, err := paramFloat(&c.Base, "threshold1")
	if err != nil {
		return nil, err
	}
	t2, err := paramFloat(&c.Base, "threshold2")
	if err != nil {
		return nil, err
	}
	return node.Values{"image": cannyEdges(toGray(img), t1, t2)}, nil
}
