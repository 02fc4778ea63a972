package nodes

import (
	"image"
	"image/draw"
)

// toGray converts img to a zero-origin *image.Gray. Zero-origin gray
// images are returned as is.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// oddKernel rounds k up to an odd size of at least 1.
func oddKernel(k int) int {
	if k < 1 {
		return 1
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}

// boxBlur blurs img with a k by k box filter, replicating edge pixels.
// Gray input yields *image.Gray, anything else *image.RGBA.
func boxBlur(img image.Image, k int) image.Image {
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		src := toGray(g)
		out := image.NewGray(rect)
		copy(out.Pix, blurPlane(src.Pix, src.Stride, rect.Dx(), rect.Dy(), 1, k))
		return out
	}
	src := image.NewRGBA(rect)
	draw.Draw(src, rect, img, b.Min, draw.Src)
	out := image.NewRGBA(rect)
	copy(out.Pix, blurPlane(src.Pix, src.Stride, rect.Dx(), rect.Dy(), 4, k))
	return out
}

// blurPlane runs a separable box filter over interleaved channels.
func blurPlane(pix []uint8, stride, w, h, channels, k int) []uint8 {
	if k <= 1 || w == 0 || h == 0 {
		out := make([]uint8, len(pix))
		copy(out, pix)
		return out
	}
	r := k / 2
	tmp := make([]uint8, len(pix))
	out := make([]uint8, len(pix))

	for y := range h {
		row := y * stride
		for x := range w {
			for c := range channels {
				sum := 0
				for d := -r; d <= r; d++ {
					sum += int(pix[row+clamp(x+d, w)*channels+c])
				}
				tmp[row+x*channels+c] = uint8((sum + r) / k)
			}
		}
	}
	for y := range h {
		for x := range w {
			for c := range channels {
				sum := 0
				for d := -r; d <= r; d++ {
					sum += int(tmp[clamp(y+d, h)*stride+x*channels+c])
				}
				out[y*stride+x*channels+c] = uint8((sum + r) / k)
			}
		}
	}
	return out
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// tan(22.5°) and tan(67.5°), used to quantize gradient directions.
const (
	tan22 = 0.41421356
	tan67 = 2.41421356
)

// cannyEdges detects edges with a 3x3 Sobel operator, L1 gradient
// magnitude, non-maximum suppression and hysteresis thresholding. The
// thresholds may be given in either order.
func cannyEdges(src *image.Gray, t1, t2 float64) *image.Gray {
	low, high := min(t1, t2), max(t1, t2)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	at := func(x, y int) int { return int(src.Pix[clamp(y, h)*src.Stride+clamp(x, w)]) }
	gx := make([]int, w*h)
	gy := make([]int, w*h)
	mag := make([]int, w*h)
	for y := range h {
		for x := range w {
			dx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			dy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*w + x
			gx[i], gy[i], mag[i] = dx, dy, abs(dx)+abs(dy)
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// 0 = suppressed, 1 = weak, 2 = strong.
	class := make([]uint8, w*h)
	var stack []int
	for y := range h {
		for x := range w {
			i := y*w + x
			m := mag[i]
			if float64(m) <= low {
				continue
			}
			ax, ay := float64(abs(gx[i])), float64(abs(gy[i]))
			var n1, n2 int
			switch {
			case ay <= ax*tan22:
				n1, n2 = magAt(x-1, y), magAt(x+1, y)
			case ay >= ax*tan67:
				n1, n2 = magAt(x, y-1), magAt(x, y+1)
			case (gx[i] < 0) != (gy[i] < 0):
				n1, n2 = magAt(x-1, y+1), magAt(x+1, y-1)
			default:
				n1, n2 = magAt(x-1, y-1), magAt(x+1, y+1)
			}
			if m < n1 || m < n2 {
				continue
			}
			if float64(m) > high {
				class[i] = 2
				stack = append(stack, i)
			} else {
				class[i] = 1
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.Pix[(i/w)*out.Stride+i%w] = 0xff
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if j := ny*w + nx; class[j] == 1 {
					class[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
