// Package composite stacks frame layers with straight-alpha "over" blending.
package composite

import (
	"fmt"
	"image"
	"image/color"
)

// Stack draws layers bottom-to-top over base into a new frame of the given
// bounds. A nil base starts from a transparent frame; nil layers are skipped.
func Stack(base image.Image, layers []image.Image, bounds image.Rectangle) (*image.NRGBA, error) {
	if bounds.Empty() {
		return nil, fmt.Errorf("frame bounds must not be empty")
	}

	dst := image.NewNRGBA(bounds)
	if base != nil {
		if base.Bounds() != bounds {
			return nil, fmt.Errorf("base bounds %v do not match expected %v", base.Bounds(), bounds)
		}
		rows(base, bounds, func(y int, s []uint8) {
			copy(dst.Pix[dst.PixOffset(bounds.Min.X, y):], s)
		})
	}

	for i, img := range layers {
		if img == nil {
			continue
		}
		if img.Bounds() != bounds {
			return nil, fmt.Errorf("layer %d bounds %v do not match expected %v", i, img.Bounds(), bounds)
		}
		over(dst, img, bounds)
	}
	return dst, nil
}

// Flatten blends img over an opaque background color, for sinks without an
// alpha channel.
func Flatten(img image.Image, bg color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = bg.R
		dst.Pix[i+1] = bg.G
		dst.Pix[i+2] = bg.B
		dst.Pix[i+3] = 255
	}
	over(dst, img, b)
	return dst
}

// over blends src onto dst inside r.
func over(dst *image.NRGBA, src image.Image, r image.Rectangle) {
	r = r.Intersect(dst.Bounds()).Intersect(src.Bounds())
	rows(src, r, func(y int, s []uint8) {
		d := dst.Pix[dst.PixOffset(r.Min.X, y):][:len(s)]
		for i := 0; i < len(s); i += 4 {
			blendPixel(d[i:i+4:i+4], s[i:i+4:i+4])
		}
	})
}

// rows calls fn with the straight-alpha RGBA bytes of each row of src
// inside r. Rendered layers are *image.NRGBA and are read straight from
// their pixel buffer; anything else is converted into a scratch row.
func rows(src image.Image, r image.Rectangle, fn func(y int, row []uint8)) {
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	n := r.Dx() * 4

	if img, ok := src.(*image.NRGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			fn(y, img.Pix[img.PixOffset(r.Min.X, y):][:n])
		}
		return
	}

	row := make([]uint8, n)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			i := (x - r.Min.X) * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
		fn(y, row)
	}
}

// blendPixel puts straight-alpha s over d in integer arithmetic, rounding
// half up.
func blendPixel(d, s []uint8) {
	sa := uint32(s[3])
	switch sa {
	case 0:
		return
	case 255:
		copy(d, s)
		return
	}

	da := uint32(d[3])
	sw := sa * 255
	dw := da * (255 - sa)
	wa := sw + dw // output alpha scaled by 255²
	if wa == 0 {
		d[0], d[1], d[2], d[3] = 0, 0, 0, 0
		return
	}

	for c := 0; c < 3; c++ {
		num := uint32(s[c])*sw + uint32(d[c])*dw
		d[c] = uint8((2*num + wa) / (2 * wa))
	}
	d[3] = uint8((2*wa + 255) / 510)
}
