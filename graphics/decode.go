// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/klauspost/compress/zlib"
)

// inflate decompresses an RFC 1950 (zlib-wrapped DEFLATE) payload. The
// decompressed length must equal expectedSize exactly (section 4.2);
// klauspost/compress/zlib is a drop-in for compress/zlib with a faster
// inflate path, used elsewhere in the teacher's tree for archive
// decompression.
func inflate(payload []byte, expectedSize int) ([]byte, *CommandError) {
	r, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, wrapErr(EINVAL, err, "payload is not valid zlib-compressed data")
	}
	defer r.Close()
	out := make([]byte, 0, expectedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, wrapErr(EINVAL, err, "failed to inflate payload")
	}
	decoded := buf.Bytes()
	if len(decoded) != expectedSize {
		return nil, newErr(EINVAL, "inflated size %d does not match declared data_sz %d", len(decoded), expectedSize)
	}
	return decoded, nil
}

// StdlibPNGDecoder is the default PNGDecoder, implemented with the standard
// library's image/png package. The spec treats PNG decoding as an external
// collaborator reached through a fixed interface (section 6:
// inflate_png_inner); the standard library's decoder is used rather than a
// third-party one (see DESIGN.md).
type StdlibPNGDecoder struct{}

func (StdlibPNGDecoder) Decode(buf []byte) (pixels []byte, width, height int, isOpaque bool, err error) {
	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, 0, 0, false, err
	}
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	isOpaque = isImageOpaque(img)
	if isOpaque {
		pixels = make([]byte, 0, width*height*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				pixels = append(pixels, byte(r>>8), byte(g>>8), byte(bl>>8))
			}
		}
	} else {
		nrgba := toNRGBA(img)
		pixels = nrgba.Pix
	}
	return pixels, width, height, isOpaque, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		b := n.Bounds()
		if b.Min.X == 0 && b.Min.Y == 0 && n.Stride == 4*b.Dx() {
			return n
		}
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return out
}

func isImageOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a != 0xffff {
				return false
			}
		}
	}
	return true
}

// bytesPerPixel returns 3 for opaque (RGB) data, 4 otherwise (RGBA).
func bytesPerPixel(isOpaque bool) int {
	if isOpaque {
		return 3
	}
	return 4
}

// validateDecodedSize checks the decoded pixel-buffer length against the
// expected (opaque?3:4)*width*height, per section 4.2's post-PNG-decode
// check (also reused for raw RGB/RGBA payloads).
func validateDecodedSize(actual int, isOpaque bool, width, height int) *CommandError {
	expected := bytesPerPixel(isOpaque) * width * height
	if actual < expected {
		return newErr(ENODATA, "decoded payload is %d bytes, expected %d", actual, expected)
	}
	if actual != expected {
		return newErr(EINVAL, "decoded payload is %d bytes, expected exactly %d", actual, expected)
	}
	return nil
}
