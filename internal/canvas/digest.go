package canvas

import (
	"encoding/binary"
	"encoding/hex"
	"image"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a hex encoded BLAKE2b-256 hash of the size and pixels of
// img. Two bitmaps have the same digest exactly when they are pixel-identical.
func Digest(img *image.RGBA) string {
	if img == nil {
		return ""
	}
	h, _ := blake2b.New256(nil)
	b := img.Bounds()

	var size [8]byte
	binary.LittleEndian.PutUint32(size[0:4], uint32(b.Dx()))
	binary.LittleEndian.PutUint32(size[4:8], uint32(b.Dy()))
	h.Write(size[:])

	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[off : off+4*b.Dx()])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equal reports whether a and b have the same size and pixels.
func Equal(a, b *image.RGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		ao := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		bo := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		n := 4 * ab.Dx()
		if string(a.Pix[ao:ao+n]) != string(b.Pix[bo:bo+n]) {
			return false
		}
	}
	return true
}
