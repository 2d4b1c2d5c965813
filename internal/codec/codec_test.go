package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/dunamismax/skinflow/internal/atlas"
)

func buildTestImage(t *testing.T, w, h int) *image.NRGBA {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 140,
				A: uint8(255 - x%3*100),
			})
		}
	}
	return img
}

func TestEncodeDecodePNGPreservesPixels(t *testing.T) {
	src := buildTestImage(t, 64, 32)

	data, err := Encode(src, FormatPNG)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := Sniff(data); got != "image/png" {
		t.Fatalf("expected image/png, got %s", got)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Format != "png" {
		t.Fatalf("expected png format, got %s", decoded.Format)
	}
	if decoded.Declared != image.Pt(64, 32) {
		t.Fatalf("expected declared 64x32, got %v", decoded.Declared)
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			want := src.NRGBAAt(x, y)
			got := color.NRGBAModel.Convert(decoded.Image.At(x, y)).(color.NRGBA)
			if got != want {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestEncodeWebP(t *testing.T) {
	src := buildTestImage(t, 64, 64)

	data, err := Encode(src, "WEBP")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := Sniff(data); got != "image/webp" {
		t.Fatalf("expected image/webp, got %s", got)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	if decoded.Image.Bounds().Size() != image.Pt(64, 64) {
		t.Fatalf("expected 64x64, got %v", decoded.Image.Bounds())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, in := range [][]byte{nil, []byte("not an image")} {
		if _, err := Decode(in); !errors.Is(err, ErrDecode) {
			t.Fatalf("expected ErrDecode for %q, got %v", in, err)
		}
	}
}

func TestDecodeRejectsTruncatedPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, buildTestImage(t, 64, 64)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()/2]
	if _, err := Decode(truncated); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for truncated png, got %v", err)
	}
}

func TestApplyDataURI(t *testing.T) {
	data, err := Encode(buildTestImage(t, 8, 8), FormatPNG)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out := Apply(data, FormatPNG, EncodingDataURI)
	if !strings.HasPrefix(string(out), "data:image/png;base64,") {
		t.Fatalf("unexpected data uri prefix: %.40s", out)
	}
	if got := Sniff(out); got != "image/png" {
		t.Fatalf("expected sniffed data uri type image/png, got %s", got)
	}

	if got := Apply(data, FormatPNG, ""); !bytes.Equal(got, data) {
		t.Fatal("expected binary encoding to return the input unchanged")
	}
}

func TestNormalizers(t *testing.T) {
	if got := NormalizeFormat(""); got != FormatPNG {
		t.Fatalf("expected default png, got %s", got)
	}
	if got := NormalizeFormat("jpeg"); got != FormatPNG {
		t.Fatalf("expected lossy formats to fall back to png, got %s", got)
	}
	if got := NormalizeEncoding("base64"); got != EncodingDataURI {
		t.Fatalf("expected base64 alias to map to data_uri, got %s", got)
	}
	if got := NormalizeEncoding("buffer"); got != EncodingBinary {
		t.Fatalf("expected binary, got %s", got)
	}
}

func TestDecodeRejectsOversizedHeaderBeforeAllocating(t *testing.T) {
	for _, side := range []uint32{4096, 8192, 65536} {
		_, err := Decode(headerOnlyPNG(side, side))
		if !errors.Is(err, atlas.ErrInvalidDimensions) {
			t.Fatalf("side=%d: expected ErrInvalidDimensions, got %v", side, err)
		}
	}
}

func TestDecodeRejectsIllegalGeometryFromHeader(t *testing.T) {
	if _, err := Decode(headerOnlyPNG(60, 30)); !errors.Is(err, atlas.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}

// headerOnlyPNG returns a PNG whose IHDR claims w x h RGBA pixels but whose
// IDAT carries no data.
func headerOnlyPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(kind string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(kind)
		buf.Write(data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}
