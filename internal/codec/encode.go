package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

const (
	FormatPNG  = "png"
	FormatWebP = "webp"

	EncodingBinary  = "binary"
	EncodingDataURI = "data_uri"
)

func NormalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatWebP:
		return FormatWebP
	default:
		return FormatPNG
	}
}

func NormalizeEncoding(encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case EncodingDataURI, "base64":
		return EncodingDataURI
	default:
		return EncodingBinary
	}
}

// Encode writes img losslessly; atlas pixels must survive byte for byte.
func Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch NormalizeFormat(format) {
	case FormatWebP:
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	default:
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}

	return buf.Bytes(), nil
}

func ContentType(format string) string {
	return "image/" + NormalizeFormat(format)
}

func DataURI(data []byte, format string) string {
	return "data:" + ContentType(format) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Apply turns encoded image bytes into the requested output mode.
func Apply(data []byte, format, encoding string) []byte {
	if NormalizeEncoding(encoding) == EncodingDataURI {
		return []byte(DataURI(data, format))
	}
	return data
}

// Sniff reports the MIME type of already-encoded bytes.
func Sniff(data []byte) string {
	if strings.HasPrefix(string(data[:min(len(data), 5)]), "data:") {
		end := bytes.IndexAny(data, ";,")
		if end > 5 {
			return string(data[5:end])
		}
	}
	return http.DetectContentType(data)
}
