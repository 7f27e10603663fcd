package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	dimg "github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for data that is not a JPEG, PNG, GIF or
// WebP image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// ErrInvalidDataURL is returned when a string is not a base64 data URI.
var ErrInvalidDataURL = errors.New("invalid data url")

// photoTypes are the sniffed MIME types accepted for box photos. WebP has no
// signature in http.DetectContentType and is matched by hand.
var photoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func webp(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

// DetectMIME sniffs data and reports its MIME type if it is an accepted photo
// format.
func DetectMIME(data []byte) (string, bool) {
	if webp(data) {
		return "image/webp", true
	}
	if sniffed := http.DetectContentType(data); photoTypes[sniffed] {
		return sniffed, true
	}
	return "", false
}

// EncodeDataURL renders data as "data:<mime>;base64,<payload>".
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URI into its MIME type and payload.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok || mimeType == "" {
		return "", nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mimeType, data, nil
}

// ValidateDataURL checks that s is a base64 data URI carrying a supported
// image and returns the sniffed MIME type.
func ValidateDataURL(s string) (string, error) {
	_, data, err := DecodeDataURL(s)
	if err != nil {
		return "", err
	}
	mimeType, ok := DetectMIME(data)
	if !ok {
		return "", ErrUnsupportedImage
	}
	return mimeType, nil
}

// MirrorJPEG flips any accepted photo format horizontally and re-encodes it
// as JPEG at quality 90. Front-facing cameras deliver mirrored previews; the
// stored photo is flipped to match what the user saw.
func MirrorJPEG(data []byte) ([]byte, error) {
	src, err := dimg.Decode(bytes.NewReader(data), dimg.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := dimg.Encode(&buf, dimg.FlipH(src), dimg.JPEG, dimg.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
