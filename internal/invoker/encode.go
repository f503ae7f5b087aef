// Package invoker holds what the model providers share: page encoding, the
// provider registry, request pacing and provider errors.
package invoker

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PageMediaType is the MIME type pages are sent as.
const PageMediaType = "image/png"

// EncodePNG encodes a page as a lossless PNG and returns it base64-encoded.
func EncodePNG(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("no page image")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding page as png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DataURI wraps a base64 PNG as a data: URI.
func DataURI(encoded string) string {
	return "data:" + PageMediaType + ";base64," + encoded
}
