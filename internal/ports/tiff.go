package ports

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"

	"golang.org/x/image/tiff"
)

// TIFFConverter renders tracked TIFF pages to the wire format a carrier
// expects; most carriers take the tracked TIFF unchanged, but a few request
// JPEG (spec.md §3 Document / §4.7). Only the conversions this module
// actually needs are implemented; an unsupported pair is an error rather
// than a silent passthrough.
type TIFFConverter struct{}

func (TIFFConverter) Convert(ctx context.Context, src io.Reader, srcFormat, dstFormat string) (io.Reader, error) {
	if srcFormat == dstFormat {
		return src, nil
	}
	if srcFormat != "tiff" || dstFormat != "jpeg" {
		return nil, fmt.Errorf("ports: unsupported image conversion %s -> %s", srcFormat, dstFormat)
	}
	img, err := tiff.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("ports: decoding tiff: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("ports: encoding jpeg: %w", err)
	}
	return &buf, nil
}

var _ ImageConverter = TIFFConverter{}
