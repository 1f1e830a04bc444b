// Package artifact persists diagnostic images produced while grading, such
// as the binarized mask, for later manual review.
//
// Writes are best effort: callers record a failed write and carry on.
package artifact

import (
	"bytes"
	"context"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store writes named objects and returns where each one landed.
type Store interface {
	Put(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

// NopStore discards everything. Put returns an empty location.
type NopStore struct{}

// Put implements Store.
func (NopStore) Put(context.Context, string, []byte, string) (string, error) {
	return "", nil
}

// Encoding selects the image format written by Save.
type Encoding struct {
	format      imaging.Format
	ext         string
	contentType string
}

// ParseEncoding accepts "png", "jpg" or "jpeg".
func ParseEncoding(name string) (Encoding, error) {
	format, err := imaging.FormatFromExtension(strings.ToLower(name))
	if err != nil {
		return Encoding{}, errors.Wrapf(err, "artifact format %q", name)
	}
	switch format {
	case imaging.PNG:
		return Encoding{format: format, ext: "png", contentType: "image/png"}, nil
	case imaging.JPEG:
		return Encoding{format: format, ext: "jpg", contentType: "image/jpeg"}, nil
	default:
		return Encoding{}, errors.Errorf("artifact format %q is not supported, use png or jpeg", name)
	}
}

// PNG is the default artifact encoding.
var PNG = Encoding{format: imaging.PNG, ext: "png", contentType: "image/png"}

// Name returns a fresh object name such as "mask-<uuid>.png".
func (e Encoding) Name(kind string) string {
	return kind + "-" + uuid.NewString() + "." + e.ext
}

// Save encodes img and writes it to store under a unique name derived from
// kind.
func Save(ctx context.Context, store Store, img image.Image, kind string, enc Encoding) (string, error) {
	if enc.ext == "" {
		enc = PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, enc.format); err != nil {
		return "", errors.Wrapf(err, "failed to encode %s artifact", kind)
	}

	location, err := store.Put(ctx, enc.Name(kind), buf.Bytes(), enc.contentType)
	if err != nil {
		return "", errors.Wrapf(err, "failed to store %s artifact", kind)
	}
	return location, nil
}
