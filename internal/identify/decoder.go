// Package identify reads the student or sheet identifier printed on an
// answer sheet as a QR code or 1D barcode.
package identify

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pkg/errors"
)

// ErrNotFound means no supported symbology could be decoded from the image.
var ErrNotFound = errors.New("identification marker not found")

// Result is the outcome of an identification attempt.
//
// Absence is a normal outcome: Found is false, Text is empty and Reason
// says why.
type Result struct {
	Found  bool   `json:"found"`
	Text   string `json:"text,omitempty"`
	Format string `json:"format,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Err returns ErrNotFound (wrapped with the reason) when nothing was decoded.
func (r Result) Err() error {
	if r.Found {
		return nil
	}
	if r.Reason == "" {
		return ErrNotFound
	}
	return errors.Wrap(ErrNotFound, r.Reason)
}

// Decoder tries a fixed sequence of barcode readers. It is safe for
// concurrent use: gozxing readers keep scratch buffers, so each Decode
// builds its own.
type Decoder struct {
	readers []func() gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewDecoder returns a Decoder that tries QR first, then Code 128, Code 39
// and EAN-13.
func NewDecoder() *Decoder {
	return &Decoder{
		readers: []func() gozxing.Reader{
			func() gozxing.Reader { return qrcode.NewQRCodeReader() },
			func() gozxing.Reader { return oned.NewCode128Reader() },
			func() gozxing.Reader { return oned.NewCode39Reader() },
			func() gozxing.Reader { return oned.NewEAN13Reader() },
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the first marker any reader recognises in img.
func (d *Decoder) Decode(img image.Image) (res Result) {
	if img == nil || img.Bounds().Empty() {
		return Result{Reason: "empty image"}
	}

	// The readers index into the bitmap directly; a malformed symbol must
	// not take the grading run down with it.
	defer func() {
		if r := recover(); r != nil {
			res = Result{Reason: fmt.Sprintf("decoder panic: %v", r)}
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Result{Reason: errors.Wrap(err, "failed to create bitmap").Error()}
	}

	for _, newReader := range d.readers {
		result, err := newReader().Decode(bmp, d.hints)
		if err != nil {
			continue
		}
		return Result{
			Found:  true,
			Text:   result.GetText(),
			Format: result.GetBarcodeFormat().String(),
		}
	}

	return Result{Reason: "no QR code or barcode detected"}
}
