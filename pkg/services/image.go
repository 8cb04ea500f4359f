// Package services provides ready-made event services built on the
// pipeline package. The image services decode, scale, and re-encode
// pictures on their way between storage and widget properties, keeping
// that work out of UI logic.
package services

import (
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/pipeline"
)

// Payload keys shared by the image processes.
const (
	KeyImage   = "image"    // image.Image
	KeyPath    = "path"     // source file path
	KeyOutPath = "out_path" // destination file path
	KeyFormat  = "format"   // decoded format name
)

// Filter selects the scaling kernel: speed for previews, quality for
// exports.
type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear
	FilterCatmullRom
)

func (f Filter) scaler() draw.Scaler {
	switch f {
	case FilterNearest:
		return draw.NearestNeighbor
	case FilterCatmullRom:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// DecodeImage reads and decodes the file named by the path payload
// entry, producing image and format entries.
func DecodeImage() pipeline.Process {
	return pipeline.Func(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		if err := p.Require("services.DecodeImage", KeyPath); err != nil {
			return nil, err
		}
		path, ok := p[KeyPath].(string)
		if !ok {
			return nil, errors.New("services.DecodeImage", errors.KindServiceArgument,
				"payload entry %q must be a string path", KeyPath)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap("services.DecodeImage", errors.KindServiceArgument, err)
		}
		defer f.Close()
		img, format, err := image.Decode(f)
		if err != nil {
			return nil, errors.Wrap("services.DecodeImage", errors.KindServiceArgument, err)
		}
		return pipeline.Payload{KeyImage: img, KeyFormat: format}, nil
	})
}

// ScaleImage resizes the image payload entry to the given bounds. A
// zero width or height is derived from the other side, preserving the
// aspect ratio.
func ScaleImage(width, height int, filter Filter) pipeline.Process {
	return pipeline.Func(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		if err := p.Require("services.ScaleImage", KeyImage); err != nil {
			return nil, err
		}
		src, ok := p[KeyImage].(image.Image)
		if !ok {
			return nil, errors.New("services.ScaleImage", errors.KindServiceArgument,
				"payload entry %q must be an image.Image", KeyImage)
		}
		if width <= 0 && height <= 0 {
			return nil, errors.New("services.ScaleImage", errors.KindServiceArgument,
				"at least one of width and height must be positive")
		}
		b := src.Bounds()
		w, h := width, height
		if w <= 0 {
			w = b.Dx() * h / b.Dy()
		}
		if h <= 0 {
			h = b.Dy() * w / b.Dx()
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		filter.scaler().Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		return pipeline.Payload{KeyImage: dst}, nil
	})
}

// EncodeImage writes the image payload entry to the out_path payload
// entry. The encoder follows the file extension; png, jpeg, gif, and
// bmp are supported.
func EncodeImage() pipeline.Process {
	return pipeline.Func(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		if err := p.Require("services.EncodeImage", KeyImage, KeyOutPath); err != nil {
			return nil, err
		}
		img, ok := p[KeyImage].(image.Image)
		if !ok {
			return nil, errors.New("services.EncodeImage", errors.KindServiceArgument,
				"payload entry %q must be an image.Image", KeyImage)
		}
		path, ok := p[KeyOutPath].(string)
		if !ok {
			return nil, errors.New("services.EncodeImage", errors.KindServiceArgument,
				"payload entry %q must be a string path", KeyOutPath)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap("services.EncodeImage", errors.KindServiceArgument, err)
		}
		defer f.Close()

		switch ext := strings.ToLower(path[strings.LastIndex(path, ".")+1:]); ext {
		case "png":
			err = png.Encode(f, img)
		case "jpg", "jpeg":
			err = jpeg.Encode(f, img, nil)
		case "gif":
			err = gif.Encode(f, img, nil)
		case "bmp":
			err = bmp.Encode(f, img)
		default:
			return nil, errors.New("services.EncodeImage", errors.KindServiceArgument,
				"no encoder for %q files", ext)
		}
		if err != nil {
			return nil, errors.Wrap("services.EncodeImage", errors.KindServiceArgument, err)
		}
		return pipeline.Payload{KeyOutPath: path}, nil
	})
}

// Thumbnail is the common decode-scale chain for list and preview
// imagery.
func Thumbnail(width, height int) *pipeline.Pipeline {
	return pipeline.New(DecodeImage(), ScaleImage(width, height, FilterBilinear))
}
