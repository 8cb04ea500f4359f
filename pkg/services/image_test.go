package services

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/pipeline"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "src.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeImage(t *testing.T) {
	path := writeTestPNG(t, 8, 4)
	out, err := pipeline.New(DecodeImage()).Run(context.Background(),
		pipeline.Payload{KeyPath: path})
	if err != nil {
		t.Fatal(err)
	}
	img, ok := out[KeyImage].(image.Image)
	if !ok {
		t.Fatalf("payload %q is %T, want image.Image", KeyImage, out[KeyImage])
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("bounds = %v, want 8x4", img.Bounds())
	}
	if out[KeyFormat] != "png" {
		t.Errorf("format = %v, want png", out[KeyFormat])
	}
}

func TestDecodeImageMissingPath(t *testing.T) {
	_, err := DecodeImage().Run(context.Background(), pipeline.Payload{})
	if !errors.Is(err, errors.KindServiceArgument) {
		t.Errorf("error kind = %v, want KindServiceArgument", errors.KindOf(err))
	}
}

func TestScaleImageExactBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	out, err := ScaleImage(10, 5, FilterNearest).Run(context.Background(),
		pipeline.Payload{KeyImage: src})
	if err != nil {
		t.Fatal(err)
	}
	img := out[KeyImage].(image.Image)
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 5 {
		t.Errorf("bounds = %v, want 10x5", img.Bounds())
	}
}

func TestScaleImagePreservesAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	out, err := ScaleImage(50, 0, FilterBilinear).Run(context.Background(),
		pipeline.Payload{KeyImage: src})
	if err != nil {
		t.Fatal(err)
	}
	img := out[KeyImage].(image.Image)
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 25 {
		t.Errorf("bounds = %v, want 50x25", img.Bounds())
	}
}

func TestScaleImageRejectsNoBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	_, err := ScaleImage(0, 0, FilterNearest).Run(context.Background(),
		pipeline.Payload{KeyImage: src})
	if !errors.Is(err, errors.KindServiceArgument) {
		t.Errorf("error kind = %v, want KindServiceArgument", errors.KindOf(err))
	}
}

func TestEncodeImageRoundTrip(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out, err := EncodeImage().Run(context.Background(),
		pipeline.Payload{KeyImage: src, KeyOutPath: dst})
	if err != nil {
		t.Fatal(err)
	}
	if out[KeyOutPath] != dst {
		t.Errorf("out_path = %v", out[KeyOutPath])
	}
	decoded, err := pipeline.New(DecodeImage()).Run(context.Background(),
		pipeline.Payload{KeyPath: dst})
	if err != nil {
		t.Fatal(err)
	}
	if img := decoded[KeyImage].(image.Image); img.Bounds().Dx() != 4 {
		t.Errorf("round trip bounds = %v", img.Bounds())
	}
}

func TestEncodeImageUnknownExtension(t *testing.T) {
	_, err := EncodeImage().Run(context.Background(), pipeline.Payload{
		KeyImage:   image.NewRGBA(image.Rect(0, 0, 1, 1)),
		KeyOutPath: filepath.Join(t.TempDir(), "out.xyz"),
	})
	if !errors.Is(err, errors.KindServiceArgument) {
		t.Errorf("error kind = %v, want KindServiceArgument", errors.KindOf(err))
	}
}

func TestThumbnailChain(t *testing.T) {
	path := writeTestPNG(t, 64, 64)
	out, err := Thumbnail(16, 16).Run(context.Background(),
		pipeline.Payload{KeyPath: path})
	if err != nil {
		t.Fatal(err)
	}
	img := out[KeyImage].(image.Image)
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Errorf("bounds = %v, want 16x16", img.Bounds())
	}
}

func TestImageServiceFeedsArgsAndCallback(t *testing.T) {
	path := writeTestPNG(t, 32, 32)
	svc := NewImageService(Thumbnail(8, 8))

	var result any
	err := svc.HandleEvent(
		event.Payload{Type: event.OnPress, WidgetID: "open"},
		event.Args{KeyPath: path},
		func(r any) { result = r },
	)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := result.(pipeline.Payload)
	if !ok {
		t.Fatalf("callback got %T, want pipeline.Payload", result)
	}
	if out["widget_id"] != "open" {
		t.Errorf("widget_id = %v", out["widget_id"])
	}
	if img := out[KeyImage].(image.Image); img.Bounds().Dx() != 8 {
		t.Errorf("thumbnail bounds = %v", img.Bounds())
	}
}

func TestAsyncImageServiceIsMarkedAsync(t *testing.T) {
	var svc any = NewAsyncImageService(Thumbnail(8, 8))
	if _, ok := svc.(interface{ Async() }); !ok {
		t.Error("AsyncImageService should carry the async marker")
	}
}

func TestImageServicePropagatesPipelineError(t *testing.T) {
	svc := NewImageService(DecodeImage())
	err := svc.HandleEvent(event.Payload{WidgetID: "w"}, nil, nil)
	if !errors.Is(err, errors.KindServiceArgument) {
		t.Errorf("error kind = %v, want KindServiceArgument", errors.KindOf(err))
	}
}
