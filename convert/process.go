package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"swarmgen/aspect"
	"swarmgen/metadata"
)

// DefaultJPEGQuality is used when no quality is requested.
const DefaultJPEGQuality = 85

// Ops collects the post-processing steps applied to one image before it
// is saved. Steps run in a fixed order: crop, resize, unsharp, encode.
type Ops struct {
	// Meta is the generation metadata JSON embedded in the saved file:
	// the 'parameters' text chunk for PNG, the EXIF UserComment for JPEG.
	Meta string

	// Crop trims the image to a bounding box. Zero means no crop.
	Crop aspect.Crop

	// ResizePct scales the image to a percentage of its size. Values of
	// 100 or more (and 0) leave the image alone.
	ResizePct int

	// Unsharp sharpens the image after any resize.
	Unsharp *Unsharp

	// JPEG selects JPEG output; otherwise the image is saved as PNG.
	JPEG bool

	// JPEGQuality overrides DefaultJPEGQuality when between 1 and 99.
	JPEGQuality int

	// Source is the filename of the image a re-generation started from,
	// recorded as the EXIF DocumentName on JPEG output.
	Source string
}

// Apply runs the pipeline on decoded image data and writes the result to
// savePath. tool is only needed for JPEG metadata and may be nil when
// ops.JPEG is false or ops.Meta and ops.Source are empty.
func Apply(ctx context.Context, tool *metadata.Exiftool, img image.Image, ops Ops, savePath string) error {
	nrgba := toNRGBA(img)

	if !ops.Crop.IsZero() {
		rect := image.Rect(ops.Crop.X0, ops.Crop.Y0, ops.Crop.X1, ops.Crop.Y1)
		if !rect.In(nrgba.Bounds()) {
			return fmt.Errorf("convert: crop %v outside image bounds %v", rect, nrgba.Bounds())
		}
		nrgba = nrgba.SubImage(rect).(*image.NRGBA)
	}

	if ops.ResizePct > 0 && ops.ResizePct < 100 {
		bounds := nrgba.Bounds()
		w := bounds.Dx() * ops.ResizePct / 100
		h := bounds.Dy() * ops.ResizePct / 100
		scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), nrgba, bounds, xdraw.Over, nil)
		nrgba = scaled
	}

	if ops.Unsharp != nil {
		nrgba = UnsharpMask(nrgba, *ops.Unsharp)
	}

	if ops.JPEG {
		return saveJPEG(ctx, tool, nrgba, ops, savePath)
	}
	return savePNG(nrgba, ops, savePath)
}

// ApplyBytes is Apply for raw encoded image data, as returned by an image
// download.
func ApplyBytes(ctx context.Context, tool *metadata.Exiftool, data []byte, ops Ops, savePath string) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("convert: decoding downloaded image: %w", err)
	}

	// A freshly generated PNG carries its metadata in the stream itself;
	// prefer it over anything the caller guessed.
	if ops.Meta == "" {
		if texts, err := metadata.PNGText(data); err == nil {
			ops.Meta = texts[metadata.ParametersKey]
		}
	}
	return Apply(ctx, tool, img, ops, savePath)
}

func savePNG(img *image.NRGBA, ops Ops, savePath string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("convert: encoding PNG: %w", err)
	}

	data := buf.Bytes()
	if ops.Meta != "" {
		var err error
		if data, err = metadata.WithPNGParameters(data, ops.Meta); err != nil {
			return err
		}
	}
	if err := os.WriteFile(savePath, data, 0o644); err != nil {
		return fmt.Errorf("convert: writing %s: %w", savePath, err)
	}
	return nil
}

func saveJPEG(ctx context.Context, tool *metadata.Exiftool, img *image.NRGBA, ops Ops, savePath string) error {
	quality := DefaultJPEGQuality
	if ops.JPEGQuality > 0 && ops.JPEGQuality < 100 {
		quality = ops.JPEGQuality
	}

	out, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("convert: creating %s: %w", savePath, err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: quality}); err != nil {
		out.Close()
		return fmt.Errorf("convert: encoding JPEG: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("convert: writing %s: %w", savePath, err)
	}

	tags := make(map[string]string)
	if ops.Meta != "" {
		tags[metadata.TagUserComment] = ops.Meta
	}
	if ops.Source != "" {
		tags[metadata.TagDocumentName] = ops.Source
	}
	if len(tags) > 0 {
		if tool == nil {
			return fmt.Errorf("convert: JPEG metadata requires exiftool")
		}
		return tool.WriteTags(ctx, savePath, tags)
	}
	return nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	xdraw.Draw(out, bounds, img, bounds.Min, xdraw.Src)
	return out
}
