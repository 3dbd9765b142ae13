// Package annotate draws identified faces over the query image.
package annotate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kozaktomas/face-groups/internal/facegroup"
)

const (
	// labelOffset is the distance in pixels between a box top and its label.
	labelOffset = 10
	maxSide     = 20 * vg.Inch
)

var boxColor = color.RGBA{R: 255, A: 255}

// Decode decodes a JPEG, PNG, GIF, BMP or WebP image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Render writes the annotated image to path. The format follows the file
// extension (png, jpg, svg, pdf, ...).
func Render(img image.Image, faces []facegroup.Identification, path string) error {
	p, w, h, err := build(img, faces)
	if err != nil {
		return err
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WritePNG writes the annotated image as PNG.
func WritePNG(out io.Writer, img image.Image, faces []facegroup.Identification) error {
	p, w, h, err := build(img, faces)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// build lays the image out in plot coordinates: one unit per pixel, origin
// at the bottom-left corner, so image rows are flipped.
func build(img image.Image, faces []facegroup.Identification) (*plot.Plot, vg.Length, vg.Length, error) {
	bounds := img.Bounds()
	width, height := float64(bounds.Dx()), float64(bounds.Dy())
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("image is empty")
	}

	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = 0, width
	p.Y.Min, p.Y.Max = 0, height
	p.Add(plotter.NewImage(img, 0, 0, width, height))

	if len(faces) > 0 {
		labelXYs := make(plotter.XYs, 0, len(faces))
		names := make([]string, 0, len(faces))

		for _, f := range faces {
			r := f.Rectangle
			left, right := float64(r.Left), float64(r.Left+r.Width)
			top, bottom := height-float64(r.Top), height-float64(r.Top+r.Height)

			box, err := plotter.NewLine(plotter.XYs{
				{X: left, Y: top},
				{X: right, Y: top},
				{X: right, Y: bottom},
				{X: left, Y: bottom},
				{X: left, Y: top},
			})
			if err != nil {
				return nil, 0, 0, fmt.Errorf("failed to create box: %w", err)
			}
			box.Color = boxColor
			box.Width = vg.Points(2)
			p.Add(box)

			labelXYs = append(labelXYs, plotter.XY{X: left, Y: top + labelOffset})
			names = append(names, f.Name)
		}

		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: names})
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to create labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = color.White
		}
		p.Add(labels)
	}

	w, h := canvasSize(width, height)
	return p, w, h, nil
}

// canvasSize keeps one point per pixel unless the long side exceeds maxSide.
func canvasSize(width, height float64) (vg.Length, vg.Length) {
	w, h := vg.Points(width), vg.Points(height)
	if long := max(w, h); long > maxSide {
		scale := maxSide / long
		w, h = w*scale, h*scale
	}
	return w, h
}
