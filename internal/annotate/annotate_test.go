package annotate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"gonum.org/v1/plot/vg"

	"github.com/kozaktomas/face-groups/internal/facegroup"
	"github.com/kozaktomas/face-groups/internal/faceapi"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func testFaces() []facegroup.Identification {
	return []facegroup.Identification{
		{FaceID: "f1", Rectangle: faceapi.FaceRectangle{Left: 10, Top: 20, Width: 30, Height: 30}, Name: "Ada", PersonID: "p1"},
		{FaceID: "f2", Rectangle: faceapi.FaceRectangle{Left: 60, Top: 15, Width: 25, Height: 25}, Name: "Unknown"},
	}
}

func TestDecode(t *testing.T) {
	src := testImage(16, 8)

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"png", pngBuf.Bytes()},
		{"bmp", bmpBuf.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
				t.Errorf("unexpected bounds %v", img.Bounds())
			}
		})
	}

	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identified.png")
	if err := Render(testImage(120, 80), testFaces(), path); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not an image: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png, got %s", format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		t.Errorf("unexpected output size %dx%d", cfg.Width, cfg.Height)
	}
}

func isBoxRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 200 && g>>8 < 80 && b>>8 < 80
}

// redNear reports whether a box pixel lies within tol pixels of (x, y).
func redNear(img image.Image, x, y, tol int) bool {
	for dy := -tol; dy <= tol; dy++ {
		for dx := -tol; dx <= tol; dx++ {
			if isBoxRed(img.At(x+dx, y+dy)) {
				return true
			}
		}
	}
	return false
}

func TestWritePNG_BoxGeometry(t *testing.T) {
	const imgW, imgH = 120, 80
	// Box and label kept inside the image so the plot adds no padding.
	face := facegroup.Identification{
		FaceID:    "f1",
		Name:      "Ada",
		Rectangle: faceapi.FaceRectangle{Left: 40, Top: 40, Width: 40, Height: 30},
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, testImage(imgW, imgH), []facegroup.Identification{face}); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	out, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}

	b := out.Bounds()
	sx := float64(b.Dx()) / imgW
	sy := float64(b.Dy()) / imgH
	px := func(x int) int { return b.Min.X + int(float64(x)*sx+0.5) }
	py := func(y int) int { return b.Min.Y + int(float64(y)*sy+0.5) }

	r := face.Rectangle
	midX, midY := r.Left+r.Width/2, r.Top+r.Height/2
	edges := []struct {
		name string
		x, y int
	}{
		{"left", px(r.Left), py(midY)},
		{"right", px(r.Left + r.Width), py(midY)},
		{"top", px(midX), py(r.Top)},
		{"bottom", px(midX), py(r.Top + r.Height)},
	}
	for _, e := range edges {
		if !redNear(out, e.x, e.y, 3) {
			t.Errorf("expected %s edge near (%d, %d)", e.name, e.x, e.y)
		}
	}

	if redNear(out, px(midX), py(midY), 3) {
		t.Error("expected no box pixels inside the face")
	}
	if redNear(out, px(10), py(70), 3) {
		t.Error("expected no box pixels away from the face")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testImage(64, 64), nil); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
}

func TestRender_EmptyImage(t *testing.T) {
	err := Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), nil, filepath.Join(t.TempDir(), "x.png"))
	if err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantW, wantH  vg.Length
	}{
		{"small image keeps pixels as points", 300, 200, 300, 200},
		{"wide image is scaled to max side", 2880, 1440, maxSide, maxSide / 2},
		{"tall image is scaled to max side", 720, 2880, maxSide / 4, maxSide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := canvasSize(tt.width, tt.height)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("canvasSize(%v, %v) = %v, %v; want %v, %v", tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
