package assets

import (
	"strings"
	"testing"
)

func TestLiquidShadersEmbedded(t *testing.T) {
	src, err := LiquidShaders()
	if err != nil {
		t.Fatalf("LiquidShaders: %v", err)
	}
	if strings.TrimSpace(src.Vertex) == "" {
		t.Fatalf("empty vertex source")
	}
	for _, u := range []string{"func Fragment", "var Hover", "var Radius", "var Strength", "var Time", "var Resolution", "var GradientStart", "var GradientEnd", "var Repeat", "var Nearest"} {
		if !strings.Contains(src.Fragment, u) {
			t.Fatalf("fragment source missing %q", u)
		}
	}
}

func TestRasterizeLogo(t *testing.T) {
	data, err := imageFS.ReadFile("images/logo.svg")
	if err != nil {
		t.Fatalf("read logo: %v", err)
	}
	img, err := rasterizeSVG(data, 128, 0)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 128 {
		t.Fatalf("size %v", b)
	}
	if img.RGBAAt(0, 0).A != 0 {
		t.Fatalf("background not transparent")
	}
	if img.RGBAAt(64, 64).A == 0 {
		t.Fatalf("logo body not drawn")
	}
}

func TestRasterizeSVGRejectsGarbage(t *testing.T) {
	if _, err := rasterizeSVG([]byte("not svg"), 10, 10); err == nil {
		t.Fatalf("expected error")
	}
}

func TestQRImage(t *testing.T) {
	img, err := qrImage("https://robonexus.example/contact", 128)
	if err != nil {
		t.Fatalf("qrImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 128 {
		t.Fatalf("size %v", b)
	}
	// 左上角是静区
	if r, g, b, _ := img.At(0, 0).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatalf("quiet zone not white")
	}
	dark := 0
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r == 0 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("no modules drawn")
	}

	if img, err := qrImage("", 128); img != nil || err != nil {
		t.Fatalf("empty payload = (%v, %v)", img, err)
	}
}
