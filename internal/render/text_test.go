package render

import "testing"

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want RGB
	}{
		{"#ffffff", RGB{1, 1, 1}},
		{"#000000", RGB{0, 0, 0}},
		{"FF0000", RGB{1, 0, 0}},
		{"#00ff00", RGB{0, 1, 0}},
		{"#47a0b8", RGB{float32(0x47) / 255, float32(0xa0) / 255, float32(0xb8) / 255}},
		{"", white},
		{"#fff", white},
		{"#gggggg", white},
		{"#12345678", white},
		{"rgb(1,2,3)", white},
	}
	for _, c := range cases {
		if got := ParseHexColor(c.in); got != c.want {
			t.Fatalf("ParseHexColor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestStripIndices(t *testing.T) {
	got := stripIndices(4)
	want := []uint16{0, 1, 2, 2, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if stripIndices(2) != nil {
		t.Fatalf("degenerate strip produced indices")
	}
}

func TestRasterizeTextSizeAndPlacement(t *testing.T) {
	for _, dpr := range []float64{1, 1.5} {
		img, err := RasterizeText(DefaultOptions(), dpr)
		if err != nil {
			t.Fatalf("dpr %v: %v", dpr, err)
		}
		b := img.Bounds()
		if b.Dx() != int(TextureWidth*dpr) || b.Dy() != int(TextureHeight*dpr) {
			t.Fatalf("dpr %v: size %v", dpr, b)
		}
		if img.RGBAAt(0, 0).A != 0 || img.RGBAAt(b.Dx()-1, b.Dy()-1).A != 0 {
			t.Fatalf("dpr %v: corners not transparent", dpr)
		}

		// 有墨迹的列应当左右大致对称
		minX, maxX := b.Dx(), -1
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				if img.RGBAAt(x, y).A > 0 {
					if x < minX {
						minX = x
					}
					if x > maxX {
						maxX = x
					}
				}
			}
		}
		if maxX < 0 {
			t.Fatalf("dpr %v: nothing drawn", dpr)
		}
		left, right := minX, b.Dx()-1-maxX
		if d := left - right; d > 12*int(dpr) || d < -12*int(dpr) {
			t.Fatalf("dpr %v: text off-centre, margins %d/%d", dpr, left, right)
		}
	}
}

func TestRasterizeTextMissingFontFile(t *testing.T) {
	opts := DefaultOptions()
	opts.FontFile = "/nonexistent/font.ttf"
	if _, err := RasterizeText(opts, 1); err == nil {
		t.Fatalf("expected error for missing font file")
	}
}
