// File ui/overlay.go
package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"robonexus_go/internal/loading"
)

func fpsLine(s loading.Snapshot) string {
	if !s.Measured {
		return "fps      no samples"
	}
	return fmt.Sprintf("fps      cur %.1f avg %.1f min %.1f max %.1f",
		s.Metrics.Current, s.Metrics.Average, s.Metrics.Min, s.Metrics.Max)
}

// overlayLines 诊断面板的文字内容，和绘制分开便于测试
func overlayLines(s loading.Snapshot, tps, fps float64) []string {
	st := s.State
	lines := []string{
		fmt.Sprintf("phase    %s", st.Phase),
		fmt.Sprintf("exit     %s", st.Exit),
		fmt.Sprintf("elapsed  %.2fs", st.Elapsed.Seconds()),
		fmt.Sprintf("steps    %s", strings.Join(s.Choreography, ",")),
		fmt.Sprintf("hover    %.2f, %.2f", s.HoverX, s.HoverY),
		fmt.Sprintf("quality  %s", s.Quality),
		fpsLine(s),
		fmt.Sprintf("host     tps %.1f fps %.1f", tps, fps),
	}
	if st.Skipped {
		lines = append(lines, "skipped")
	}
	if st.TimedOut {
		lines = append(lines, "timed out")
	}
	if st.ErrorMessage != "" {
		lines = append(lines, "error    "+st.ErrorMessage)
	}
	return lines
}

const overlayLineH = 16

func drawOverlay(dst *ebiten.Image, lines []string) {
	w := float32(0)
	for _, l := range lines {
		if lw := float32(text.BoundString(overlayFace, l).Dx()); lw > w {
			w = lw
		}
	}
	h := float32(len(lines)*overlayLineH + 12)
	vector.DrawFilledRect(dst, 8, 8, w+16, h, color.RGBA{0, 0, 0, 0xb0}, false)
	for i, l := range lines {
		text.Draw(dst, l, overlayFace, 16, 8+18+i*overlayLineH, color.RGBA{0x9f, 0xf0, 0x9f, 0xff})
	}
}
