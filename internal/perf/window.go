// File perf/window.go
package perf

// Window 定长 FIFO 采样窗口，满了以后挤掉最旧的
type Window struct {
	buf   []float64
	head  int // 最旧样本的位置
	count int
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

func (w *Window) Cap() int { return len(w.buf) }
func (w *Window) Len() int { return w.count }

func (w *Window) Push(v float64) {
	if w.count < len(w.buf) {
		w.buf[(w.head+w.count)%len(w.buf)] = v
		w.count++
		return
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// At 第 i 个样本，0 为最旧
func (w *Window) At(i int) float64 {
	return w.buf[(w.head+i)%len(w.buf)]
}

func (w *Window) Last() float64 {
	if w.count == 0 {
		return 0
	}
	return w.At(w.count - 1)
}

func (w *Window) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < w.count; i++ {
		sum += w.At(i)
	}
	return sum / float64(w.count)
}

func (w *Window) Min() float64 {
	if w.count == 0 {
		return 0
	}
	m := w.At(0)
	for i := 1; i < w.count; i++ {
		if v := w.At(i); v < m {
			m = v
		}
	}
	return m
}

func (w *Window) Max() float64 {
	if w.count == 0 {
		return 0
	}
	m := w.At(0)
	for i := 1; i < w.count; i++ {
		if v := w.At(i); v > m {
			m = v
		}
	}
	return m
}

func (w *Window) Reset() {
	w.head, w.count = 0, 0
}
