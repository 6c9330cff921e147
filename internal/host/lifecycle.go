// File host/lifecycle.go
package host

// Lifecycle 页面卸载信号（窗口关闭请求）
// 对应浏览器的 beforeunload / pagehide：两者任一触发都只通知一次
type Lifecycle struct {
	next      int
	listeners map[int]func()
	order     []int
	unloaded  bool
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{listeners: make(map[int]func())}
}

// OnUnload 登记卸载回调，返回的 remove 用于解除登记
func (lc *Lifecycle) OnUnload(fn func()) (remove func()) {
	if fn == nil || lc.unloaded {
		return func() {}
	}
	lc.next++
	id := lc.next
	lc.listeners[id] = fn
	lc.order = append(lc.order, id)
	return func() { delete(lc.listeners, id) }
}

// Unload 通知所有监听者，重复调用无效果
func (lc *Lifecycle) Unload() {
	if lc.unloaded {
		return
	}
	lc.unloaded = true
	for _, id := range lc.order {
		if fn, ok := lc.listeners[id]; ok {
			fn()
		}
	}
	lc.listeners = map[int]func(){}
	lc.order = nil
}

func (lc *Lifecycle) Unloaded() bool { return lc.unloaded }

// Listeners 当前登记数
func (lc *Lifecycle) Listeners() int { return len(lc.listeners) }
