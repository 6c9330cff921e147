// File loading/elements.go
package loading

// Element 页面上的一个可动画元素
type Element interface {
	Opacity() float64
	SetOpacity(v float64)
	Scale() float64
	SetScale(v float64)
	Remove()
	Removed() bool
}

// Control 可激活的元素（跳过按钮）；宿主负责把点击和 Enter/Space 转成激活
type Control interface {
	Element
	OnActivate(fn func()) (remove func())
}

// Document 按选择器查找元素，找不到返回 nil
type Document interface {
	Query(selector string) Element
}
