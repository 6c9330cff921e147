package assets

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 160

// qrImage 白底黑码，带静区；payload 为空返回 (nil, nil)
func qrImage(payload string, size int) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if size <= 0 {
		size = defaultQRSize
	}
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return code.Image(size), nil
}

// LoadQRCode 页脚“联系我们”二维码，和 SVG 共用缓存
func LoadQRCode(payload string, size int) (*ebiten.Image, error) {
	key := fmt.Sprintf("qr:%s@%d", payload, size)
	imgMu.Lock()
	defer imgMu.Unlock()
	if img := imgCache[key]; img != nil {
		return img, nil
	}
	src, err := qrImage(payload, size)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	if src == nil {
		return nil, nil
	}
	img := ebiten.NewImageFromImage(src)
	imgCache[key] = img
	return img, nil
}
