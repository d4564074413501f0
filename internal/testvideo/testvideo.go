// Package testvideo 为测试生成小尺寸视频文件。
package testvideo

import (
	"testing"

	"gocv.io/x/gocv"
)

// Write 在 path 写入 n 帧 w*h 的 MJPG AVI，每帧颜色不同。
// 本地 OpenCV 无法写出或读回该文件时跳过测试。
func Write(t testing.TB, path string, n, w, h int, fps float64) {
	t.Helper()

	vw, err := gocv.VideoWriterFile(path, "MJPG", fps, w, h, true)
	if err != nil || !vw.IsOpened() {
		t.Skipf("opencv cannot write MJPG video: %v", err)
	}
	for i := 0; i < n; i++ {
		mat := Solid(w, h, uint8(20*i%256), 80, uint8(255-20*i%256))
		if err := vw.Write(mat); err != nil {
			mat.Close()
			vw.Close()
			t.Fatalf("write frame %d: %v", i, err)
		}
		mat.Close()
	}
	if err := vw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	vc, err := gocv.VideoCaptureFile(path)
	if err != nil || !vc.IsOpened() {
		t.Skipf("opencv cannot read back MJPG video: %v", err)
	}
	vc.Close()
}

// Solid 返回纯色 BGR 图像
func Solid(w, h int, b, g, r uint8) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(b), float64(g), float64(r), 0), h, w, gocv.MatTypeCV8UC3)
}
