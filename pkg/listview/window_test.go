package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertWindowInvariants(t *testing.T, v Viewport, total, rowHeight int) {
	t.Helper()
	assert.GreaterOrEqual(t, v.Start, 0)
	assert.LessOrEqual(t, v.Start, v.End)
	assert.LessOrEqual(t, v.End, total)
	// 填充恒等式：窗口外高度由上下 padding 补齐
	assert.Equal(t, total*rowHeight, v.TopPad+(v.End-v.Start)*rowHeight+v.BottomPad)
}

func TestWindowAtTop(t *testing.T) {
	v := Window(1000, 32, 640, 0, 5)
	assert.Equal(t, 0, v.Start)
	assert.Equal(t, 20, v.VisibleRows)
	// start 为 0 时只有尾部 overscan 生效
	assert.Equal(t, 30, v.End)
	assert.Equal(t, 0, v.TopPad)
	assertWindowInvariants(t, v, 1000, 32)
}

func TestWindowMidScroll(t *testing.T) {
	v := Window(1000, 32, 640, 3200, 5)
	// floor(3200/32)=100，减 overscan
	assert.Equal(t, 95, v.Start)
	assert.Equal(t, 95+20+10, v.End)
	assert.Equal(t, 95*32, v.TopPad)
	assertWindowInvariants(t, v, 1000, 32)
}

func TestWindowBottomClamped(t *testing.T) {
	v := Window(100, 32, 640, 1<<20, 5)
	assert.Equal(t, 100, v.End)
	assert.Equal(t, 0, v.BottomPad)
	assertWindowInvariants(t, v, 100, 32)
}

func TestWindowSmallerThanViewport(t *testing.T) {
	v := Window(4, 32, 640, 0, 5)
	assert.Equal(t, 0, v.Start)
	assert.Equal(t, 4, v.End)
	assert.Equal(t, 0, v.TopPad)
	assert.Equal(t, 0, v.BottomPad)
	assertWindowInvariants(t, v, 4, 32)
}

func TestWindowDegenerateInputs(t *testing.T) {
	// 行高非法时不物化任何行，也不得除零
	v := Window(100, 0, 640, 50, 5)
	assert.Equal(t, 0, v.End-v.Start)

	v = Window(-5, 32, 640, 0, 2)
	assert.Equal(t, 0, v.End)

	// 负滚动与负 overscan 按 0 处理
	v = Window(50, 32, 640, -100, -3)
	assert.Equal(t, 0, v.Start)
	assertWindowInvariants(t, v, 50, 32)
}

func TestWindowPartialRowViewport(t *testing.T) {
	// 620/32 向上取整 = 20 行
	v := Window(1000, 32, 620, 0, 0)
	assert.Equal(t, 20, v.VisibleRows)
	assert.Equal(t, 20, v.End)
	assertWindowInvariants(t, v, 1000, 32)
}
