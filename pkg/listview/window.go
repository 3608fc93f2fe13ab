package listview

// Viewport 虚拟化窗口：只物化 [Start, End) 区间的行，
// 上下填充像素保持真实可滚动高度。
type Viewport struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	VisibleRows int `json:"visible_rows"`
	TopPad      int `json:"top_pad"`    // 像素
	BottomPad   int `json:"bottom_pad"` // 像素
}

// Window 根据滚动位置计算可见行窗口。
// 恒有 0 <= Start <= End <= total，
// 且 TopPad + (End-Start)*rowHeight + BottomPad == total*rowHeight。
func Window(total, rowHeight, viewportHeight, scrollTop, overscan int) Viewport {
	if total < 0 {
		total = 0
	}
	if rowHeight <= 0 || viewportHeight <= 0 {
		return Viewport{End: 0, BottomPad: total * maxInt(rowHeight, 0)}
	}
	if scrollTop < 0 {
		scrollTop = 0
	}
	if overscan < 0 {
		overscan = 0
	}

	visible := (viewportHeight + rowHeight - 1) / rowHeight
	start := scrollTop/rowHeight - overscan
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + visible + 2*overscan
	if end > total {
		end = total
	}

	return Viewport{
		Start:       start,
		End:         end,
		VisibleRows: visible,
		TopPad:      start * rowHeight,
		BottomPad:   (total - end) * rowHeight,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
