// Package listview 大结果集展示的分页与虚拟化窗口计算
package listview

// MaxPageNumbers 页码条最多展示的页码数
const MaxPageNumbers = 7

// Page 一页切片结果
type Page[T any] struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int   `json:"total"`
	TotalPages  int   `json:"total_pages"`
	Rows        []T   `json:"rows"`
	PageNumbers []int `json:"page_numbers"`
}

// Paginate 将集合切为固定大小的页。
// totalPages = max(1, ceil(count/pageSize))，requested 收敛到 [1, totalPages]，
// 越界、0、负数请求页一律被钳制而非报错。
func Paginate[T any](rows []T, pageSize, requested int) Page[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	total := len(rows)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := requested
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  totalPages,
		Rows:        rows[start:end],
		PageNumbers: PageNumbers(page, totalPages),
	}
}

// PageNumbers 返回页码条：总页数不超过 7 时返回全量，
// 否则返回以当前页为中心的 7 个连续页码并在两端钳制。
func PageNumbers(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	count := totalPages
	if count > MaxPageNumbers {
		count = MaxPageNumbers
	}

	start := current - MaxPageNumbers/2
	if start < 1 {
		start = 1
	}
	if start+count-1 > totalPages {
		start = totalPages - count + 1
	}

	out := make([]int, count)
	for i := range out {
		out[i] = start + i
	}
	return out
}
