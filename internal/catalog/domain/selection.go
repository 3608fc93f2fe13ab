package domain

import (
	"errors"
	"sort"
)

var (
	// ErrSelectionFull 选集已达容量上限
	ErrSelectionFull = errors.New("selection is full")
	// ErrEmptySelection 操作要求非空选集
	ErrEmptySelection = errors.New("selection is empty")
)

// TopN 选取数量的边界
const (
	TopNMin = 1
	TopNMax = 500
)

// SelectionSet 保持插入顺序、自动去重的标识选集。
// limit 为 0 表示不限容量。会话级瞬态状态，仅由显式保存动作落库。
type SelectionSet struct {
	ids   []string
	index map[string]int
	limit int
}

// NewSelectionSet 创建选集，limit <= 0 表示不限容量
func NewSelectionSet(limit int) *SelectionSet {
	if limit < 0 {
		limit = 0
	}
	return &SelectionSet{index: make(map[string]int), limit: limit}
}

// RestoreSelection 从持久化的 id 列表还原选集。
// 去重并静默丢弃超出容量的条目，容忍陈旧缓存。
func RestoreSelection(ids []string, limit int) *SelectionSet {
	s := NewSelectionSet(limit)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, exists := s.index[id]; exists {
			continue
		}
		if s.limit > 0 && len(s.ids) >= s.limit {
			break
		}
		s.append(id)
	}
	return s
}

// Toggle 切换单个标识：存在则移除，不存在则追加。
// 追加时超出容量返回 ErrSelectionFull，选集不变。
func (s *SelectionSet) Toggle(id string) (selected bool, err error) {
	if id == "" {
		return false, nil
	}
	if pos, exists := s.index[id]; exists {
		s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
		delete(s.index, id)
		for i := pos; i < len(s.ids); i++ {
			s.index[s.ids[i]] = i
		}
		return false, nil
	}
	if s.limit > 0 && len(s.ids) >= s.limit {
		return false, ErrSelectionFull
	}
	s.append(id)
	return true, nil
}

// SelectAll 将缺失的标识按序补入选集，越过容量返回 ErrSelectionFull（已补入部分保留）
func (s *SelectionSet) SelectAll(ids []string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, exists := s.index[id]; exists {
			continue
		}
		if s.limit > 0 && len(s.ids) >= s.limit {
			return ErrSelectionFull
		}
		s.append(id)
	}
	return nil
}

// SelectTopN 按指标选取前 N 条并替换当前选集。
// 方向由指标极性决定（回撤类取最小），平局按 id 升序，n 收敛到 [1,500]。
func (s *SelectionSet) SelectTopN(runs []*CatalogRun, key MetricKey, n int) {
	if n < TopNMin {
		n = TopNMin
	}
	if n > TopNMax {
		n = TopNMax
	}

	sorted := make([]*CatalogRun, 0, len(runs))
	for _, run := range runs {
		if run != nil {
			sorted = append(sorted, run)
		}
	}
	asc := LowerIsBetter(key)
	sort.SliceStable(sorted, func(i, j int) bool {
		va, vb := MetricValue(sorted[i], key), MetricValue(sorted[j], key)
		if va != vb {
			return (va < vb) == asc
		}
		return sorted[i].ID < sorted[j].ID
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	s.ids = s.ids[:0]
	s.index = make(map[string]int)
	for _, run := range sorted[:n] {
		if _, exists := s.index[run.ID]; exists {
			continue
		}
		if s.limit > 0 && len(s.ids) >= s.limit {
			break
		}
		s.append(run.ID)
	}
}

// Clear 清空选集
func (s *SelectionSet) Clear() {
	s.ids = s.ids[:0]
	s.index = make(map[string]int)
}

// Contains 判断标识是否在选集中
func (s *SelectionSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len 当前选中数量
func (s *SelectionSet) Len() int { return len(s.ids) }

// Limit 容量上限，0 表示不限
func (s *SelectionSet) Limit() int { return s.limit }

// IDs 按插入顺序返回标识副本
func (s *SelectionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *SelectionSet) append(id string) {
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}
