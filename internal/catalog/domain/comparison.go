package domain

// 对比预览的告警码
const (
	// WarnCrossDataset 所选记录跨越多个数据集指纹，横向对比仅供参考
	WarnCrossDataset = "cross_dataset_comparison"
)

// ComparisonPreview 由选集派生的对比预览，只读派生态，从不直接修改
type ComparisonPreview struct {
	Items               []*CatalogRun `json:"items"`
	Warnings            []string      `json:"warnings,omitempty"`
	DatasetFingerprints []string      `json:"dataset_fingerprints"`
	AllSameDataset      bool          `json:"all_same_dataset"`
}

// BuildComparison 将标识集解析为完整记录并校验数据集指纹一致性。
// 无法解析的标识静默丢弃；多个指纹只产生非阻断告警，跨数据集对比仍然合法。
func BuildComparison(ids []string, catalog map[string]*CatalogRun) *ComparisonPreview {
	preview := &ComparisonPreview{
		Items:               make([]*CatalogRun, 0, len(ids)),
		DatasetFingerprints: make([]string, 0, 2),
		AllSameDataset:      true,
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		run, ok := catalog[id]
		if !ok || run == nil {
			continue
		}
		preview.Items = append(preview.Items, run)
		if !seen[run.DatasetFingerprint] {
			seen[run.DatasetFingerprint] = true
			preview.DatasetFingerprints = append(preview.DatasetFingerprints, run.DatasetFingerprint)
		}
	}

	if len(preview.DatasetFingerprints) > 1 {
		preview.AllSameDataset = false
		preview.Warnings = append(preview.Warnings, WarnCrossDataset)
	}
	return preview
}
