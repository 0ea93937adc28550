package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ── 楼层范围解析与排序 ──────────────────────────────────────
//
// 楼层标识有三类：
//   - 数字层：  "3"、"L3"、"Level 3"
//   - 命名层：  Basement 2 / Basement 1 / Basement / Ground / Mezzanine（及常见缩写）
//   - 其他：    Roof 固定排最后，无法识别的排在数字层之后
// ─────────────────────────────────────────────────────────────

var (
	numericLevelPattern = regexp.MustCompile(`(?i)^(L)?(\d+)$`)
	levelWordPattern    = regexp.MustCompile(`(?i)^level\s*(\d+)$`)
)

// namedLevels 命名楼层的固定顺序
var namedLevels = []string{"Basement 2", "Basement 1", "Basement", "Ground", "Mezzanine"}

// namedLevelAliases 命名楼层别名（小写）→ 规范名称
var namedLevelAliases = map[string]string{
	"basement 2":   "Basement 2",
	"b2":           "Basement 2",
	"basement 1":   "Basement 1",
	"b1":           "Basement 1",
	"basement":     "Basement",
	"ground":       "Ground",
	"ground floor": "Ground",
	"g":            "Ground",
	"gf":           "Ground",
	"mezzanine":    "Mezzanine",
	"mezz":         "Mezzanine",
}

// namedLevelRanks 命名楼层排序值
var namedLevelRanks = map[string]float64{
	"Basement 2": -2,
	"Basement 1": -1,
	"Basement":   -1,
	"Ground":     0,
	"Mezzanine":  0.5,
}

const (
	roofRank    = 999
	unknownRank = 500

	// maxLevelSpan 数字层范围最多展开的楼层数，超出按无法展开处理
	maxLevelSpan = 300
)

// LevelRange 楼层范围解析结果
type LevelRange struct {
	Levels []string
	// Lossy 为 true 表示上下限无法展开，结果退化为 [lowest, highest] 两个元素
	Lossy bool
	// Duplicates 显式列表中被去重丢弃的楼层（保留首次出现）
	Duplicates []string
}

// ResolveLevelRange 将项目的楼层上下限（或显式列表）解析为有序楼层标识
func ResolveLevelRange(lowest, highest, explicit string) LevelRange {
	lowest, highest = strings.TrimSpace(lowest), strings.TrimSpace(highest)

	if lowest == "" || highest == "" {
		levels, dups := splitLevelList(explicit)
		return LevelRange{Levels: levels, Duplicates: dups}
	}

	// 1. 数字层范围
	if lo, loPrefixed, ok := parseNumericLevel(lowest); ok {
		if hi, hiPrefixed, ok := parseNumericLevel(highest); ok {
			if lo > hi {
				lo, hi = hi, lo
			}
			if hi-lo >= maxLevelSpan {
				return lossyRange(lowest, highest)
			}
			prefix := ""
			if loPrefixed || hiPrefixed {
				prefix = "L"
			}
			levels := make([]string, 0, hi-lo+1)
			for n := lo; n <= hi; n++ {
				levels = append(levels, prefix+strconv.Itoa(n))
			}
			return LevelRange{Levels: levels}
		}
	}

	// 2. 命名层范围
	loIdx, hiIdx := namedLevelIndex(lowest), namedLevelIndex(highest)
	if loIdx >= 0 && hiIdx >= 0 {
		if loIdx > hiIdx {
			loIdx, hiIdx = hiIdx, loIdx
		}
		levels := make([]string, 0, hiIdx-loIdx+1)
		levels = append(levels, namedLevels[loIdx:hiIdx+1]...)
		return LevelRange{Levels: levels}
	}

	// 3. 退化：仅保留上下限本身
	return lossyRange(lowest, highest)
}

func lossyRange(lowest, highest string) LevelRange {
	if lowest == highest {
		return LevelRange{Levels: []string{lowest}, Lossy: true}
	}
	return LevelRange{Levels: []string{lowest, highest}, Lossy: true}
}

// splitLevelList 拆分逗号列表；同一楼层的不同写法只保留首次出现
func splitLevelList(explicit string) (levels, dups []string) {
	seen := make(map[string]struct{})
	for _, part := range strings.Split(explicit, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		key := normalizeLevelKey(p)
		if _, ok := seen[key]; ok {
			dups = append(dups, p)
			continue
		}
		seen[key] = struct{}{}
		levels = append(levels, p)
	}
	return levels, dups
}

// parseNumericLevel 解析 "3" / "L3"，返回数值与是否带 L 前缀
func parseNumericLevel(s string) (int, bool, bool) {
	m := numericLevelPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false, false
	}
	return n, m[1] != "", true
}

func canonicalNamedLevel(s string) (string, bool) {
	name, ok := namedLevelAliases[strings.ToLower(strings.Join(strings.Fields(s), " "))]
	return name, ok
}

func namedLevelIndex(s string) int {
	name, ok := canonicalNamedLevel(s)
	if !ok {
		return -1
	}
	for i, n := range namedLevels {
		if n == name {
			return i
		}
	}
	return -1
}

// LevelRank 返回楼层的施工顺序值
func LevelRank(level string) float64 {
	s := strings.TrimSpace(level)
	if name, ok := canonicalNamedLevel(s); ok {
		return namedLevelRanks[name]
	}
	if n, _, ok := parseNumericLevel(s); ok {
		return float64(n)
	}
	if m := levelWordPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return float64(n)
		}
	}
	if strings.EqualFold(s, "roof") {
		return roofRank
	}
	return unknownRank
}

// SortLevels 按施工顺序稳定排序（返回新切片）
func SortLevels(levels []string) []string {
	out := make([]string, len(levels))
	copy(out, levels)
	sort.SliceStable(out, func(i, j int) bool {
		return LevelRank(out[i]) < LevelRank(out[j])
	})
	return out
}

// normalizeLevelKey 楼层比较键：同一楼层的不同写法（"L3"/"3"/"Level 3"、"GF"/"Ground"）映射为同一键
func normalizeLevelKey(level string) string {
	s := strings.TrimSpace(level)
	if name, ok := canonicalNamedLevel(s); ok {
		return strings.ToLower(name)
	}
	if n, _, ok := parseNumericLevel(s); ok {
		return strconv.Itoa(n)
	}
	if m := levelWordPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return strconv.Itoa(n)
		}
	}
	return strings.ToLower(s)
}
