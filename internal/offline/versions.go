package offline

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionSet 是本地可用版本的集合，重复的 tarball 会自动合并。
type VersionSet map[string]struct{}

// NewVersionSet 由给定版本构造集合。
func NewVersionSet(versions ...string) VersionSet {
	set := make(VersionSet, len(versions))
	for _, v := range versions {
		set.Add(v)
	}
	return set
}

// Add 将版本加入集合。
func (s VersionSet) Add(version string) {
	s[version] = struct{}{}
}

// Has 判断版本是否存在于集合中。
func (s VersionSet) Has(version string) bool {
	_, ok := s[version]
	return ok
}

// Sorted 返回按语义化版本升序排列的列表。
func (s VersionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return CompareVersions(out[i], out[j]) < 0
	})
	return out
}

// CompareVersions 按语义化版本优先级比较 a 与 b（major、minor、patch、pre-release）。
// 无法解析为 semver 的字符串排在所有合法版本之前；优先级相同时退回字符串比较，保证全序。
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	}
	return strings.Compare(a, b)
}

// SortVersionsDesc 原地按语义化版本降序排序。
func SortVersionsDesc(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) > 0
	})
}

// LatestVersion 返回集合中优先级最高的版本，空集合时 ok 为 false。
func LatestVersion(versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	sorted := append([]string(nil), versions...)
	SortVersionsDesc(sorted)
	return sorted[0], true
}
