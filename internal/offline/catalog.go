package offline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// hiddenPrefix 标记内部条目，例如存储根目录下的 .registry-db.json。
const hiddenPrefix = "."

// Candidate 是存储根目录下的候选包目录。
type Candidate struct {
	Name string
	Path string
}

// ArtifactCheck 判断候选目录是否包含本地 tarball。
type ArtifactCheck func(ctx context.Context, candidate Candidate) (bool, error)

// IsHidden 判断包名的任一路径段是否以 "." 开头。
func IsHidden(name string) bool {
	for _, segment := range strings.Split(name, "/") {
		if strings.HasPrefix(segment, hiddenPrefix) {
			return true
		}
	}
	return false
}

// ListPackages 过滤隐藏条目后并发执行 check，保留结果为 true 的包名。
// 输出保持候选顺序；任意一次检查失败都会中止整个列表并返回该错误。
// concurrency <= 0 表示不限制并发数。
func ListPackages(ctx context.Context, candidates []Candidate, check ArtifactCheck, concurrency int) ([]string, error) {
	visible := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if IsHidden(candidate.Name) {
			continue
		}
		visible = append(visible, candidate)
	}

	found := make([]bool, len(visible))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, candidate := range visible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := check(gctx, candidate)
			if err != nil {
				return err
			}
			found[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	packages := make([]string, 0, len(visible))
	for i, candidate := range visible {
		if found[i] {
			packages = append(packages, candidate.Name)
		}
	}
	return packages, nil
}
