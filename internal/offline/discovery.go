package offline

import (
	"context"
	"path"
	"strings"
)

// ArtifactSuffix 是本地 tarball 的文件后缀。
const ArtifactSuffix = ".tgz"

// DirectoryLister 列出目录中的条目名称，由底层存储实现。
type DirectoryLister interface {
	ListDirectoryEntries(ctx context.Context, dir string) ([]string, error)
}

// BaseName 返回包名去掉 scope 后的最后一段，例如 @scope/name → name。
func BaseName(packageName string) string {
	trimmed := strings.Trim(packageName, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}

// DiscoverLocalVersions 扫描包目录，从 <base>-<version>.tgz 文件名推导本地可用版本。
// 目录无法读取时返回 StorageReadError，而不是空集合。
func DiscoverLocalVersions(ctx context.Context, lister DirectoryLister, dir, packageName string) (VersionSet, error) {
	entries, err := lister.ListDirectoryEntries(ctx, dir)
	if err != nil {
		return nil, NewStorageReadError("readdir", dir, err)
	}

	prefix := BaseName(packageName) + "-"
	versions := make(VersionSet)
	for _, entry := range entries {
		if version, ok := artifactVersion(entry, prefix); ok {
			versions.Add(version)
		}
	}
	return versions, nil
}

// HasLocalArtifact 判断目录中是否至少存在一个 tarball。
func HasLocalArtifact(ctx context.Context, lister DirectoryLister, dir string) (bool, error) {
	entries, err := lister.ListDirectoryEntries(ctx, dir)
	if err != nil {
		return false, NewStorageReadError("readdir", dir, err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry, ArtifactSuffix) {
			return true, nil
		}
	}
	return false, nil
}

// artifactVersion 只接受 <prefix><version>.tgz 形式的文件名，其它包的 tarball 会被忽略。
func artifactVersion(entry, prefix string) (string, bool) {
	if !strings.HasSuffix(entry, ArtifactSuffix) || !strings.HasPrefix(entry, prefix) {
		return "", false
	}
	version := entry[len(prefix) : len(entry)-len(ArtifactSuffix)]
	if version == "" {
		return "", false
	}
	return version, true
}
