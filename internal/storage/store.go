package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/any-hub/offline-storage/internal/offline"
)

// MetadataFile 是包目录下元数据文件的名称。
const MetadataFile = "package.json"

// ErrInvalidName 表示包名无法安全映射到存储路径。
var ErrInvalidName = errors.New("invalid package name")

// ValidateName 校验包名：非空、最多一个 "/"（仅限 @scope/name 形式），且不允许 ".." 等路径穿越片段。
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, "\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	segments := strings.Split(name, "/")
	switch len(segments) {
	case 1:
		if strings.HasPrefix(name, "@") {
			return fmt.Errorf("%w: scope without package: %q", ErrInvalidName, name)
		}
	case 2:
		if !strings.HasPrefix(segments[0], "@") || len(segments[0]) < 2 {
			return fmt.Errorf("%w: only scoped names may contain '/': %q", ErrInvalidName, name)
		}
	default:
		return fmt.Errorf("%w: too many segments: %q", ErrInvalidName, name)
	}
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}

// ValidateArtifactName 校验 tarball 文件名：单段、非隐藏且以 .tgz 结尾。
func ValidateArtifactName(file string) error {
	if file == "" || strings.ContainsAny(file, "/\\\x00") || strings.HasPrefix(file, ".") {
		return fmt.Errorf("%w: artifact %q", ErrInvalidName, file)
	}
	if !strings.HasSuffix(file, offline.ArtifactSuffix) {
		return fmt.Errorf("%w: artifact %q is not a tarball", ErrInvalidName, file)
	}
	return nil
}
