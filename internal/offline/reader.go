package offline

import (
	"context"

	"github.com/sirupsen/logrus"
)

// MetadataReader 读取存储中未经裁剪的元数据。
type MetadataReader interface {
	ReadRawMetadata(ctx context.Context, name string) (*Document, error)
}

// Storage 是底层存储引擎需要提供的全部能力。
type Storage interface {
	MetadataReader
	DirectoryLister
	// PackageDir 返回包目录在存储中的路径。
	PackageDir(name string) string
	// ListCandidates 返回存储根目录下的候选包目录（scope 目录展开一层）。
	ListCandidates(ctx context.Context) ([]Candidate, error)
}

// PackageStorageReader 以某种策略读取单个包的元数据。
type PackageStorageReader interface {
	ReadPackage(ctx context.Context, name string) (*Document, error)
}

// passthroughReader 原样返回存储中的文档，用于 online 模式。
type passthroughReader struct {
	raw MetadataReader
}

// NewPassthroughReader 构造 online 模式使用的读取器。
func NewPassthroughReader(raw MetadataReader) PackageStorageReader {
	return passthroughReader{raw: raw}
}

func (r passthroughReader) ReadPackage(ctx context.Context, name string) (*Document, error) {
	return r.raw.ReadRawMetadata(ctx, name)
}

// reconcilingReader 组合原始读取与目录扫描，只暴露本地存在 tarball 的版本。
type reconcilingReader struct {
	storage Storage
	logger  logrus.FieldLogger
}

// NewReconcilingReader 构造 offline 模式使用的读取器。
func NewReconcilingReader(storage Storage, logger logrus.FieldLogger) PackageStorageReader {
	if logger == nil {
		logger = discardLogger()
	}
	return reconcilingReader{storage: storage, logger: logger}
}

func (r reconcilingReader) ReadPackage(ctx context.Context, name string) (*Document, error) {
	doc, err := r.storage.ReadRawMetadata(ctx, name)
	if err != nil {
		return nil, err
	}

	local, err := DiscoverLocalVersions(ctx, r.storage, r.storage.PackageDir(name), name)
	if err != nil {
		return nil, err
	}

	pruned, err := Reconcile(doc, local)
	if err != nil {
		return nil, withPackage(err, name)
	}

	latest, _ := pruned.Latest()
	r.logger.WithFields(logrus.Fields{
		"package":        name,
		"local_count":    len(local),
		"declared_count": len(doc.VersionKeys()),
		"exposed_count":  len(pruned.VersionKeys()),
		"version":        latest,
	}).Debug("metadata_reconciled")
	return pruned, nil
}
