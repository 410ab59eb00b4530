package offline

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// AccessResolver 按包名返回访问配置。
type AccessResolver interface {
	AccessFor(name string) AccessConfig
}

// AccessResolverFunc 适配普通函数。
type AccessResolverFunc func(name string) AccessConfig

// AccessFor 让 AccessResolverFunc 满足 AccessResolver。
func (f AccessResolverFunc) AccessFor(name string) AccessConfig {
	return f(name)
}

// Options 汇总 Service 的依赖。
type Options struct {
	Storage Storage
	Access  AccessResolver
	// Offline 为 true 时所有包都按 offline 模式解析。
	Offline bool
	// ScanConcurrency 限制包列表扫描的并发度，<= 0 表示不限制。
	ScanConcurrency int
	Logger          logrus.FieldLogger
}

// Service 对外提供按模式读取元数据与列出本地可用包两项能力。
type Service struct {
	storage     Storage
	access      AccessResolver
	offline     bool
	concurrency int
	logger      logrus.FieldLogger

	passthrough PackageStorageReader
	reconciling PackageStorageReader
}

// NewService 校验依赖并构造 Service。
func NewService(opts Options) (*Service, error) {
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if opts.Access == nil {
		return nil, errors.New("access resolver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Service{
		storage:     opts.Storage,
		access:      opts.Access,
		offline:     opts.Offline,
		concurrency: opts.ScanConcurrency,
		logger:      logger,
		passthrough: NewPassthroughReader(opts.Storage),
		reconciling: NewReconcilingReader(opts.Storage, logger),
	}, nil
}

// Offline 返回全局 offline 开关。
func (s *Service) Offline() bool {
	return s.offline
}

// ModeFor 返回包当前生效的解析模式。
func (s *Service) ModeFor(name string) Mode {
	return ResolveMode(s.offline, s.access.AccessFor(name))
}

// ReaderFor 按模式选择读取策略。
func (s *Service) ReaderFor(name string) (PackageStorageReader, Mode) {
	mode := s.ModeFor(name)
	if mode == ModeOnline {
		return s.passthrough, mode
	}
	return s.reconciling, mode
}

// GetMetadata 读取包元数据：online 模式原样返回，offline 模式只保留本地版本。
func (s *Service) GetMetadata(ctx context.Context, name string) (*Document, Mode, error) {
	reader, mode := s.ReaderFor(name)
	s.logger.WithFields(logrus.Fields{
		"package": name,
		"mode":    mode,
	}).Debug("metadata_read")

	doc, err := reader.ReadPackage(ctx, name)
	if err != nil {
		return nil, mode, err
	}
	return doc, mode, nil
}

// ListAvailablePackages 返回至少有一个本地 tarball 的包名，隐藏条目始终被排除。
func (s *Service) ListAvailablePackages(ctx context.Context) ([]string, error) {
	candidates, err := s.storage.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}

	check := func(ctx context.Context, candidate Candidate) (bool, error) {
		fields := logrus.Fields{"package": candidate.Name}
		s.logger.WithFields(fields).Debug("discovering local versions")

		ok, err := HasLocalArtifact(ctx, s.storage, candidate.Path)
		switch {
		case err != nil:
			s.logger.WithFields(fields).WithError(err).Trace("error discovering package files")
		case ok:
			s.logger.WithFields(fields).Trace("found locally available package")
		default:
			s.logger.WithFields(fields).Trace("no locally available version found")
		}
		return ok, err
	}

	packages, err := ListPackages(ctx, candidates, check, s.concurrency)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"count":      len(packages),
		"candidates": len(candidates),
	}).Trace("full list of packages has been fetched")
	return packages, nil
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
