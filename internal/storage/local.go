package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/any-hub/offline-storage/internal/offline"
)

// Local 基于 afero 文件系统读取本地包存储，整站复用一份实例。
// 路径均为相对存储根目录的 "/" 风格路径。
type Local struct {
	fs       afero.Fs
	basePath string
}

var _ offline.Storage = (*Local)(nil)

// NewLocal 以 basePath 为根目录构建只读存储；目录不存在时会被创建，方便首次启动。
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		return nil, errors.New("storage path required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}

	return &Local{
		fs:       afero.NewBasePathFs(osFs, abs),
		basePath: abs,
	}, nil
}

// NewWithFs 使用给定文件系统构建存储，根目录即 fs 的 "/"，主要用于测试。
func NewWithFs(fs afero.Fs) *Local {
	return &Local{fs: fs, basePath: "/"}
}

// BasePath 返回存储根目录的绝对路径。
func (s *Local) BasePath() string {
	return s.basePath
}

// PackageDir 返回包目录相对存储根的路径。
func (s *Local) PackageDir(name string) string {
	return path.Join("/", name)
}

// ReadRawMetadata 读取 <package>/package.json，返回未经裁剪的文档。
func (s *Local) ReadRawMetadata(ctx context.Context, name string) (*offline.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	file := path.Join(s.PackageDir(name), MetadataFile)
	data, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return nil, offline.NewStorageReadError("read", file, err)
	}

	doc, err := offline.ParseDocument(data)
	if err != nil {
		var malformed *offline.MalformedMetadataError
		if errors.As(err, &malformed) {
			malformed.Package = name
		}
		return nil, err
	}
	return doc, nil
}

// OpenArtifact 打开包目录下的 tarball，返回内容与字节数，调用方负责关闭。
func (s *Local) OpenArtifact(ctx context.Context, name, file string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if err := ValidateName(name); err != nil {
		return nil, 0, err
	}
	if err := ValidateArtifactName(file); err != nil {
		return nil, 0, err
	}

	target := path.Join(s.PackageDir(name), file)
	f, err := s.fs.Open(target)
	if err != nil {
		return nil, 0, offline.NewStorageReadError("open", target, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, offline.NewStorageReadError("stat", target, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, offline.NewStorageReadError("open", target, fs.ErrNotExist)
	}
	return f, info.Size(), nil
}

// ListDirectoryEntries 返回目录下所有条目的名称（按名称排序）。
func (s *Local) ListDirectoryEntries(ctx context.Context, dir string) ([]string, error) {
	infos, err := s.readDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

// ListCandidates 返回根目录下的所有包目录；以 @ 开头的 scope 目录会展开一层，
// 得到 @scope/name 形式的候选。隐藏目录原样返回，由调用方过滤。
func (s *Local) ListCandidates(ctx context.Context) ([]offline.Candidate, error) {
	entries, err := s.readDir(ctx, "/")
	if err != nil {
		return nil, err
	}

	candidates := make([]offline.Candidate, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "@") {
			candidates = append(candidates, offline.Candidate{Name: name, Path: s.PackageDir(name)})
			continue
		}

		scoped, err := s.readDir(ctx, s.PackageDir(name))
		if err != nil {
			return nil, err
		}
		for _, child := range scoped {
			if !child.IsDir() {
				continue
			}
			full := name + "/" + child.Name()
			candidates = append(candidates, offline.Candidate{Name: full, Path: s.PackageDir(full)})
		}
	}
	return candidates, nil
}

func (s *Local) readDir(ctx context.Context, dir string) ([]os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, offline.NewStorageReadError("readdir", dir, err)
	}
	return infos, nil
}
