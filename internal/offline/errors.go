package offline

import (
	"errors"
	"fmt"
)

// StorageReadError 表示底层目录/文件读取失败，调用方应原样上抛，不做重试。
type StorageReadError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// NewStorageReadError 包装读取错误；已经是 StorageReadError 的错误保持原样。
func NewStorageReadError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StorageReadError
	if errors.As(err, &existing) {
		return err
	}
	return &StorageReadError{Op: op, Path: path, Err: err}
}

// MalformedMetadataError 表示元数据文档缺少 versions/dist-tags 等必要结构。
type MalformedMetadataError struct {
	Package string
	Field   string
	Reason  string
}

func (e *MalformedMetadataError) Error() string {
	name := e.Package
	if name == "" {
		name = "<unknown>"
	}
	if e.Field == "" {
		return fmt.Sprintf("malformed metadata for %s: %s", name, e.Reason)
	}
	return fmt.Sprintf("malformed metadata for %s: %s: %s", name, e.Field, e.Reason)
}

func malformed(field, reason string) error {
	return &MalformedMetadataError{Field: field, Reason: reason}
}

// withPackage 为 MalformedMetadataError 补充包名，其它错误原样返回。
func withPackage(err error, name string) error {
	var target *MalformedMetadataError
	if errors.As(err, &target) && target.Package == "" {
		copied := *target
		copied.Package = name
		return &copied
	}
	return err
}
