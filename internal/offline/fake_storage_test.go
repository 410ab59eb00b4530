package offline

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// fakeStorage 在内存中模拟存储根目录：dirs 记录每个目录下的文件名，meta 记录 package.json。
type fakeStorage struct {
	mu       sync.Mutex
	dirs     map[string][]string
	meta     map[string][]byte
	failDirs map[string]error
	order    []string
	reads    int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		dirs:     make(map[string][]string),
		meta:     make(map[string][]byte),
		failDirs: make(map[string]error),
	}
}

func (f *fakeStorage) addPackage(name, metadata string, files ...string) {
	dir := f.PackageDir(name)
	if _, ok := f.dirs[dir]; !ok {
		f.order = append(f.order, name)
	}
	f.dirs[dir] = append(append([]string{"package.json"}, f.dirs[dir]...), files...)
	if metadata != "" {
		f.meta[name] = []byte(metadata)
	}
}

func (f *fakeStorage) ReadRawMetadata(ctx context.Context, name string) (*Document, error) {
	f.mu.Lock()
	f.reads++
	data, ok := f.meta[name]
	f.mu.Unlock()
	if !ok {
		return nil, NewStorageReadError("read", name+"/package.json", fs.ErrNotExist)
	}
	return ParseDocument(data)
}

func (f *fakeStorage) ListDirectoryEntries(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failDirs[dir]; ok {
		return nil, err
	}
	entries, ok := f.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", dir, fs.ErrNotExist)
	}
	out := append([]string(nil), entries...)
	sort.Strings(out)
	return out, nil
}

func (f *fakeStorage) PackageDir(name string) string {
	return "/" + strings.Trim(name, "/")
}

func (f *fakeStorage) ListCandidates(ctx context.Context) ([]Candidate, error) {
	out := make([]Candidate, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, Candidate{Name: name, Path: f.PackageDir(name)})
	}
	return out, nil
}

func metadataJSON(name string, latest string, versions ...string) string {
	parts := make([]string, 0, len(versions))
	for _, v := range versions {
		parts = append(parts, fmt.Sprintf(`%q:{"name":%q,"version":%q}`, v, name, v))
	}
	tags := `{}`
	if latest != "" {
		tags = fmt.Sprintf(`{"latest":%q}`, latest)
	}
	return fmt.Sprintf(`{"name":%q,"versions":{%s},"dist-tags":%s,"readme":"# %s"}`, name, strings.Join(parts, ","), tags, name)
}
