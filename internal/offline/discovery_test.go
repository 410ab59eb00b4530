package offline

import (
	"context"
	"errors"
	"io/fs"
	"testing"
)

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"foo":         "foo",
		"@scope/pkg":  "pkg",
		"@scope/pkg/": "pkg",
		"":            "",
	}
	for input, want := range cases {
		if got := BaseName(input); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDiscoverLocalVersionsScopedPackage(t *testing.T) {
	store := newFakeStorage()
	store.addPackage("@scope/pkg", "", "pkg-3.1.0.tgz")

	versions, err := DiscoverLocalVersions(context.Background(), store, store.PackageDir("@scope/pkg"), "@scope/pkg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 1 || !versions.Has("3.1.0") {
		t.Fatalf("expected {3.1.0}, got %v", versions.Sorted())
	}
}

func TestDiscoverLocalVersionsIgnoresForeignEntries(t *testing.T) {
	store := newFakeStorage()
	store.addPackage("foo", "",
		"foo-1.0.0.tgz",
		"foo-2.0.0-beta.1.tgz",
		"foo-1.0.0.tgz",
		"foobar-9.9.9.tgz",
		"other-1.0.0.tgz",
		"foo-.tgz",
		"foo-1.1.0.tgz.tmp",
		"README.md",
	)

	versions, err := DiscoverLocalVersions(context.Background(), store, "/foo", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := versions.Sorted()
	want := []string{"1.0.0", "2.0.0-beta.1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDiscoverLocalVersionsReportsStorageError(t *testing.T) {
	store := newFakeStorage()
	store.failDirs["/broken"] = fs.ErrPermission

	versions, err := DiscoverLocalVersions(context.Background(), store, "/broken", "broken")
	if err == nil {
		t.Fatalf("expected error, got versions %v", versions)
	}
	var readErr *StorageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected StorageReadError, got %T", err)
	}
	if readErr.Path != "/broken" {
		t.Fatalf("unexpected path: %s", readErr.Path)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("cause should be preserved, got %v", err)
	}
}

func TestHasLocalArtifact(t *testing.T) {
	store := newFakeStorage()
	store.addPackage("baz", "", "baz-0.1.0.tgz")
	store.addPackage("empty-dir", "")

	ok, err := HasLocalArtifact(context.Background(), store, "/baz")
	if err != nil || !ok {
		t.Fatalf("baz should have an artifact: ok=%v err=%v", ok, err)
	}
	ok, err = HasLocalArtifact(context.Background(), store, "/empty-dir")
	if err != nil || ok {
		t.Fatalf("empty-dir should not have an artifact: ok=%v err=%v", ok, err)
	}
	if _, err := HasLocalArtifact(context.Background(), store, "/missing"); err == nil {
		t.Fatalf("missing directory should fail")
	}
}
