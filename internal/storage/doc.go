// Package storage implements the read side of the local package storage that
// the offline layer sits on top of. Packages live under
// StoragePath/<name>/package.json with their tarballs next to the metadata
// file; scoped packages use StoragePath/@scope/<name>/. The store only reads:
// metadata files and directory listings are surfaced to the offline package,
// and every failure is wrapped into offline.StorageReadError so callers can
// tell an I/O fault apart from an empty directory.
package storage
