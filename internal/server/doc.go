// Package server hosts the Fiber HTTP service that exposes the offline
// storage plugin to npm clients. It attaches the request-ID and recovery
// middlewares, serves package metadata at /<name> and /@scope/<name>, and
// leaves /-/ paths to the diagnostic routes registered by the routes package.
// Handlers depend on the narrow PackageService interface so tests can inject
// fakes instead of a real storage tree.
package server
