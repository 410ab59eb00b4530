package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/offline-storage/internal/logging"
	"github.com/any-hub/offline-storage/internal/offline"
	"github.com/any-hub/offline-storage/internal/storage"
)

// PackageService describes the storage plugin operations the HTTP layer needs.
// It allows injecting fake services during tests.
type PackageService interface {
	GetMetadata(ctx context.Context, name string) (*offline.Document, offline.Mode, error)
	ListAvailablePackages(ctx context.Context) ([]string, error)
}

// ArtifactSource opens locally stored tarballs.
type ArtifactSource interface {
	OpenArtifact(ctx context.Context, name, file string) (io.ReadCloser, int64, error)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger   *logrus.Logger
	Packages PackageService
	// Artifacts serves /<name>/-/<file>.tgz; nil answers those paths with 404.
	Artifacts ArtifactSource
	// RequestTimeout bounds storage reads for a single request; <= 0 disables it.
	RequestTimeout time.Duration
}

const (
	contextKeyRequestID = "_offline_request_id"

	// HeaderMode reports which resolution mode served the metadata.
	HeaderMode = "X-Offline-Mode"
)

// NewApp builds a Fiber application serving package metadata with request IDs
// and structured error handling. Diagnostic routes under /-/ are registered
// separately and reached through c.Next().
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Packages == nil {
		return nil, errors.New("package service is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/*", func(c fiber.Ctx) error {
		rawPath := string(c.Request().URI().Path())
		if IsDiagnosticsPath(rawPath) {
			return c.Next()
		}
		if namePart, file, ok := splitArtifactPath(rawPath); ok {
			return serveArtifact(c, opts, namePart, file)
		}
		return serveMetadata(c, opts, rawPath)
	})

	return app, nil
}

// requestIDMiddleware 为每个请求生成 ID 并写入响应头，便于串联日志。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func serveMetadata(c fiber.Ctx, opts AppOptions, rawPath string) error {
	started := time.Now()
	name, err := PackageNameFromPath(rawPath)
	if err != nil {
		return renderError(c, opts.Logger, "", fiber.StatusBadRequest, "invalid_package_name", err)
	}

	ctx, cancel := RequestContext(c, opts.RequestTimeout)
	defer cancel()

	doc, mode, err := opts.Packages.GetMetadata(ctx, name)
	if err != nil {
		status, code := classifyError(err)
		return renderError(c, opts.Logger, name, status, code, err)
	}

	body, err := doc.Bytes()
	if err != nil {
		return renderError(c, opts.Logger, name, fiber.StatusInternalServerError, "encode_failed", err)
	}

	fields := logging.RequestFields(RequestID(c), name, string(mode), fiber.StatusOK)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	opts.Logger.WithFields(fields).Debug("metadata_served")

	c.Set(HeaderMode, string(mode))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(body)
}

func serveArtifact(c fiber.Ctx, opts AppOptions, namePart, file string) error {
	name, err := PackageNameFromPath(namePart)
	if err != nil {
		return renderError(c, opts.Logger, "", fiber.StatusBadRequest, "invalid_package_name", err)
	}
	if unescaped, err := url.PathUnescape(file); err == nil {
		file = unescaped
	}
	if err := storage.ValidateArtifactName(file); err != nil {
		return renderError(c, opts.Logger, name, fiber.StatusBadRequest, "invalid_artifact_name", err)
	}
	if opts.Artifacts == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "artifact_not_found"})
	}

	ctx, cancel := RequestContext(c, opts.RequestTimeout)
	defer cancel()

	body, size, err := opts.Artifacts.OpenArtifact(ctx, name, file)
	if err != nil {
		status, code := classifyError(err)
		if status == fiber.StatusNotFound {
			code = "artifact_not_found"
		}
		return renderError(c, opts.Logger, name, status, code, err)
	}

	fields := logging.RequestFields(RequestID(c), name, "", fiber.StatusOK)
	fields["artifact"] = file
	fields["size"] = size
	opts.Logger.WithFields(fields).Debug("artifact_served")

	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.Status(fiber.StatusOK).SendStream(body, int(size))
}

// splitArtifactPath 拆分 npm tarball 路径 /<name>/-/<file>。
func splitArtifactPath(rawPath string) (string, string, bool) {
	idx := strings.Index(rawPath, "/-/")
	if idx <= 0 {
		return "", "", false
	}
	return rawPath[:idx], rawPath[idx+len("/-/"):], true
}

// classifyError 将存储错误映射为 HTTP 状态码与错误码。
func classifyError(err error) (int, string) {
	var malformed *offline.MalformedMetadataError
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		return fiber.StatusBadRequest, "invalid_package_name"
	case errors.As(err, &malformed):
		return fiber.StatusBadGateway, "malformed_metadata"
	case errors.Is(err, fs.ErrNotExist):
		return fiber.StatusNotFound, "package_not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "storage_timeout"
	default:
		return fiber.StatusInternalServerError, "storage_read_failed"
	}
}

// RenderError writes a JSON error body and logs the failure.
func RenderError(c fiber.Ctx, logger *logrus.Logger, pkg string, err error) error {
	status, code := classifyError(err)
	return renderError(c, logger, pkg, status, code, err)
}

func renderError(c fiber.Ctx, logger *logrus.Logger, pkg string, status int, code string, err error) error {
	fields := logging.RequestFields(RequestID(c), pkg, "", status)
	fields["error_code"] = code
	entry := logger.WithFields(fields).WithError(err)
	if status >= fiber.StatusInternalServerError {
		entry.Error("request_failed")
	} else {
		entry.Warn("request_failed")
	}

	return c.Status(status).JSON(fiber.Map{
		"error": code,
	})
}

// PackageNameFromPath 从请求路径解析包名，支持 /name、/@scope/name 与 /@scope%2fname。
func PackageNameFromPath(rawPath string) (string, error) {
	name := strings.Trim(rawPath, "/")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// RequestContext 返回带超时的请求 context，timeout <= 0 时不设超时。
func RequestContext(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

// IsDiagnosticsPath reports whether the path belongs to the /-/ namespace.
func IsDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
