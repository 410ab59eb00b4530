package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/offline-storage/internal/plugin"
	"github.com/any-hub/offline-storage/internal/server"
	"github.com/any-hub/offline-storage/internal/version"
)

// Catalog 是诊断接口依赖的插件能力。
type Catalog interface {
	ListAvailablePackages(ctx context.Context) ([]string, error)
	Snapshot() plugin.Snapshot
}

// RegisterDiagnosticRoutes 暴露 /-/packages 与 /-/status 诊断接口，供 SRE 查询本地可用包与插件状态。
func RegisterDiagnosticRoutes(app *fiber.App, catalog Catalog, logger *logrus.Logger, timeout time.Duration) {
	if app == nil || catalog == nil || logger == nil {
		return
	}

	app.Get("/-/packages", func(c fiber.Ctx) error {
		ctx, cancel := server.RequestContext(c, timeout)
		defer cancel()

		packages, err := catalog.ListAvailablePackages(ctx)
		if err != nil {
			return server.RenderError(c, logger, "", err)
		}
		if packages == nil {
			packages = []string{}
		}
		return c.JSON(packagesPayload{Packages: packages})
	})

	app.Get("/-/status", func(c fiber.Ctx) error {
		return c.JSON(encodeStatus(catalog.Snapshot()))
	})
}

type packagesPayload struct {
	Packages []string `json:"packages"`
}

type statusPayload struct {
	Offline      bool   `json:"offline"`
	StoragePath  string `json:"storage_path"`
	PackageCount int    `json:"package_count"`
	ListedAt     string `json:"listed_at,omitempty"`
	Version      string `json:"version"`
}

func encodeStatus(snap plugin.Snapshot) statusPayload {
	payload := statusPayload{
		Offline:      snap.Offline,
		StoragePath:  snap.StoragePath,
		PackageCount: len(snap.Packages),
		Version:      version.Full(),
	}
	if !snap.ListedAt.IsZero() {
		payload.ListedAt = snap.ListedAt.Format(time.RFC3339)
	}
	return payload
}
