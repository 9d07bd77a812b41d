package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mferrari98/cont-portal/internal/buildinfo"
	"github.com/mferrari98/cont-portal/internal/directory"
	domerrors "github.com/mferrari98/cont-portal/internal/errors"
	"github.com/mferrari98/cont-portal/internal/sentry"
)

// serviceInfo answers the root path with the service identity and the
// routes it exposes.
func (a *Application) serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "cont-portal",
		"version": buildinfo.Release(),
		"source": gin.H{
			"backend": a.source.Name(),
			"ref":     a.source.Ref(),
		},
		"endpoints": []string{
			"/healthz",
			"/readyz",
			"/metrics",
			"/api/v1/directory",
			"/api/v1/directory/reload",
			"/api/v1/search",
		},
	})
}

// livenessCheck reports that the process is running. It never checks
// dependencies.
func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readinessCheck reports ready once a directory snapshot exists. Before
// the warm load completes, or after it failed with nothing cached, the
// service cannot answer queries and reports 503.
func (a *Application) readinessCheck(c *gin.Context) {
	snap := a.cache.Current()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": domerrors.ErrNoSnapshot.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"records":   len(snap.Records),
		"stamp":     snap.Stamp,
		"loaded_at": snap.LoadedAt,
	})
}

// getDirectory returns the full record list. The cache revalidates
// against the source stamp on every read, so the response is at most one
// stamp check behind the workbook.
func (a *Application) getDirectory(c *gin.Context) {
	snap, err := a.cache.Snapshot(c.Request.Context())
	if err != nil {
		a.renderUnavailable(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":   snap.Records,
		"count":     len(snap.Records),
		"stamp":     snap.Stamp,
		"loaded_at": snap.LoadedAt,
	})
}

// searchDirectory runs a ranked search over the cached records. Degenerate
// queries answer 200 with empty groups rather than an error so clients can
// wire the endpoint directly to an as-you-type search box.
func (a *Application) searchDirectory(c *gin.Context) {
	query := c.Query("q")

	branch := directory.QueryBranch(query)
	if branch == directory.BranchRejected {
		a.metrics.RecordSearch(branch, 0, 0)
		c.JSON(http.StatusOK, gin.H{"query": query, "groups": []directory.Group{}, "total": 0})
		return
	}

	snap, err := a.cache.Snapshot(c.Request.Context())
	if err != nil {
		a.renderUnavailable(c, err)
		return
	}

	start := time.Now()
	groups := directory.Search(snap.Records, query)
	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	a.metrics.RecordSearch(branch, total, time.Since(start).Seconds())

	if groups == nil {
		groups = []directory.Group{}
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "groups": groups, "total": total})
}

// reloadDirectory forces a fetch-and-parse regardless of the source
// stamp. Ops hit this after uploading a corrected workbook.
func (a *Application) reloadDirectory(c *gin.Context) {
	snap, err := a.cache.Reload(c.Request.Context())
	if err != nil {
		kind := domerrors.Kind(err)
		a.logger.WithError(err).WithField("kind", kind).Error("Manual reload failed")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(statusForKind(kind), gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(snap.Records),
		"stamp":     snap.Stamp,
		"loaded_at": snap.LoadedAt,
	})
}

// renderUnavailable maps a failed read with no cached fallback onto 503.
// The kind distinguishes a missing workbook from a corrupt one so probes
// and dashboards can tell them apart.
func (a *Application) renderUnavailable(c *gin.Context, err error) {
	kind := domerrors.Kind(err)
	a.logger.WithError(err).WithField("kind", kind).Warn("Directory unavailable")
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": domerrors.ErrNoSnapshot.Error(),
		"kind":  kind,
	})
}

// statusForKind maps reload failures onto HTTP statuses: upstream faults
// read as 502, anything else as 500.
func statusForKind(kind string) int {
	switch kind {
	case "not_found", "malformed", "unavailable":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
