package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-delivery-analytics/docs"
	"go-delivery-analytics/internal/api/handler"
	"go-delivery-analytics/pkg/router"
)

// NewRouter wires the API routes onto the logging router.
func NewRouter(h *handler.Handler) *router.Router {
	r := router.New()

	r.POST("/api/v1/datasets", h.UploadDataset)
	r.GET("/api/v1/datasets", h.ListDatasets)
	// More specific routes first
	r.GET("/api/v1/datasets/*/errors", h.GetDatasetErrors)
	r.GET("/api/v1/datasets/*/logs", h.GetDatasetLogs)
	// Generic dataset route last
	r.GET("/api/v1/datasets/*", h.GetDataset)

	r.POST("/api/v1/analysis/filter", h.SetFilter)
	r.GET("/api/v1/analysis/snapshot", h.GetSnapshot)
	r.GET("/api/v1/analysis/options", h.GetOptions)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))

	return r
}
