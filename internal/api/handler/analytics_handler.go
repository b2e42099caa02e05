package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-delivery-analytics/internal/analytics"
	"go-delivery-analytics/internal/ingest"
	"go-delivery-analytics/internal/model"
	"go-delivery-analytics/internal/session"
	"go-delivery-analytics/internal/store"
	"go-delivery-analytics/pkg/router"
)

// Handler serves the dataset and analysis endpoints. Constructed once by
// the top-level wiring with its collaborators passed in explicitly.
type Handler struct {
	Store   *store.Store
	Session *session.Session

	// LoadTimeout bounds one background dataset load.
	LoadTimeout time.Duration
}

func New(st *store.Store, sess *session.Session) *Handler {
	return &Handler{
		Store:       st,
		Session:     sess,
		LoadTimeout: 10 * time.Minute,
	}
}

// UploadDataset ingests a new source extract
// @Summary Upload a dataset
// @Description Upload a CSV or XLSX delivery-ticket extract and start ingesting it
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Source extract"
// @Param chunkSize formData int false "Records per emitted batch"
// @Param previewRows formData int false "Raw-row prefix for the preview pass"
// @Success 200 {object} map[string]interface{} "Dataset load started"
// @Failure 400 {object} map[string]interface{} "Invalid upload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /datasets [post]
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A source file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// The extract is held in memory for the whole load; the system is
	// in-memory by design, the upload is no exception.
	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}

	spec := model.DatasetSpec{
		FileName: header.Filename,
		Format:   formatOf(header.Filename),
		Options: model.IngestOptions{
			ChunkSize:   formInt(r, "chunkSize", ingest.DefaultChunkSize),
			PreviewRows: formInt(r, "previewRows", ingest.DefaultPreviewRows),
		},
	}

	datasetID := uuid.New().String()
	if err := h.Store.CreateDataset(datasetID, spec); err != nil {
		http.Error(w, "Failed to save dataset", http.StatusInternalServerError)
		return
	}

	// Ingestion runs in the background; progress and failures land in the
	// tracking store.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.LoadTimeout)
		defer cancel()

		src, err := ingest.OpenSource(spec.FileName, bytes.NewReader(content))
		if err != nil {
			h.Store.UpdateStatus(datasetID, "failed")
			h.Store.SaveError(datasetID, err)
			return
		}
		defer src.Close()

		if _, err := ingest.Load(ctx, datasetID, src, spec, h.Session, h.Store); err != nil {
			fmt.Printf("❌ Dataset %s load failed: %v\n", datasetID, err)
		}
	}()

	writeJSON(w, map[string]interface{}{
		"message":   "Dataset load started",
		"datasetID": datasetID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	})
}

// ListDatasets lists all dataset loads
// @Summary List datasets
// @Description List every dataset load with its current status
// @Tags datasets
// @Produce json
// @Success 200 {array} store.DatasetInfo "Datasets"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.Store.ListDatasets()
	if err != nil {
		http.Error(w, "Failed to fetch datasets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, datasets)
}

// GetDataset fetches one dataset load
// @Summary Get dataset
// @Description Retrieve one dataset load with its spec, status and counts
// @Tags datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} store.DatasetInfo "Dataset"
// @Failure 404 {object} map[string]interface{} "Dataset not found"
// @Router /datasets/{id} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	info, err := h.Store.GetDataset(id)
	if err != nil {
		http.Error(w, "Dataset not found", http.StatusNotFound)
		return
	}
	writeJSON(w, info)
}

// GetDatasetErrors fetches the failures of one load
// @Summary Get dataset errors
// @Description Retrieve the errors recorded for one dataset load, including missing-column lists
// @Tags datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} map[string]interface{} "Errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /datasets/{id}/errors [get]
func (h *Handler) GetDatasetErrors(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	loadErrors, err := h.Store.GetErrors(id)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"datasetID": id,
		"errors":    loadErrors,
		"count":     len(loadErrors),
	})
}

// GetDatasetLogs fetches the log lines of one load
// @Summary Get dataset logs
// @Description Retrieve the stage logs recorded for one dataset load
// @Tags datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} map[string]interface{} "Logs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /datasets/{id}/logs [get]
func (h *Handler) GetDatasetLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	logs, err := h.Store.GetLogs(id)
	if err != nil {
		http.Error(w, "Failed to retrieve logs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"datasetID": id,
		"logs":      logs,
		"count":     len(logs),
	})
}

// SetFilter installs a new filter and waits for the re-analysis
// @Summary Set the analysis filter
// @Description Install a new filter spec, dispatch a re-analysis and return the settled snapshot
// @Tags analysis
// @Accept json
// @Produce json
// @Param filter body model.Filter true "Filter spec"
// @Success 200 {object} map[string]interface{} "Settled snapshot"
// @Failure 400 {object} map[string]interface{} "Invalid filter payload"
// @Failure 502 {object} map[string]interface{} "Analysis failed"
// @Router /analysis/filter [post]
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var f model.Filter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	seq := h.Session.SetFilter(f)
	if err := h.Session.Wait(r.Context()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			http.Error(w, "Request cancelled", http.StatusRequestTimeout)
			return
		}
		// The computation failed; the previously settled snapshot stays
		// visible, report the failure distinctly.
		snapshot, settled := h.Session.Snapshot()
		w.WriteHeader(http.StatusBadGateway)
		writeJSON(w, map[string]interface{}{
			"sequence": seq,
			"settled":  settled,
			"failure":  err.Error(),
			"snapshot": snapshot,
		})
		return
	}

	snapshot, settled := h.Session.Snapshot()
	writeJSON(w, map[string]interface{}{
		"sequence": seq,
		"settled":  settled,
		"snapshot": snapshot,
	})
}

// GetSnapshot returns the latest settled snapshot
// @Summary Get the current snapshot
// @Description Return the latest settled aggregate snapshot and its sequence metadata
// @Tags analysis
// @Produce json
// @Success 200 {object} map[string]interface{} "Snapshot"
// @Router /analysis/snapshot [get]
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, settled := h.Session.Snapshot()
	dispatched, finished := h.Session.Sequences()
	writeJSON(w, map[string]interface{}{
		"snapshot":   snapshot,
		"settled":    settled,
		"dispatched": dispatched,
		"finished":   finished,
		"pending":    dispatched > finished,
	})
}

// GetOptions lists the distinct filterable values
// @Summary Get filter options
// @Description List the distinct values of every filterable dimension of the loaded dataset
// @Tags analysis
// @Produce json
// @Success 200 {object} analytics.FilterOptions "Filter options"
// @Router /analysis/options [get]
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, analytics.Options(h.Session.Tickets()))
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// datasetID pulls the wildcard id segment out of a /api/v1/datasets/{id}...
// path.
func datasetID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := router.Segment(r.URL.Path, 3)
	if id == "" {
		http.Error(w, "Dataset ID is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func formInt(r *http.Request, field string, def int) int {
	v := r.FormValue(field)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func formatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return "csv"
	}
}
