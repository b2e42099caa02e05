package ingest

import (
	"context"
	"fmt"
	"time"

	"go-delivery-analytics/internal/model"
	"go-delivery-analytics/internal/session"
	"go-delivery-analytics/internal/store"
)

// Load runs one complete dataset load: header validation, the dedup pass,
// mapping, and progressive delivery into the session, with progress and
// failures tracked in the store. A structural error (empty source, missing
// columns) fails the load before any batch reaches the session.
func Load(ctx context.Context, datasetID string, src Source, spec model.DatasetSpec, sess *session.Session, st *store.Store) (Summary, error) {
	start := time.Now()
	st.UpdateStatus(datasetID, "loading")
	st.SaveProgress(datasetID, "decode", "started", start, nil, 0)
	st.SaveLog(datasetID, "decode", "info", "Starting dataset load", map[string]any{
		"file":   spec.FileName,
		"format": spec.Format,
	})

	dec, err := NewDecoder(src)
	if err != nil {
		st.UpdateStatus(datasetID, "failed")
		st.SaveError(datasetID, err)
		st.SaveLog(datasetID, "decode", "error", "Header validation failed", map[string]any{
			"error": err.Error(),
		})
		return Summary{}, err
	}
	decodeEnd := time.Now()
	st.SaveProgress(datasetID, "decode", "completed", start, &decodeEnd, 0)

	// The previous dataset is replaced wholesale the moment a valid new
	// source starts loading.
	sess.ReplaceTickets(nil)

	ingestStart := time.Now()
	st.SaveProgress(datasetID, "ingest", "started", ingestStart, nil, 0)

	out := make(chan Batch, 4)
	var sum Summary
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		sum, runErr = Run(ctx, dec, spec.Options, out)
	}()

	// The preview batch gives the earliest partial view; the first
	// full-pass batch replaces it so preview records are never counted
	// twice.
	previewLoaded := false
	fullStarted := false
	for b := range out {
		switch {
		case b.Preview:
			sess.ReplaceTickets(b.Tickets)
			previewLoaded = true
		case !fullStarted && previewLoaded:
			sess.ReplaceTickets(b.Tickets)
			fullStarted = true
		default:
			sess.AppendTickets(b.Tickets)
			fullStarted = true
		}
	}
	<-done

	if runErr != nil {
		st.UpdateStatus(datasetID, "failed")
		st.SaveError(datasetID, runErr)
		return sum, fmt.Errorf("dataset load failed: %w", runErr)
	}

	ingestEnd := time.Now()
	st.SaveProgress(datasetID, "ingest", "completed", ingestStart, &ingestEnd, sum.Records)
	st.SetCounts(datasetID, sum.Rows, sum.Records)
	st.UpdateStatus(datasetID, "completed")
	st.SaveLog(datasetID, "ingest", "info", "Dataset load completed", map[string]any{
		"rows":        sum.Rows,
		"records":     sum.Records,
		"excluded":    sum.Excluded,
		"duplicates":  sum.Duplicates,
		"rejected":    sum.Rejected,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return sum, nil
}
