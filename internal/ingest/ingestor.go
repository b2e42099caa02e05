package ingest

import (
	"context"
	"fmt"

	"go-delivery-analytics/internal/model"
)

// activeSentinel is the voided-flag value of a live ticket; every other
// value marks the row as voided.
const activeSentinel = "N"

// excludedHeaderCodes are the two product categories that never enter the
// dataset.
var excludedHeaderCodes = map[string]struct{}{
	"A": {},
	"O": {},
}

const (
	// DefaultChunkSize bounds how many records one batch carries.
	DefaultChunkSize = 500
	// DefaultPreviewRows is the raw-row prefix used for the fast preview
	// pass.
	DefaultPreviewRows = 2000
)

// Batch is one bounded slice of mapped tickets. Preview batches come from a
// bounded prefix of the source and are replaced wholesale by the full pass.
type Batch struct {
	Tickets []model.Ticket
	Preview bool
}

// Summary reports what one ingestion run did with the source rows.
type Summary struct {
	Rows       int `json:"rows"`       // data rows decoded
	Excluded   int `json:"excluded"`   // voided or excluded-category rows
	Unkeyed    int `json:"unkeyed"`    // rows missing facility or ticket number
	Duplicates int `json:"duplicates"` // later occurrences that overwrote an earlier key
	Rejected   int `json:"rejected"`   // deduplicated rows the mapper returned nil for
	Records    int `json:"records"`    // tickets emitted by the full pass
}

// Run drives the decoder over the whole source: applies the exclusion
// rules, deduplicates by the facility|ticket identity key (last occurrence
// in source order wins), maps the survivors and emits them in bounded
// batches on out. The channel is closed when Run returns. Structural errors
// were already caught by NewDecoder, so the only failure modes left are
// I/O errors and cancellation; individual bad rows never abort the run.
func Run(ctx context.Context, dec *Decoder, opts model.IngestOptions, out chan<- Batch) (Summary, error) {
	defer close(out)

	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	var sum Summary
	keys := make([]string, 0, 1024)
	byKey := make(map[string]RawRow, 1024)

	previewAt := opts.PreviewRows
	for {
		row, ok, err := dec.Next()
		if err != nil {
			return sum, fmt.Errorf("source read failed: %w", err)
		}
		if !ok {
			break
		}
		sum.Rows++

		// Exclusion runs before the identity key is even considered: a
		// voided duplicate never overwrites an earlier live record.
		if cellString(row.cell(colVoided)) != activeSentinel {
			sum.Excluded++
			continue
		}
		if _, excluded := excludedHeaderCodes[cellString(row.cell(colHeaderCode))]; excluded {
			sum.Excluded++
			continue
		}

		facility := cellString(row.cell(colFacility))
		ticket := cellString(row.cell(colTicket))
		if facility == "" || ticket == "" {
			sum.Unkeyed++
			continue
		}

		key := facility + "|" + ticket
		if _, seen := byKey[key]; seen {
			sum.Duplicates++
		} else {
			keys = append(keys, key)
		}
		byKey[key] = row

		if previewAt > 0 && sum.Rows == previewAt {
			if err := emitPreview(ctx, keys, byKey, out); err != nil {
				return sum, err
			}
		}
		if sum.Rows%chunk == 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			default:
			}
		}
	}

	// Map the deduplicated rows and hand them out chunk by chunk, yielding
	// between batches so a supervising context stays responsive.
	buf := make([]model.Ticket, 0, chunk)
	for _, key := range keys {
		t := MapRow(byKey[key])
		if t == nil {
			sum.Rejected++
			continue
		}
		buf = append(buf, *t)
		sum.Records++
		if len(buf) == chunk {
			if err := send(ctx, out, Batch{Tickets: buf}); err != nil {
				return sum, err
			}
			buf = make([]model.Ticket, 0, chunk)
		}
	}
	if len(buf) > 0 {
		if err := send(ctx, out, Batch{Tickets: buf}); err != nil {
			return sum, err
		}
	}

	fmt.Printf("📦 Ingestion done: %d rows → %d records (%d excluded, %d duplicates, %d rejected)\n",
		sum.Rows, sum.Records, sum.Excluded, sum.Duplicates, sum.Rejected)
	return sum, nil
}

// emitPreview maps the dedup state accumulated over the bounded prefix and
// emits it as a single preview batch for the earliest possible partial view.
func emitPreview(ctx context.Context, keys []string, byKey map[string]RawRow, out chan<- Batch) error {
	tickets := make([]model.Ticket, 0, len(keys))
	for _, key := range keys {
		if t := MapRow(byKey[key]); t != nil {
			tickets = append(tickets, *t)
		}
	}
	if len(tickets) == 0 {
		return nil
	}
	return send(ctx, out, Batch{Tickets: tickets, Preview: true})
}

func send(ctx context.Context, out chan<- Batch, b Batch) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- b:
		return nil
	}
}
