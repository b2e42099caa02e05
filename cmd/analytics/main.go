package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-delivery-analytics/internal/analytics"
	"go-delivery-analytics/internal/export"
	"go-delivery-analytics/internal/ingest"
	"go-delivery-analytics/internal/model"
)

// The CLI runs one offline analysis: ingest a source extract, aggregate it
// under an optional filter and export the snapshot to disk.
func main() {
	var (
		file      = flag.String("file", "", "source extract (.csv or .xlsx), required")
		outDir    = flag.String("out", "exports", "base directory for export files")
		chunkSize = flag.Int("chunk", ingest.DefaultChunkSize, "records per ingestion batch")
		startDate = flag.String("start", "", "inclusive start date, YYYY-MM-DD")
		endDate   = flag.String("end", "", "inclusive end date, YYYY-MM-DD")
		plants    = flag.String("facilities", "", "comma-separated facility codes")
		groups    = flag.String("groups", "", "comma-separated facility groups")
		noms      = flag.String("nomenclatures", "", "comma-separated product nomenclatures")
		carriers  = flag.String("carriers", "", "comma-separated carrier names")
		plates    = flag.String("plates", "", "comma-separated normalized truck plates")
		customers = flag.String("customers", "", "comma-separated customer tax IDs")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: analytics -file extract.csv [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		fatal("open source", err)
	}
	defer f.Close()

	src, err := ingest.OpenSource(*file, f)
	if err != nil {
		fatal("open source", err)
	}
	defer src.Close()

	dec, err := ingest.NewDecoder(src)
	if err != nil {
		fatal("validate header", err)
	}

	// No preview pass offline; the full pass is the only consumer.
	opts := model.IngestOptions{ChunkSize: *chunkSize}
	out := make(chan ingest.Batch, 4)
	var sum ingest.Summary
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		sum, runErr = ingest.Run(context.Background(), dec, opts, out)
	}()

	var tickets []model.Ticket
	for b := range out {
		tickets = append(tickets, b.Tickets...)
	}
	<-done
	if runErr != nil {
		fatal("ingest", runErr)
	}

	filter := model.Filter{
		StartDate:      *startDate,
		EndDate:        *endDate,
		Facilities:     splitList(*plants),
		FacilityGroups: splitList(*groups),
		Nomenclatures:  splitList(*noms),
		Carriers:       splitList(*carriers),
		Plates:         splitList(*plates),
		Customers:      splitList(*customers),
	}

	start := time.Now()
	res := analytics.Compute(tickets, filter)
	fmt.Printf("📊 Aggregated %d records in %v: %d facilities, %d customers, total volume %.2f m³\n",
		res.FilteredCount, time.Since(start).Round(time.Millisecond),
		len(res.ByFacility), len(res.ByCustomer), res.TotalVolume)
	fmt.Printf("   rows=%d excluded=%d duplicates=%d rejected=%d\n",
		sum.Rows, sum.Excluded, sum.Duplicates, sum.Rejected)

	runID := time.Now().UTC().Format("20060102-150405") + "-" + uuid.New().String()[:8]
	if _, err := export.NewManager(*outDir).WriteSnapshot(runID, res); err != nil {
		fatal("export", err)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", stage, err)
	os.Exit(1)
}
