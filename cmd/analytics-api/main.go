package main

import (
	"context"

	"go-delivery-analytics/internal/api"
	"go-delivery-analytics/internal/api/handler"
	"go-delivery-analytics/internal/session"
	"go-delivery-analytics/internal/store"
)

// @title Delivery Analytics API
// @version 1.0
// @description Ingest delivery-ticket extracts and serve filtered aggregate snapshots
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Init tracking DB
	st, err := store.Open("analytics.db")
	if err != nil {
		panic(err)
	}
	defer st.Close()

	// Analysis session: one worker, sequenced snapshots
	sess := session.New()
	sess.Start(context.Background())
	defer sess.Stop()

	// Register API routes and start server
	r := api.NewRouter(handler.New(st, sess))
	r.Start(":8080")
}
