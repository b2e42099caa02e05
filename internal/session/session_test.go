package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-delivery-analytics/internal/model"
)

func ticket(num, date string, qty float64) model.Ticket {
	return model.Ticket{
		ID:            "MADRID|" + num,
		Facility:      "MADRID",
		FacilityGroup: "MA",
		Group:         "H-25",
		Nomenclature:  "H-25",
		CustomerID:    "B1",
		CustomerName:  "CLIENTE B1",
		Date:          date,
		Quantity:      qty,
	}
}

func startedSession(t *testing.T) *Session {
	t.Helper()
	s := New()
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)
	return s
}

func TestSession(t *testing.T) {
	t.Run("start is not repeatable", func(t *testing.T) {
		s := startedSession(t)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("settles a dispatched request", func(t *testing.T) {
		s := startedSession(t)
		seq := s.ReplaceTickets([]model.Ticket{ticket("1", "2024-03-01", 6)})
		require.NoError(t, s.Wait(context.Background()))

		res, settled := s.Snapshot()
		require.NotNil(t, res)
		assert.Equal(t, seq, settled)
		assert.InDelta(t, 6, res.TotalVolume, 1e-9)
	})

	t.Run("wait resolves immediately once settled", func(t *testing.T) {
		s := startedSession(t)
		s.ReplaceTickets([]model.Ticket{ticket("1", "2024-03-01", 6)})
		require.NoError(t, s.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.NoError(t, s.Wait(ctx))
	})

	t.Run("sequence numbers are strictly monotonic", func(t *testing.T) {
		s := startedSession(t)
		var last uint64
		for i := 0; i < 100; i++ {
			seq := s.SetFilter(model.Filter{StartDate: fmt.Sprintf("2024-01-%02d", i%28+1)})
			assert.Greater(t, seq, last)
			last = seq
		}
		require.NoError(t, s.Wait(context.Background()))

		dispatched, finished := s.Sequences()
		assert.Equal(t, last, dispatched)
		assert.Equal(t, dispatched, finished)
	})

	t.Run("the newest request wins a burst of filter changes", func(t *testing.T) {
		s := startedSession(t)
		s.ReplaceTickets([]model.Ticket{
			ticket("1", "2024-03-01", 6),
			ticket("2", "2024-04-01", 9),
		})
		for i := 0; i < 20; i++ {
			s.SetFilter(model.Filter{EndDate: "2024-03-31"})
			s.SetFilter(model.Filter{})
		}
		last := s.SetFilter(model.Filter{EndDate: "2024-03-31"})
		require.NoError(t, s.Wait(context.Background()))

		res, settled := s.Snapshot()
		assert.Equal(t, last, settled)
		assert.Equal(t, 1, res.FilteredCount)
		assert.InDelta(t, 6, res.TotalVolume, 1e-9)
	})

	t.Run("append keeps an in-flight snapshot unmutated", func(t *testing.T) {
		s := startedSession(t)
		s.ReplaceTickets([]model.Ticket{ticket("1", "2024-03-01", 6)})
		before := s.Tickets()
		s.AppendTickets([]model.Ticket{ticket("2", "2024-03-02", 9)})

		assert.Len(t, before, 1)
		assert.Len(t, s.Tickets(), 2)
		require.NoError(t, s.Wait(context.Background()))

		res, _ := s.Snapshot()
		assert.Equal(t, 2, res.FilteredCount)
	})

	t.Run("a failed pass keeps the previous snapshot visible", func(t *testing.T) {
		s := startedSession(t)
		good := s.ReplaceTickets([]model.Ticket{ticket("1", "2024-03-01", 6)})
		require.NoError(t, s.Wait(context.Background()))

		// A date too short for month bucketing makes the engine panic; the
		// worker must turn that into a failure event, not die.
		bad := s.ReplaceTickets([]model.Ticket{{ID: "broken", Date: "x"}})
		err := s.Wait(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "crashed")

		res, settled := s.Snapshot()
		require.NotNil(t, res)
		assert.Equal(t, good, settled)
		assert.InDelta(t, 6, res.TotalVolume, 1e-9)

		dispatched, finished := s.Sequences()
		assert.Equal(t, bad, dispatched)
		assert.Equal(t, bad, finished)

		// The worker survives and the next good request clears the failure.
		s.ReplaceTickets([]model.Ticket{ticket("3", "2024-03-03", 4)})
		require.NoError(t, s.Wait(context.Background()))
		res, _ = s.Snapshot()
		assert.InDelta(t, 4, res.TotalVolume, 1e-9)
	})

	t.Run("wait honors cancellation", func(t *testing.T) {
		s := New() // never started: requests pile up unserved
		t.Cleanup(s.Stop)
		s.SetFilter(model.Filter{})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
	})

	t.Run("stop is idempotent and releases the worker", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Start(context.Background()))
		s.SetFilter(model.Filter{})
		s.Stop()
		s.Stop()
	})
}
