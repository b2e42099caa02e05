package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-delivery-analytics/internal/model"
)

func mapOne(t *testing.T, over map[string]string) (*model.Ticket, bool) {
	t.Helper()
	dec := decoderFor(t, headerLine(), rowLine(over))
	row, ok, err := dec.Next()
	require.NoError(t, err)
	require.True(t, ok)
	mapped := MapRow(row)
	return mapped, mapped != nil
}

func TestMapRow(t *testing.T) {
	t.Run("maps a complete row", func(t *testing.T) {
		tk, ok := mapOne(t, nil)
		require.True(t, ok)
		assert.Equal(t, "MADRID NORTE|1001", tk.ID)
		assert.Equal(t, "MADRID NORTE", tk.Facility)
		assert.Equal(t, "MA", tk.FacilityGroup)
		assert.Equal(t, "H-25", tk.Group)
		assert.Equal(t, "H-25", tk.Nomenclature)
		assert.Equal(t, "2024-03-15", tk.Date)
		assert.Equal(t, "B12345678", tk.CustomerID)
		assert.Equal(t, "1234ABC", tk.Plate)
		assert.Equal(t, 6.0, tk.Quantity)
		assert.Equal(t, 0.5, tk.WaterCementRatio)
		assert.Equal(t, 300.0, tk.CementContent)

		require.NotNil(t, tk.TravelMinutes)
		assert.Equal(t, 30.0, *tk.TravelMinutes)
		require.NotNil(t, tk.UnloadMinutes)
		assert.Equal(t, 15.0, *tk.UnloadMinutes)
		require.NotNil(t, tk.LateUnload)
		assert.False(t, *tk.LateUnload)
	})

	t.Run("rejects a row without a dosing date", func(t *testing.T) {
		_, ok := mapOne(t, map[string]string{"Fecha Dosificación Albarán": ""})
		assert.False(t, ok)

		_, ok = mapOne(t, map[string]string{"Fecha Dosificación Albarán": "not a date"})
		assert.False(t, ok)
	})

	t.Run("accepts a day-count serial date", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{"Fecha Dosificación Albarán": "25569"})
		require.True(t, ok)
		assert.Equal(t, "1970-01-01", tk.Date)
	})

	t.Run("ignores a trailing time on the dosing date", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{"Fecha Dosificación Albarán": "15/03/2024 10:30:00"})
		require.True(t, ok)
		assert.Equal(t, "2024-03-15", tk.Date)
	})

	t.Run("accepts ISO date strings", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{"Fecha Dosificación Albarán": "2024-03-15"})
		require.True(t, ok)
		assert.Equal(t, "2024-03-15", tk.Date)
	})

	t.Run("derives the travel duration in minutes", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{
			"Fecha Dosificación Albarán": "01/01/2024",
			"Hora Salida Planta Albarán": "01/01/2024 08:00:00",
			"Hora Llegada Obra Albarán":  "01/01/2024 08:45:00",
		})
		require.True(t, ok)
		require.NotNil(t, tk.TravelMinutes)
		assert.Equal(t, 45.0, *tk.TravelMinutes)
	})

	t.Run("drops durations when the timestamps are out of order", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{
			"Hora Salida Planta Albarán": "15/03/2024 09:00:00",
			"Hora Llegada Obra Albarán":  "15/03/2024 08:30:00",
		})
		require.True(t, ok)
		assert.Nil(t, tk.TravelMinutes)
		assert.NotNil(t, tk.UnloadMinutes)
	})

	t.Run("drops durations on malformed timestamps", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{
			"Hora Llegada Obra Albarán": "15/03/2024 8h30",
			"Hora Limite Uso Albarán":   "",
		})
		require.True(t, ok)
		assert.Nil(t, tk.TravelMinutes)
		assert.Nil(t, tk.LateUnload)
	})

	t.Run("flags an unload past the usage deadline", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{"Hora Fin Descarga": "15/03/2024 10:30:00"})
		require.True(t, ok)
		require.NotNil(t, tk.LateUnload)
		assert.True(t, *tk.LateUnload)
	})

	t.Run("joins the present exposure classes", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{
			"Exposición Especifica 1 Fórmula": "XC2",
			"Exposición Especifica 3 Fórmula": "XA1",
		})
		require.True(t, ok)
		assert.Equal(t, "IIa+XC2+XA1", tk.Packaging)
	})

	t.Run("degrades malformed numerics to zero", func(t *testing.T) {
		tk, ok := mapOne(t, map[string]string{
			"Volumen Facturar Albarán":       "n/a",
			"Relación A/C Real Fórmula":      "",
			"Contenido Cemento Real Fórmula": "sin dato",
		})
		require.True(t, ok)
		assert.Zero(t, tk.Quantity)
		assert.Zero(t, tk.WaterCementRatio)
		assert.Zero(t, tk.CementContent)
	})
}

func TestFacilityGroup(t *testing.T) {
	assert.Equal(t, "MA", facilityGroup("MADRID NORTE"))
	assert.Equal(t, "SE", facilityGroup("sevilla"))
	assert.Equal(t, "OT", facilityGroup("X"))
	assert.Equal(t, "OT", facilityGroup(""))
}

func TestCleanPlate(t *testing.T) {
	assert.Equal(t, "1234ABC", CleanPlate("1234-ABC "))
	assert.Equal(t, "1234ABC", CleanPlate(" 12 34 abc "))
	assert.Equal(t, "", CleanPlate("---"))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 12.5, parseNumber("12.5"))
	assert.Equal(t, 12.0, parseNumber("12,5")) // longest numeric prefix, like the upstream reader
	assert.Equal(t, 123.0, parseNumber("123abc"))
	assert.Equal(t, -4.5, parseNumber("-4.5 m³"))
	assert.Equal(t, 0.0, parseNumber("abc"))
	assert.Equal(t, 0.0, parseNumber(nil))
	assert.Equal(t, 7.0, parseNumber(7))
}
