package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"go-delivery-analytics/internal/model"
	"go-delivery-analytics/pkg/utils"
)

// ------------------- Columns -------------------

// column is a pre-resolved index into a decoded row. The header stage maps
// column names to positions exactly once; data rows never pay for name
// lookups.
type column int

const (
	colFacility column = iota
	colTicket
	colDosingDate
	colVoided
	colHeaderCode
	colResistance
	colItemSize
	colConsistency
	colExposureGeneral
	colExposure1
	colExposure2
	colExposure3
	colCustomerTaxID
	colCustomerName
	colPlate
	colCarrier
	colVolume
	colWaterCementRatio
	colCementContent
	colDeparture
	colArrival
	colUnloadStart
	colUnloadEnd
	colUsageDeadline

	columnCount
)

// columnNames are the required header names, exactly as the upstream system
// exports them.
var columnNames = [columnCount]string{
	colFacility:         "Nombre planta",
	colTicket:           "Número albarán",
	colDosingDate:       "Fecha Dosificación Albarán",
	colVoided:           "Anulado",
	colHeaderCode:       "CabeceraNomenclaturaReducida",
	colResistance:       "Resistencia Fórmula",
	colItemSize:         "Tamaño Fórmula",
	colConsistency:      "Consistencia Fórmula",
	colExposureGeneral:  "Exposición General Fórmula",
	colExposure1:        "Exposición Especifica 1 Fórmula",
	colExposure2:        "Exposición Especifica 2 Fórmula",
	colExposure3:        "Exposición Especifica 3 Fórmula",
	colCustomerTaxID:    "NIF Cliente",
	colCustomerName:     "Nombre cliente",
	colPlate:            "Matricula Camión",
	colCarrier:          "Nombre Transportista",
	colVolume:           "Volumen Facturar Albarán",
	colWaterCementRatio: "Relación A/C Real Fórmula",
	colCementContent:    "Contenido Cemento Real Fórmula",
	colDeparture:        "Hora Salida Planta Albarán",
	colArrival:          "Hora Llegada Obra Albarán",
	colUnloadStart:      "Hora Inicio Descarga Albarán",
	colUnloadEnd:        "Hora Fin Descarga",
	colUsageDeadline:    "Hora Limite Uso Albarán",
}

// RequiredColumns returns the full set of column names a source header must
// contain.
func RequiredColumns() []string {
	names := make([]string, columnCount)
	copy(names, columnNames[:])
	return names
}

// ------------------- Sources -------------------

// Source yields raw rows from a tabular byte stream, one at a time. Cell
// values are scalars: string, int, float64 or nil.
type Source interface {
	// Next returns the next row, or ok=false at end of input.
	Next() (cells []any, ok bool, err error)
	Close() error
}

// OpenSource picks a decoder by file extension: .xlsx/.xlsm workbooks go
// through excelize, everything else is treated as CSV.
func OpenSource(name string, r io.Reader) (Source, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return newXLSXSource(r)
	default:
		return newCSVSource(r), nil
	}
}

// --- CSV ---

type csvSource struct {
	reader *csv.Reader
}

func newCSVSource(r io.Reader) *csvSource {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return &csvSource{reader: cr}
}

func (s *csvSource) Next() ([]any, bool, error) {
	for {
		record, err := s.reader.Read()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			// Row-level defect: skip the line, never abort the run.
			continue
		}
		cells := make([]any, len(record))
		for i, field := range record {
			cells[i] = utils.ParseValue(field)
		}
		return cells, true, nil
	}
}

func (s *csvSource) Close() error { return nil }

// --- XLSX ---

type xlsxSource struct {
	file *excelize.File
	rows *excelize.Rows
}

func newXLSXSource(r io.Reader) (*xlsxSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, model.ErrMalformedSource
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	return &xlsxSource{file: f, rows: rows}, nil
}

func (s *xlsxSource) Next() ([]any, bool, error) {
	if !s.rows.Next() {
		return nil, false, s.rows.Error()
	}
	// Raw cell values keep date cells as day-count serials, which the
	// mapper converts itself.
	cols, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read row: %w", err)
	}
	cells := make([]any, len(cols))
	for i, c := range cols {
		cells[i] = utils.ParseValue(c)
	}
	return cells, true, nil
}

func (s *xlsxSource) Close() error {
	s.rows.Close()
	return s.file.Close()
}

// ------------------- Decoder -------------------

// header holds the name→index resolution computed once from the header row.
// An index of -1 means the (non-required) column is absent.
type header struct {
	idx [columnCount]int
}

// RawRow is one decoded data row keyed by pre-resolved column positions.
// Transient: it exists only between decoding and mapping.
type RawRow struct {
	hdr   *header
	cells []any
}

func (r RawRow) cell(c column) any {
	i := r.hdr.idx[c]
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i]
}

// Decoder turns a Source into a validated sequence of RawRows. Constructing
// one consumes the header row and fails fast if the source is empty or any
// required column is missing.
type Decoder struct {
	src   Source
	hdr   *header
	names []string
}

// NewDecoder reads up to the first non-empty row, treats it as the header,
// and validates the required column set before any data row is touched.
// Returns model.ErrMalformedSource for a source with no rows and
// *model.MissingColumnsError listing every absent required column.
func NewDecoder(src Source) (*Decoder, error) {
	for {
		cells, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.ErrMalformedSource
		}
		if rowEmpty(cells) {
			continue
		}

		names := make([]string, len(cells))
		for i, c := range cells {
			names[i] = cleanHeaderName(c)
		}

		hdr := &header{}
		byName := make(map[string]int, len(names))
		for i, n := range names {
			if n == "" {
				continue
			}
			if _, seen := byName[n]; !seen {
				byName[n] = i
			}
		}

		var missing []string
		for c := column(0); c < columnCount; c++ {
			i, found := byName[columnNames[c]]
			if !found {
				hdr.idx[c] = -1
				missing = append(missing, columnNames[c])
				continue
			}
			hdr.idx[c] = i
		}
		if len(missing) > 0 {
			return nil, &model.MissingColumnsError{Columns: missing}
		}
		return &Decoder{src: src, hdr: hdr, names: names}, nil
	}
}

// Columns returns the ordered header names of the source.
func (d *Decoder) Columns() []string { return d.names }

// Next returns the next non-empty data row.
func (d *Decoder) Next() (RawRow, bool, error) {
	for {
		cells, ok, err := d.src.Next()
		if err != nil || !ok {
			return RawRow{}, false, err
		}
		if rowEmpty(cells) {
			continue
		}
		return RawRow{hdr: d.hdr, cells: cells}, true, nil
	}
}

func rowEmpty(cells []any) bool {
	for _, c := range cells {
		switch v := c.(type) {
		case nil:
		case string:
			if strings.TrimSpace(v) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// cleanHeaderName trims whitespace and strips stray quotes, the same cleanup
// exports from spreadsheet tools tend to need.
func cleanHeaderName(cell any) string {
	var s string
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprintf("%v", v)
	}
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, `"`, "")
}
