// backend/scraper/csv_lines.go
package scraper

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/jszwec/csvutil"
)

// csvAmount renders amounts in plain decimal notation ("1234567000", not "1.234567E+09").
type csvAmount float64

func (a csvAmount) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(a), 'f', -1, 64), nil
}

func (a *csvAmount) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*a = csvAmount(v)
	return nil
}

// lineRecord is the CSV shape of a budget line. Headers are Spanish to match
// the BCN table the data comes from.
type lineRecord struct {
	Number              string    `csv:"numero"`
	Name                string    `csv:"nombre"`
	Approved            csvAmount `csv:"aprobado"`
	Modifications       csvAmount `csv:"modificaciones"`
	Current             csvAmount `csv:"vigente"`
	Executed            csvAmount `csv:"devengado"`
	ExecutionPercentage csvAmount `csv:"porcentaje_ejecucion"`
}

func recordFromLine(l models.BudgetLine) lineRecord {
	return lineRecord{
		Number:              l.Number,
		Name:                l.Name,
		Approved:            csvAmount(l.Approved),
		Modifications:       csvAmount(l.Modifications),
		Current:             csvAmount(l.Current),
		Executed:            csvAmount(l.Executed),
		ExecutionPercentage: csvAmount(l.ExecutionPercentage),
	}
}

func (r lineRecord) toLine() models.BudgetLine {
	return models.BudgetLine{
		Number:              CleanText(r.Number),
		Name:                CleanText(r.Name),
		Approved:            float64(r.Approved),
		Modifications:       float64(r.Modifications),
		Current:             float64(r.Current),
		Executed:            float64(r.Executed),
		ExecutionPercentage: float64(r.ExecutionPercentage),
	}
}

// WriteLinesCSV writes budget lines as CSV: a header row, then one row per line.
func WriteLinesCSV(w io.Writer, lines []models.BudgetLine) error {
	csvWriter := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(csvWriter)

	if len(lines) == 0 {
		if err := encoder.EncodeHeader(lineRecord{}); err != nil {
			return fmt.Errorf("failed to encode CSV header: %w", err)
		}
	}
	for _, line := range lines {
		if err := encoder.Encode(recordFromLine(line)); err != nil {
			return fmt.Errorf("failed to encode budget line %q: %w", line.Number, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}

// ParseLinesCSV reads budget lines in the WriteLinesCSV format, e.g. a table
// transcribed by hand when the BCN page cannot be scraped. Lines without a
// name or without approved and current amounts are dropped.
func ParseLinesCSV(reader io.Reader) ([]models.BudgetLine, error) {
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for budget lines: %w", err)
	}

	var records []lineRecord
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode budget lines CSV: %w", err)
	}

	lines := make([]models.BudgetLine, 0, len(records))
	for _, record := range records {
		line := record.toLine()
		if line.IsRetained() {
			lines = append(lines, line)
		}
	}

	log.Printf("Scraper: Parsed %d budget lines from CSV (%d dropped).\n", len(lines), len(records)-len(lines))
	return lines, nil
}
