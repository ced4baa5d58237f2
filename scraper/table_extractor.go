// backend/scraper/table_extractor.go
package scraper

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/presupuesto/backend/models"
)

// A table is the budget table when its header mentions any of these.
var budgetHeaderKeywords = []string{"partida", "institución", "aprobado", "vigente"}

const minBudgetRowCells = 3

type amountField int

const (
	fieldApproved amountField = iota
	fieldModifications
	fieldCurrent
	fieldExecuted
	fieldExecutionPercentage
)

// Column layout of the published BCN table: number, name, then amounts.
var positionalAmountColumns = map[amountField]int{
	fieldApproved:            2,
	fieldModifications:       3,
	fieldCurrent:             4,
	fieldExecuted:            5,
	fieldExecutionPercentage: 6,
}

// ParseBudgetDocument parses an HTML document and extracts its budget lines.
func ParseBudgetDocument(r io.Reader) ([]models.BudgetLine, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}
	return ExtractBudgetLines(doc), nil
}

// LocateBudgetTable returns the first table whose header text contains a budget
// keyword, or nil when no table qualifies.
func LocateBudgetTable(doc *goquery.Document) *goquery.Selection {
	var mainTable *goquery.Selection
	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		headerText := strings.ToLower(table.Find("th, thead td").Text())
		for _, keyword := range budgetHeaderKeywords {
			if strings.Contains(headerText, keyword) {
				mainTable = table
				return false
			}
		}
		return true
	})
	return mainTable
}

// ExtractBudgetLines locates the budget table and converts its body rows into
// budget lines, in document order. Rows without a name or without approved and
// current amounts are skipped. An empty result means nothing usable was found.
func ExtractBudgetLines(doc *goquery.Document) []models.BudgetLine {
	tableCount := doc.Find("table").Length()
	if tableCount == 0 {
		log.Println("WARN Scraper: No tables found in BCN document")
		return nil
	}

	mainTable := LocateBudgetTable(doc)
	if mainTable == nil {
		log.Printf("WARN Scraper: Budget table not found among %d tables\n", tableCount)
		return nil
	}

	headers := tableHeaders(mainTable)
	columns := columnsFromHeaders(headers)
	log.Printf("Scraper: Budget table headers: %q\n", headers)

	var lines []models.BudgetLine
	skipped := 0
	mainTable.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minBudgetRowCells {
			return
		}
		texts := make([]string, cells.Length())
		cells.Each(func(j int, cell *goquery.Selection) {
			texts[j] = cellText(cell)
		})

		line := buildBudgetLine(texts, columns)
		if !line.IsRetained() {
			skipped++
			return
		}
		lines = append(lines, line)
	})

	if skipped > 0 {
		log.Printf("Scraper: Skipped %d rows without name or amounts\n", skipped)
	}
	if len(lines) == 0 {
		log.Println("WARN Scraper: Budget table yielded no valid lines")
		return nil
	}
	return lines
}

func buildBudgetLine(texts []string, columns map[amountField]int) models.BudgetLine {
	cell := func(idx int) (string, bool) {
		if idx < 0 || idx >= len(texts) {
			return "", false
		}
		return texts[idx], true
	}
	amount := func(f amountField) float64 {
		idx, mapped := columns[f]
		if !mapped {
			return 0
		}
		text, ok := cell(idx)
		if !ok {
			return 0
		}
		if f == fieldExecutionPercentage {
			return ParsePercentage(text)
		}
		return ParseAmount(text)
	}

	number, _ := cell(0)
	name, _ := cell(1)
	return models.BudgetLine{
		Number:              number,
		Name:                name,
		Approved:            amount(fieldApproved),
		Modifications:       amount(fieldModifications),
		Current:             amount(fieldCurrent),
		Executed:            amount(fieldExecuted),
		ExecutionPercentage: amount(fieldExecutionPercentage),
	}
}

// tableHeaders returns the cells of the header row: the first thead row, or
// else the first row made of th cells.
func tableHeaders(table *goquery.Selection) []string {
	headerCells := table.Find("thead tr").First().Find("th, td")
	if headerCells.Length() == 0 {
		headerCells = table.Find("tr").FilterFunction(func(i int, row *goquery.Selection) bool {
			return row.Find("th").Length() > 0
		}).First().Find("th, td")
	}
	headers := make([]string, 0, headerCells.Length())
	headerCells.Each(func(i int, cell *goquery.Selection) {
		headers = append(headers, cellText(cell))
	})
	return headers
}

// columnsFromHeaders maps amount fields to column indexes using the header
// labels. A field without a recognizable label keeps its positional column
// unless a labelled field already claimed that column.
func columnsFromHeaders(headers []string) map[amountField]int {
	columns := make(map[amountField]int)
	claimed := make(map[int]bool)
	for idx, header := range headers {
		if idx < 2 {
			continue
		}
		field, ok := classifyHeader(strings.ToLower(header))
		if !ok {
			continue
		}
		if _, taken := columns[field]; !taken {
			columns[field] = idx
			claimed[idx] = true
		}
	}
	for field, idx := range positionalAmountColumns {
		if _, mapped := columns[field]; mapped || claimed[idx] {
			continue
		}
		columns[field] = idx
	}
	return columns
}

func classifyHeader(header string) (amountField, bool) {
	switch {
	case strings.Contains(header, "%"),
		strings.Contains(header, "porcentaje"),
		strings.Contains(header, "ejecución"),
		strings.Contains(header, "ejecucion"):
		return fieldExecutionPercentage, true
	case strings.Contains(header, "aprobado"), strings.Contains(header, "aprobada"):
		return fieldApproved, true
	case strings.Contains(header, "modific"):
		return fieldModifications, true
	case strings.Contains(header, "vigente"):
		return fieldCurrent, true
	case strings.Contains(header, "devengado"), strings.Contains(header, "ejecutado"):
		return fieldExecuted, true
	}
	return 0, false
}
