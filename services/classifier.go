// backend/services/classifier.go
package services

import (
	"regexp"
	"strings"
)

const (
	otherMinistryCode = "OTROS"
	otherMinistryName = "Otros Servicios Públicos"
)

type ministryKeyword struct {
	keyword string
	code    string
}

// Order matters: the first keyword found in the name decides the code.
var ministryKeywords = []ministryKeyword{
	{"EDUCACIÓN", "MINEDUC"},
	{"EDUCACION", "MINEDUC"},
	{"SALUD", "MINSAL"},
	{"INTERIOR", "INTERIOR"},
	{"DESARROLLO SOCIAL", "MDS"},
	{"DEFENSA", "DEFENSA"},
	{"OBRAS PÚBLICAS", "MOP"},
	{"JUSTICIA", "JUSTICIA"},
	{"TRABAJO", "TRABAJO"},
	{"HACIENDA", "HACIENDA"},
	{"RELACIONES EXTERIORES", "RREE"},
	{"ECONOMÍA", "ECONOMIA"},
	{"ECONOMIA", "ECONOMIA"},
	{"AGRICULTURA", "AGRICULTURA"},
	{"MINERÍA", "MINERIA"},
	{"MINERIA", "MINERIA"},
	{"TRANSPORTES", "MTT"},
	{"VIVIENDA", "MINVU"},
	{"MEDIO AMBIENTE", "MMA"},
	{"ENERGÍA", "ENERGIA"},
	{"ENERGIA", "ENERGIA"},
	{"CULTURAS", "CULTURAS"},
	{"CIENCIA", "CIENCIA"},
	{"BIENES NACIONALES", "BIENES"},
	{"MUJER", "MUJER"},
	{"DEPORTE", "DEPORTE"},
	{"PRESIDENCIA", "SEGPRES"},
	{"GOBIERNO", "SEGGOB"},
}

var ministryNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Ministerio\s+de\s+([^,\-]+)`),
	regexp.MustCompile(`(?i)Ministerio\s+del?\s+([^,\-]+)`),
	regexp.MustCompile(`(?i)Secretaría\s+General\s+de\s+([^,\-]+)`),
}

// ClassifyMinistry maps a budget line name to a ministry code and display name.
// Names without a known keyword fall under OTROS.
func ClassifyMinistry(lineName string) (code, name string) {
	code = ExtractMinistryCode(lineName)
	if code == otherMinistryCode {
		return code, otherMinistryName
	}
	name = ExtractMinistryName(lineName)
	if name == "" {
		name = strings.TrimSpace(lineName)
	}
	return code, name
}

// ExtractMinistryCode returns the code of the first keyword contained in the
// uppercased name, or OTROS.
func ExtractMinistryCode(lineName string) string {
	upper := strings.ToUpper(lineName)
	for _, mk := range ministryKeywords {
		if strings.Contains(upper, mk.keyword) {
			return mk.code
		}
	}
	return otherMinistryCode
}

// ExtractMinistryName derives "Ministerio de X" from the line name, or the
// text before the first dash when no pattern applies.
func ExtractMinistryName(lineName string) string {
	for _, pattern := range ministryNamePatterns {
		if m := pattern.FindStringSubmatch(lineName); m != nil {
			return "Ministerio de " + strings.TrimSpace(m[1])
		}
	}
	before, _, _ := strings.Cut(lineName, "-")
	return strings.TrimSpace(before)
}
