// Package export renders a report result set into CSV, PDF, Word or Excel.
// All encoders consume the same Table contract and share one cell
// renderer, so a missing value looks identical in every format.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/achievo/achievement-portal/internal/fields"
	"github.com/achievo/achievement-portal/internal/models"
)

// MissingCell is the placeholder for absent scalar values.
const MissingCell = "-"

// CertificateLabel is the fixed link text shown instead of raw file paths.
const CertificateLabel = "View Certificate"

const listSeparator = "; "

// Table is the common encoder input: ordered field keys, key→label map
// and flat rows. Encoders never mutate Rows.
type Table struct {
	Fields []string
	Labels map[string]string
	Rows   []models.Row
}

// Header resolves display labels for the field keys, falling back to the
// key itself.
func (t Table) Header() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		if l, ok := t.Labels[f]; ok && l != "" {
			out[i] = l
		} else {
			out[i] = f
		}
	}
	return out
}

// cellString renders one cell. Missing or nil scalars become MissingCell;
// list values are joined with listSeparator (an empty list renders as an
// empty string, not the placeholder).
func cellString(row models.Row, field string) string {
	v, ok := row[field]
	if !ok || v == nil {
		return MissingCell
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return MissingCell
		}
		return x
	case *string:
		if x == nil || *x == "" {
			return MissingCell
		}
		return *x
	case []string:
		return strings.Join(x, listSeparator)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, listSeparator)
	case time.Time:
		if x.IsZero() {
			return MissingCell
		}
		return x.Format("02 Jan 2006")
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.1f", x)
	default:
		return fmt.Sprint(x)
	}
}

// displayCell is cellString with certificate-path fields replaced by the
// fixed link label. PDF and Word tables use it; CSV keeps the raw path so
// spreadsheets stay greppable.
func displayCell(row models.Row, field string) string {
	s := cellString(row, field)
	if s != MissingCell && fields.IsCertificateField(field) {
		return CertificateLabel
	}
	return s
}
