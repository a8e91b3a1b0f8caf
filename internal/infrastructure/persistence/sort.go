package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// orderSortColumns are the order columns an admin listing may sort on
var orderSortColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"status":         true,
	"payment_status": true,
	"payment_method": true,
	"subtotal":       true,
	"total":          true,
	"paid_at":        true,
}

// sortClause turns user supplied sort options into a quoted ORDER BY column.
// Unknown columns fall back to fallback and only "asc" sorts ascending.
func sortClause(field, dir string, allowed map[string]bool, fallback string) clause.OrderByColumn {
	column := strings.TrimSpace(field)
	if !allowed[column] {
		column = fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}
