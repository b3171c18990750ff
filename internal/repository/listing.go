package repository

import (
	"fmt"
	"strings"
)

// ListFilter captures catalog search parameters.
type ListFilter struct {
	Search     string
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
	OnlyListed bool
}

// listSpec describes one catalog table for buildListQuery.
type listSpec struct {
	table      string
	columns    string
	searchable []string
	sortable   map[string]string
	hasSell    bool
}

var defaultSortable = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
}

// buildListQuery returns the page query, the matching count query and their
// shared args. Sort keys outside spec.sortable fall back to created_at.
func buildListQuery(spec listSpec, filter ListFilter) (string, string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OnlyListed && spec.hasSell {
		clauses = append(clauses, "sell = TRUE")
	}
	if term := strings.TrimSpace(filter.Search); term != "" && len(spec.searchable) > 0 {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		ors := make([]string, len(spec.searchable))
		for i, col := range spec.searchable {
			ors[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, placeholder)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	where := strings.Join(clauses, " AND ")

	column, ok := spec.sortable[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s %s, id ASC`,
		spec.columns, spec.table, where, column, direction)
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, spec.table, where)
	return query, countQuery, args
}
