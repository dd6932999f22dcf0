package database

import (
	"fmt"
	"strings"
)

// searchColumns are the columns matched by the free-text filter.
var searchColumns = []string{
	"title", "subtitle", "description", "bairro", "cidade", "tipo", "ref_code",
}

// SearchFilters is the bag of optional filters accepted by the property
// listings. Nil pointers mean "not set"; all set filters are AND-ed.
type SearchFilters struct {
	Search          string
	TransactionType string
	AreaMin         *int
	AreaMax         *int
	QuartosMin      *int
	QuartosMax      *int
	BanheirosMin    *int
	BanheirosMax    *int
	VagasMin        *int
	VagasMax        *int
}

// BuildWhere translates the filters into a WHERE fragment with positional
// placeholders and the matching bound values. Every condition appends its
// clause and its values in the same step, so the placeholder count always
// equals len(args). An empty filter set yields an empty clause.
func (f SearchFilters) BuildWhere() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		parts := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			parts[i] = fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE ?", col)
			args = append(args, term)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	bound := func(clause string, v *int) {
		if v != nil {
			clauses = append(clauses, clause)
			args = append(args, *v)
		}
	}

	bound("area_util >= ?", f.AreaMin)
	bound("area_util <= ?", f.AreaMax)
	bound("quartos >= ?", f.QuartosMin)
	bound("quartos <= ?", f.QuartosMax)
	bound("banheiros >= ?", f.BanheirosMin)
	bound("banheiros <= ?", f.BanheirosMax)
	bound("vagas >= ?", f.VagasMin)
	bound("vagas <= ?", f.VagasMax)

	if f.TransactionType != "" {
		clauses = append(clauses, "transaction_type = ?")
		args = append(args, f.TransactionType)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
