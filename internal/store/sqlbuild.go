package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// statement is generated SQL with its bound arguments.
type statement struct {
	sql  string
	args []any
}

// argList accumulates bound arguments and hands out $n placeholders.
type argList []any

func (a *argList) add(v any) string {
	*a = append(*a, bindValue(v))
	return fmt.Sprintf("$%d", len(*a))
}

// bindValue converts canonical values into forms pgx sends in text format,
// so NUMERIC and JSONB columns accept them without type hints.
func bindValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case json.RawMessage:
		return string(x)
	default:
		return v
	}
}

// buildStatement renders a prepared operation as PostgreSQL.
func buildStatement(t *Table, op Op) (statement, error) {
	switch o := op.(type) {
	case SelectByID:
		return buildSelectByID(t, o), nil
	case SelectList:
		return buildSelectList(t, o), nil
	case Insert:
		return buildInsert(t, o.Values, ""), nil
	case Upsert:
		return buildUpsert(t, o), nil
	case Update:
		return buildUpdate(t, o), nil
	case Delete:
		return buildDelete(t, o), nil
	default:
		return statement{}, fmt.Errorf("%w: %T", ErrInvalidOperation, op)
	}
}

func selectColumns(t *Table) string {
	return quoteColumns(t.ColumnNames())
}

func buildSelectByID(t *Table, o SelectByID) statement {
	var args argList
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		selectColumns(t), quoteIdent(t.Name), quoteIdent(t.PrimaryKey), args.add(o.ID))
	if o.ForUpdate {
		sql += " FOR UPDATE"
	}
	return statement{sql: sql, args: args}
}

// escapeLike escapes the LIKE metacharacters left after percent signs are
// stripped from a search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func buildSelectList(t *Table, o SelectList) statement {
	var args argList
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectColumns(t), quoteIdent(t.Name))

	var preds []string
	for _, c := range o.Where {
		preds = append(preds, fmt.Sprintf("%s = %s", quoteIdent(c.Column), args.add(c.Value)))
	}
	if o.Search != nil {
		if term := strings.ReplaceAll(o.Search.Term, "%", ""); term != "" {
			preds = append(preds, fmt.Sprintf("%s ILIKE %s", quoteIdent(o.Search.Column), args.add("%"+escapeLike(term)+"%")))
		}
	}
	if len(preds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(preds, " AND "))
	}

	keys := o.Sort
	if len(keys) == 0 {
		keys = t.DefaultSort
	}
	keys = withPrimaryKeyTiebreak(t, keys)
	order := make([]string, len(keys))
	for i, k := range keys {
		// NULL sorts lowest, as in the file backend.
		if k.Desc {
			order[i] = quoteIdent(k.Column) + " DESC NULLS LAST"
		} else {
			order[i] = quoteIdent(k.Column) + " ASC NULLS FIRST"
		}
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))

	if o.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %s", args.add(o.Limit))
	}
	if o.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %s", args.add(o.Offset))
	}
	return statement{sql: b.String(), args: args}
}

// insertColumns returns the non-NULL columns of values in schema order.
func insertColumns(t *Table, values Record) []string {
	var cols []string
	for _, c := range t.Columns {
		if v, ok := values[c.Name]; ok && v != nil {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

func buildInsert(t *Table, values Record, conflict string) statement {
	var args argList
	cols := insertColumns(t, values)

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s", quoteIdent(t.Name))
	if len(cols) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		placeholders := make([]string, len(cols))
		for i, c := range cols {
			placeholders[i] = args.add(values[c])
		}
		fmt.Fprintf(&b, " (%s) VALUES (%s)", quoteColumns(cols), strings.Join(placeholders, ", "))
	}
	b.WriteString(conflict)
	fmt.Fprintf(&b, " RETURNING %s", selectColumns(t))
	return statement{sql: b.String(), args: args}
}

func buildUpsert(t *Table, o Upsert) statement {
	var sets []string
	for _, c := range o.Update {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(c), quoteIdent(c)))
	}
	for _, c := range t.autoUpdateColumns() {
		if !contains(o.Update, c) {
			sets = append(sets, fmt.Sprintf("%s = NOW()", quoteIdent(c)))
		}
	}
	if len(sets) == 0 {
		// A no-op assignment still lets RETURNING report the existing row.
		c := quoteIdent(o.ConflictOn[0])
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	conflict := fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		quoteColumns(o.ConflictOn), strings.Join(sets, ", "))
	return buildInsert(t, o.Values, conflict)
}

func buildUpdate(t *Table, o Update) statement {
	var args argList
	var sets []string
	for _, c := range t.Columns {
		v, ok := o.Patch[c.Name]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(c.Name), args.add(v)))
	}
	for _, c := range t.autoUpdateColumns() {
		if _, ok := o.Patch[c]; !ok {
			sets = append(sets, fmt.Sprintf("%s = NOW()", quoteIdent(c)))
		}
	}
	if len(sets) == 0 {
		return buildSelectByID(t, SelectByID{Table: o.Table, ID: o.ID})
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
		quoteIdent(t.Name), strings.Join(sets, ", "),
		quoteIdent(t.PrimaryKey), args.add(o.ID), selectColumns(t))
	return statement{sql: sql, args: args}
}

func buildDelete(t *Table, o Delete) statement {
	var args argList
	var preds []string
	if o.ID != nil {
		preds = append(preds, fmt.Sprintf("%s = %s", quoteIdent(t.PrimaryKey), args.add(o.ID)))
	}
	for _, c := range o.Where {
		preds = append(preds, fmt.Sprintf("%s = %s", quoteIdent(c.Column), args.add(c.Value)))
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdent(t.Name), strings.Join(preds, " AND "))
	return statement{sql: sql, args: args}
}
