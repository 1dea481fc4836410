package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Op is a typed storage operation. The set of operations is closed:
// SelectByID, SelectList, Insert, Upsert, Update and Delete.
type Op interface {
	// TableName returns the table the operation targets.
	TableName() string

	prepare(t *Table) (Op, error)
}

// Cond is an equality predicate.
type Cond struct {
	Column string
	Value  any
}

// Eq builds an equality predicate.
func Eq(column string, value any) Cond {
	return Cond{Column: column, Value: value}
}

// Search is a case-insensitive substring match. Percent signs in Term are
// ignored.
type Search struct {
	Column string
	Term   string
}

// Sort orders results by a column.
type Sort struct {
	Column string
	Desc   bool
}

// Patch lists the columns an update changes. A key mapped to nil clears the
// column; columns without a key are left unchanged.
type Patch map[string]any

// SelectByID returns the row with the given primary key, if any.
type SelectByID struct {
	Table string
	ID    any
	// ForUpdate locks the row until the surrounding transaction ends.
	ForUpdate bool
}

// SelectList returns rows matching every condition, ordered and paged.
// A zero Limit returns all rows.
type SelectList struct {
	Table  string
	Where  []Cond
	Search *Search
	Sort   []Sort
	Limit  int
	Offset int
}

// Insert adds a row and returns it. A missing text primary key is generated.
type Insert struct {
	Table  string
	Values Record
}

// Upsert inserts a row or, when a row with the same ConflictOn values exists,
// overwrites its Update columns. All inserted non-key columns are overwritten
// when Update is empty.
type Upsert struct {
	Table      string
	Values     Record
	ConflictOn []string
	Update     []string
}

// Update applies a patch to the row with the given primary key and returns
// the updated row, or nothing when the row does not exist.
type Update struct {
	Table string
	ID    any
	Patch Patch
}

// Delete removes the row with the given primary key, or every row matching
// Where. Referencing rows are cascaded according to the schema.
type Delete struct {
	Table string
	ID    any
	Where []Cond
}

func (o SelectByID) TableName() string { return o.Table }
func (o SelectList) TableName() string { return o.Table }
func (o Insert) TableName() string     { return o.Table }
func (o Upsert) TableName() string     { return o.Table }
func (o Update) TableName() string     { return o.Table }
func (o Delete) TableName() string     { return o.Table }

// errNoMatch is reported by prepareOp for lookups whose key cannot match any
// row. Backends answer such operations with an empty result.
var errNoMatch = errors.New("key matches no row")

// prepareOp resolves the table and converts every value in op to its
// canonical type.
func prepareOp(op Op) (*Table, Op, error) {
	if op == nil {
		return nil, nil, fmt.Errorf("%w: nil operation", ErrInvalidOperation)
	}
	t, ok := Lookup(op.TableName())
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTable, op.TableName())
	}
	prepared, err := op.prepare(t)
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", opName(op), t.Name, err)
	}
	return t, prepared, nil
}

func opName(op Op) string {
	switch op.(type) {
	case SelectByID:
		return "select by id"
	case SelectList:
		return "select list"
	case Insert:
		return "insert"
	case Upsert:
		return "upsert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("%T", op)
	}
}

func (o SelectByID) prepare(t *Table) (Op, error) {
	id, err := normalizeKey(t, o.ID)
	if err != nil {
		return nil, err
	}
	o.ID = id
	return o, nil
}

func (o SelectList) prepare(t *Table) (Op, error) {
	where, err := normalizeConds(t, o.Where)
	if err != nil {
		return nil, err
	}
	o.Where = where

	if o.Search != nil {
		if !t.HasColumn(o.Search.Column) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, o.Search.Column)
		}
	}
	for _, s := range o.Sort {
		if !t.HasColumn(s.Column) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, s.Column)
		}
	}
	if o.Limit < 0 || o.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", ErrInvalidOperation)
	}
	return o, nil
}

func (o Insert) prepare(t *Table) (Op, error) {
	values, err := normalizeValues(t, o.Values)
	if err != nil {
		return nil, err
	}
	o.Values = values
	return o, nil
}

func (o Upsert) prepare(t *Table) (Op, error) {
	if len(o.ConflictOn) == 0 {
		return nil, fmt.Errorf("%w: upsert needs conflict columns", ErrInvalidOperation)
	}
	values, err := normalizeValues(t, o.Values)
	if err != nil {
		return nil, err
	}
	for _, c := range o.ConflictOn {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		if values[c] == nil {
			return nil, fmt.Errorf("%w: conflict column %q has no value", ErrInvalidOperation, c)
		}
	}

	update := o.Update
	if len(update) == 0 {
		for _, c := range t.Columns {
			if _, ok := values[c.Name]; ok && !contains(o.ConflictOn, c.Name) && c.Name != t.PrimaryKey && !c.AutoNow {
				update = append(update, c.Name)
			}
		}
	}
	for _, c := range update {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}

	o.Values = values
	o.Update = update
	return o, nil
}

func (o Update) prepare(t *Table) (Op, error) {
	id, err := normalizeKey(t, o.ID)
	if err != nil {
		return nil, err
	}
	if _, ok := o.Patch[t.PrimaryKey]; ok {
		return nil, fmt.Errorf("%w: primary key cannot be patched", ErrInvalidOperation)
	}

	patch := make(Patch, len(o.Patch))
	for name, v := range o.Patch {
		n, err := normalizeColumn(t, name, v)
		if err != nil {
			return nil, err
		}
		c, _ := t.Column(name)
		if n == nil && !c.Nullable {
			if c.Default == nil {
				return nil, fmt.Errorf("%w: column %s cannot be null", ErrInvalidValue, name)
			}
			n = c.Default
		}
		patch[name] = n
	}

	o.ID = id
	o.Patch = patch
	return o, nil
}

func (o Delete) prepare(t *Table) (Op, error) {
	if o.ID == nil && len(o.Where) == 0 {
		return nil, fmt.Errorf("%w: delete needs an id or conditions", ErrInvalidOperation)
	}
	if o.ID != nil {
		id, err := normalizeKey(t, o.ID)
		if err != nil {
			return nil, err
		}
		o.ID = id
	}
	where, err := normalizeConds(t, o.Where)
	if err != nil {
		return nil, err
	}
	o.Where = where
	return o, nil
}

// normalizeKey converts a primary key used to find a row. A value that cannot
// hold the key's type can match no row and reports errNoMatch.
func normalizeKey(t *Table, v any) (any, error) {
	id, err := normalizeColumn(t, t.PrimaryKey, v)
	if errors.Is(err, ErrInvalidValue) {
		return nil, errNoMatch
	}
	return id, err
}

func normalizeColumn(t *Table, name string, v any) (any, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	n, err := c.normalize(v)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	return n, nil
}

func normalizeConds(t *Table, conds []Cond) ([]Cond, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]Cond, len(conds))
	for i, c := range conds {
		v, err := normalizeColumn(t, c.Column, c.Value)
		if err != nil {
			return nil, err
		}
		out[i] = Cond{Column: c.Column, Value: v}
	}
	return out, nil
}

func normalizeValues(t *Table, values Record) (Record, error) {
	out := make(Record, len(values)+1)
	for name, v := range values {
		n, err := normalizeColumn(t, name, v)
		if err != nil {
			return nil, err
		}
		out[name] = n
	}

	pk := t.primary()
	if pk.Kind == KindText {
		if id, _ := out[pk.Name].(string); id == "" {
			out[pk.Name] = uuid.NewString()
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
