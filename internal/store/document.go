package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Document is the whole file-backed database: one collection per table.
type Document map[string][]Record

// NewDocument returns the empty skeleton with a collection for every table.
func NewDocument() Document {
	doc := make(Document, len(Schema))
	for _, t := range Schema {
		doc[t.Name] = []Record{}
	}
	return doc
}

// decodeDocument parses file content, normalising every row against the schema.
// Collections missing from the file are added empty; unknown ones are dropped.
func decodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string][]map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	doc := NewDocument()
	for _, t := range Schema {
		for _, row := range raw[t.Name] {
			if row == nil {
				continue
			}
			doc[t.Name] = append(doc[t.Name], t.normalize(row))
		}
	}
	return doc, nil
}

// apply runs a prepared operation against the document. changed reports
// whether the document must be persisted.
func (d Document) apply(t *Table, op Op, now time.Time) (rows []Record, changed bool, err error) {
	switch o := op.(type) {
	case SelectByID:
		return d.selectByID(t, o.ID), false, nil
	case SelectList:
		return d.selectList(t, o), false, nil
	case Insert:
		row, err := d.insert(t, o.Values, now)
		if err != nil {
			return nil, false, err
		}
		return []Record{row}, true, nil
	case Upsert:
		row, err := d.upsert(t, o, now)
		if err != nil {
			return nil, false, err
		}
		return []Record{row}, true, nil
	case Update:
		row, err := d.update(t, o.ID, o.Patch, now)
		if err != nil {
			return nil, false, err
		}
		if row == nil {
			return []Record{}, false, nil
		}
		return []Record{row}, true, nil
	case Delete:
		removed := d.delete(t, func(r Record) bool { return matchesDelete(t, r, o) })
		return []Record{}, removed > 0, nil
	default:
		return nil, false, fmt.Errorf("%w: %T", ErrInvalidOperation, op)
	}
}

func (d Document) indexByID(t *Table, id any) int {
	for i, r := range d[t.Name] {
		if valuesEqual(r[t.PrimaryKey], id) {
			return i
		}
	}
	return -1
}

func (d Document) selectByID(t *Table, id any) []Record {
	if i := d.indexByID(t, id); i >= 0 {
		return []Record{d[t.Name][i].Clone()}
	}
	return []Record{}
}

func (d Document) selectList(t *Table, o SelectList) []Record {
	var term string
	if o.Search != nil {
		term = strings.ToLower(strings.ReplaceAll(o.Search.Term, "%", ""))
	}

	items := make([]Record, 0, len(d[t.Name]))
	for _, r := range d[t.Name] {
		if !matchesAll(r, o.Where) {
			continue
		}
		if term != "" {
			text, _ := r[o.Search.Column].(string)
			if !strings.Contains(strings.ToLower(text), term) {
				continue
			}
		}
		items = append(items, r.Clone())
	}

	keys := o.Sort
	if len(keys) == 0 {
		keys = t.DefaultSort
	}
	keys = withPrimaryKeyTiebreak(t, keys)
	sort.SliceStable(items, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(items[i][k.Column], items[j][k.Column])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if o.Offset >= len(items) {
		return []Record{}
	}
	items = items[o.Offset:]
	if o.Limit > 0 && o.Limit < len(items) {
		items = items[:o.Limit]
	}
	return items
}

func withPrimaryKeyTiebreak(t *Table, keys []Sort) []Sort {
	for _, k := range keys {
		if k.Column == t.PrimaryKey {
			return keys
		}
	}
	out := make([]Sort, 0, len(keys)+1)
	out = append(out, keys...)
	return append(out, Sort{Column: t.PrimaryKey})
}

func matchesAll(r Record, conds []Cond) bool {
	for _, c := range conds {
		if !valuesEqual(r[c.Column], c.Value) {
			return false
		}
	}
	return true
}

func matchesDelete(t *Table, r Record, o Delete) bool {
	if o.ID != nil && !valuesEqual(r[t.PrimaryKey], o.ID) {
		return false
	}
	return matchesAll(r, o.Where)
}

// complete fills defaults, timestamps and serial ids for a new row.
func (d Document) complete(t *Table, values Record, now time.Time) (Record, error) {
	row := make(Record, len(t.Columns))
	for _, c := range t.Columns {
		v, present := values[c.Name]
		switch {
		case present && v != nil:
			row[c.Name] = v
		case c.Kind == KindSerial:
			row[c.Name] = d.nextSerial(t, c.Name)
		case c.AutoNow:
			row[c.Name] = now
		case c.Default != nil:
			row[c.Name] = c.Default
		case c.Nullable:
			row[c.Name] = nil
		default:
			return nil, fmt.Errorf("%w: column %s cannot be null", ErrInvalidValue, c.Name)
		}
	}
	return row, nil
}

func (d Document) nextSerial(t *Table, column string) int64 {
	var max int64
	for _, r := range d[t.Name] {
		if v, ok := r[column].(int64); ok && v > max {
			max = v
		}
	}
	return max + 1
}

func (d Document) insert(t *Table, values Record, now time.Time) (Record, error) {
	row, err := d.complete(t, values, now)
	if err != nil {
		return nil, err
	}
	if err := d.checkConstraints(t, row, -1); err != nil {
		return nil, err
	}
	d[t.Name] = append(d[t.Name], row)
	return row.Clone(), nil
}

func (d Document) upsert(t *Table, o Upsert, now time.Time) (Record, error) {
	for i, r := range d[t.Name] {
		match := true
		for _, c := range o.ConflictOn {
			if !valuesEqual(r[c], o.Values[c]) {
				match = false
				break
			}
		}
		if !match {
			continue
		}

		patch := make(Patch, len(o.Update))
		for _, c := range o.Update {
			if v, ok := o.Values[c]; ok {
				patch[c] = v
			}
		}
		return d.patchAt(t, i, patch, now)
	}
	return d.insert(t, o.Values, now)
}

func (d Document) update(t *Table, id any, patch Patch, now time.Time) (Record, error) {
	i := d.indexByID(t, id)
	if i < 0 {
		return nil, nil
	}
	return d.patchAt(t, i, patch, now)
}

func (d Document) patchAt(t *Table, i int, patch Patch, now time.Time) (Record, error) {
	row := d[t.Name][i].Clone()
	for name, v := range patch {
		row[name] = v
	}
	for _, name := range t.autoUpdateColumns() {
		if _, explicit := patch[name]; !explicit {
			row[name] = now
		}
	}
	if err := d.checkConstraints(t, row, i); err != nil {
		return nil, err
	}
	d[t.Name][i] = row
	return row.Clone(), nil
}

// checkConstraints enforces primary key, unique and foreign key constraints
// for row, ignoring the row at index self.
func (d Document) checkConstraints(t *Table, row Record, self int) error {
	keys := append([][]string{{t.PrimaryKey}}, t.Unique...)
	for _, key := range keys {
		for i, other := range d[t.Name] {
			if i == self {
				continue
			}
			if sameKey(key, row, other) {
				return fmt.Errorf("%w: %s (%s)", ErrConflict, t.Name, strings.Join(key, ", "))
			}
		}
	}

	for _, fk := range t.ForeignKeys {
		v := row[fk.Column]
		if v == nil {
			continue
		}
		ref, _ := Lookup(fk.RefTable)
		if d.indexByID(ref, v) < 0 {
			return fmt.Errorf("%w: %s.%s references missing %s row", ErrForeignKey, t.Name, fk.Column, ref.Name)
		}
	}
	return nil
}

func sameKey(key []string, a, b Record) bool {
	for _, c := range key {
		if !valuesEqual(a[c], b[c]) {
			return false
		}
	}
	return true
}

// delete removes matching rows and applies referential actions to rows in
// other tables. It returns the number of rows removed from t.
func (d Document) delete(t *Table, match func(Record) bool) int {
	kept := d[t.Name][:0:0]
	var removedIDs []any
	for _, r := range d[t.Name] {
		if match(r) {
			removedIDs = append(removedIDs, r[t.PrimaryKey])
			continue
		}
		kept = append(kept, r)
	}
	d[t.Name] = kept
	if len(removedIDs) == 0 {
		return 0
	}

	references := func(v any) bool {
		for _, id := range removedIDs {
			if valuesEqual(v, id) {
				return true
			}
		}
		return false
	}

	for _, other := range Schema {
		for _, fk := range other.ForeignKeys {
			if fk.RefTable != t.Name {
				continue
			}
			switch fk.OnDelete {
			case Cascade:
				d.delete(other, func(r Record) bool { return references(r[fk.Column]) })
			case SetNull:
				for _, r := range d[other.Name] {
					if references(r[fk.Column]) {
						r[fk.Column] = nil
					}
				}
			}
		}
	}
	return len(removedIDs)
}
