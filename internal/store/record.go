package store

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one row keyed by column name. Values always hold the canonical
// Go type of their column kind, whichever backend produced them:
//
//	text    string
//	decimal decimal.Decimal
//	int     int64
//	serial  int64
//	bool    bool
//	json    json.RawMessage
//	time    time.Time (UTC)
//
// A nil value is SQL NULL.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns a text column, or "" when NULL.
func (r Record) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// StringPtr returns a text column, or nil when NULL.
func (r Record) StringPtr(col string) *string {
	s, ok := r[col].(string)
	if !ok {
		return nil
	}
	return &s
}

// Decimal returns a decimal column, or zero when NULL.
func (r Record) Decimal(col string) decimal.Decimal {
	d, _ := r[col].(decimal.Decimal)
	return d
}

// DecimalPtr returns a decimal column, or nil when NULL.
func (r Record) DecimalPtr(col string) *decimal.Decimal {
	d, ok := r[col].(decimal.Decimal)
	if !ok {
		return nil
	}
	return &d
}

// Int returns an integer or serial column, or 0 when NULL.
func (r Record) Int(col string) int64 {
	i, _ := r[col].(int64)
	return i
}

// Bool returns a boolean column, or false when NULL.
func (r Record) Bool(col string) bool {
	b, _ := r[col].(bool)
	return b
}

// Time returns a timestamp column, or the zero time when NULL.
func (r Record) Time(col string) time.Time {
	t, _ := r[col].(time.Time)
	return t
}

// TimePtr returns a timestamp column, or nil when NULL.
func (r Record) TimePtr(col string) *time.Time {
	t, ok := r[col].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

// JSON returns the raw content of a JSON column, or nil when NULL.
func (r Record) JSON(col string) json.RawMessage {
	raw, _ := r[col].(json.RawMessage)
	return raw
}

// DecodeJSON unmarshals a JSON column into v. NULL or undecodable content
// leaves v untouched and reports false.
func (r Record) DecodeJSON(col string, v any) bool {
	raw := r.JSON(col)
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// normalize converts every known column of raw to its canonical type.
// Unknown keys are dropped. Values that cannot be converted fall back to the
// column default so that one corrupt field never aborts a read.
func (t *Table) normalize(raw map[string]any) Record {
	out := make(Record, len(t.Columns))
	for _, c := range t.Columns {
		v, present := raw[c.Name]
		if !present {
			continue
		}
		out[c.Name] = c.normalizeLenient(v)
	}
	return out
}

// normalizeLenient converts v, substituting the column default on failure.
func (c Column) normalizeLenient(v any) any {
	n, err := c.normalize(v)
	if err != nil {
		return c.Default
	}
	return n
}

// normalize converts v to the canonical type of the column kind.
func (c Column) normalize(v any) (any, error) {
	if v == nil {
		if c.Kind == KindJSON {
			return c.Default, nil
		}
		return nil, nil
	}

	switch c.Kind {
	case KindText:
		return toText(v)
	case KindDecimal:
		return toDecimal(v)
	case KindInt, KindSerial:
		return toInt(v)
	case KindBool:
		return toBool(v)
	case KindJSON:
		return toJSON(v, c.Default), nil
	case KindTime:
		return toTime(v)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %s", ErrInvalidValue, c.Kind)
	}
}

func invalid(v any, kind string) error {
	return fmt.Errorf("%w: cannot use %T as %s", ErrInvalidValue, v, kind)
}

func toText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case *string:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case []byte:
		return string(x), nil
	case json.Number:
		return x.String(), nil
	case int, int32, int64, float64, bool:
		return fmt.Sprint(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case driver.Valuer:
		return fromValuer(x, toText)
	default:
		return nil, invalid(v, "text")
	}
}

func toDecimal(v any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case decimal.NullDecimal:
		if !x.Valid {
			return nil, nil
		}
		return x.Decimal, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return decimalFromString(x.String(), v)
	case string:
		return decimalFromString(x, v)
	case []byte:
		return decimalFromString(string(x), v)
	case driver.Valuer:
		return fromValuer(x, toDecimal)
	default:
		return nil, invalid(v, "decimal")
	}
}

func decimalFromString(s string, orig any) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, invalid(orig, "decimal")
	}
	return d, nil
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return nil, invalid(v, "int")
		}
		return int64(x), nil
	case float32:
		return toInt(float64(x))
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case decimal.Decimal:
		if !x.IsInteger() {
			return nil, invalid(v, "int")
		}
		return x.IntPart(), nil
	case json.Number:
		return intFromString(x.String(), v)
	case string:
		return intFromString(x, v)
	case driver.Valuer:
		return fromValuer(x, toInt)
	default:
		return nil, invalid(v, "int")
	}
}

func intFromString(s string, orig any) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, invalid(orig, "int")
	}
	return toInt(f)
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case *bool:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case int, int8, int16, int32, int64, float32, float64, json.Number:
		i, err := toInt(x)
		if err != nil {
			// Non-integral numbers are truthy unless zero.
			return fmt.Sprint(x) != "0", nil
		}
		n, ok := i.(int64)
		return ok && n != 0, nil
	case string:
		s := strings.TrimSpace(strings.ToLower(x))
		if s == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			if s == "yes" || s == "y" || s == "on" {
				return true, nil
			}
			if s == "no" || s == "n" || s == "off" {
				return false, nil
			}
			return nil, invalid(v, "bool")
		}
		return b, nil
	default:
		return nil, invalid(v, "bool")
	}
}

// toJSON never fails: unparseable content becomes def.
func toJSON(v any, def any) any {
	var raw []byte
	switch x := v.(type) {
	case json.RawMessage:
		raw = x
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return def
		}
		raw = b
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return def
	}
	if bytes.Equal(raw, []byte("null")) {
		return def
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return def
	}
	return json.RawMessage(buf.Bytes())
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return nil, nil
		}
		return x.UTC(), nil
	case *time.Time:
		if x == nil || x.IsZero() {
			return nil, nil
		}
		return x.UTC(), nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case int:
		return time.UnixMilli(int64(x)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(x)).UTC(), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil, invalid(v, "time")
		}
		return time.UnixMilli(i).UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(i).UTC(), nil
		}
		return nil, invalid(v, "time")
	case driver.Valuer:
		return fromValuer(x, toTime)
	default:
		return nil, invalid(v, "time")
	}
}

func fromValuer(v driver.Valuer, next func(any) (any, error)) (any, error) {
	dv, err := v.Value()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if dv == nil {
		return nil, nil
	}
	if _, loops := dv.(driver.Valuer); loops {
		return nil, invalid(v, "value")
	}
	return next(dv)
}

// normalizeGeneric converts driver values whose column is not described by
// the schema into plain Go values.
func normalizeGeneric(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64, decimal.Decimal, json.RawMessage:
		return x
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int:
		return int64(x)
	case time.Time:
		return x.UTC()
	case []byte:
		return string(x)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return json.RawMessage(b)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return nil
		}
		if s, ok := dv.(string); ok {
			if d, err := decimal.NewFromString(s); err == nil {
				return d
			}
			return s
		}
		return normalizeGeneric(dv)
	default:
		return x
	}
}

// isFalsy reports whether a canonical value counts as "not supplied" under
// the positional partial-update convention.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case decimal.Decimal:
		return x.IsZero()
	case int64:
		return x == 0
	case bool:
		return !x
	case json.RawMessage:
		return len(x) == 0
	case time.Time:
		return x.IsZero()
	default:
		return false
	}
}

// compareValues orders canonical values; NULL sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case json.RawMessage:
		if y, ok := b.(json.RawMessage); ok {
			return bytes.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// valuesEqual reports SQL-style equality; NULL never equals anything.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return compareValues(a, b) == 0
}
