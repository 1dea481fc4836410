package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Table names.
const (
	TableUsers     = "users"
	TableAddresses = "addresses"
	TableProducts  = "products"
	TableCartItems = "cart_items"
	TableOrders    = "orders"
)

// Kind is the logical type of a column. Both backends agree on the Go
// representation of each kind (see Record).
type Kind int

const (
	KindText Kind = iota
	KindDecimal
	KindInt
	KindBool
	KindJSON
	KindTime
	KindSerial
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDecimal:
		return "decimal"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindJSON:
		return "json"
	case KindTime:
		return "time"
	case KindSerial:
		return "serial"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column describes a single column.
type Column struct {
	Name     string
	Kind     Kind
	Nullable bool
	// Default is the canonical value used when an insert omits the column.
	// For JSON columns it is also the substitute for malformed content.
	Default any
	// AutoNow columns are set to the current time on insert when omitted.
	AutoNow bool
	// AutoUpdate columns are set to the current time on every update.
	AutoUpdate bool
}

// OnDelete is the referential action taken when a referenced row is deleted.
type OnDelete string

const (
	Cascade OnDelete = "CASCADE"
	SetNull OnDelete = "SET NULL"
)

// ForeignKey links a column to the primary key of another table.
type ForeignKey struct {
	Column   string
	RefTable string
	OnDelete OnDelete
}

// Table describes one entity collection. It is the single description used
// to generate PostgreSQL DDL and to drive the file backend.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey string
	// SearchColumn is matched by case-insensitive substring searches.
	SearchColumn string
	// Positional is the field order bound by positional statement parameters.
	Positional  []string
	Unique      [][]string
	Indexes     [][]string
	ForeignKeys []ForeignKey
	DefaultSort []Sort

	columns map[string]int
}

func (t *Table) init() *Table {
	t.columns = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.columns[c.Name] = i
	}
	return t
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.columns[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// HasColumn reports whether the table defines the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// primary returns the primary key column.
func (t *Table) primary() Column {
	c, _ := t.Column(t.PrimaryKey)
	return c
}

// updatePositional is the positional order used by partial updates:
// the insert order without the primary key, which is bound last.
func (t *Table) updatePositional() []string {
	out := make([]string, 0, len(t.Positional))
	for _, name := range t.Positional {
		if name != t.PrimaryKey {
			out = append(out, name)
		}
	}
	return out
}

// autoUpdateColumns returns the columns refreshed on every update.
func (t *Table) autoUpdateColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.AutoUpdate {
			out = append(out, c.Name)
		}
	}
	return out
}

func timestamps() []Column {
	return []Column{
		{Name: "created_at", Kind: KindTime, AutoNow: true},
		{Name: "updated_at", Kind: KindTime, AutoNow: true, AutoUpdate: true},
	}
}

func emptyList() json.RawMessage {
	return json.RawMessage("[]")
}

var (
	// Users holds accounts, their refresh tokens, wishlist and the single-slot
	// reset token and OTP state.
	Users = (&Table{
		Name: TableUsers,
		Columns: append([]Column{
			{Name: "id", Kind: KindText},
			{Name: "name", Kind: KindText, Nullable: true},
			{Name: "email", Kind: KindText},
			{Name: "password", Kind: KindText, Nullable: true},
			{Name: "phone", Kind: KindText, Nullable: true},
			{Name: "is_phone_verified", Kind: KindBool, Default: false},
			{Name: "is_verified", Kind: KindBool, Default: false},
			{Name: "refresh_tokens", Kind: KindJSON, Default: emptyList()},
			{Name: "wishlist", Kind: KindJSON, Default: emptyList()},
			{Name: "reset_token", Kind: KindText, Nullable: true},
			{Name: "reset_expires", Kind: KindTime, Nullable: true},
			{Name: "otp_code", Kind: KindText, Nullable: true},
			{Name: "otp_expires", Kind: KindTime, Nullable: true},
		}, timestamps()...),
		PrimaryKey:   "id",
		SearchColumn: "name",
		Positional:   []string{"id", "name", "email", "password", "phone", "is_phone_verified", "is_verified"},
		Unique:       [][]string{{"email"}},
		Indexes:      [][]string{{"reset_token"}},
		DefaultSort:  []Sort{{Column: "created_at", Desc: true}},
	}).init()

	// Addresses belong to exactly one user and are removed with it.
	Addresses = (&Table{
		Name: TableAddresses,
		Columns: []Column{
			{Name: "id", Kind: KindSerial},
			{Name: "user_id", Kind: KindText},
			{Name: "full_name", Kind: KindText, Nullable: true},
			{Name: "phone", Kind: KindText, Nullable: true},
			{Name: "pincode", Kind: KindText, Nullable: true},
			{Name: "state", Kind: KindText, Nullable: true},
			{Name: "district", Kind: KindText, Nullable: true},
			{Name: "city", Kind: KindText, Nullable: true},
			{Name: "address1", Kind: KindText, Nullable: true},
			{Name: "landmark", Kind: KindText, Nullable: true},
			{Name: "created_at", Kind: KindTime, AutoNow: true},
		},
		PrimaryKey:   "id",
		SearchColumn: "city",
		Positional:   []string{"user_id", "full_name", "phone", "pincode", "state", "district", "city", "address1", "landmark"},
		Indexes:      [][]string{{"user_id"}},
		ForeignKeys:  []ForeignKey{{Column: "user_id", RefTable: TableUsers, OnDelete: Cascade}},
		DefaultSort:  []Sort{{Column: "id", Desc: true}},
	}).init()

	// Products is the catalogue.
	Products = (&Table{
		Name: TableProducts,
		Columns: append([]Column{
			{Name: "id", Kind: KindText},
			{Name: "title", Kind: KindText},
			{Name: "description", Kind: KindText, Nullable: true},
			{Name: "price", Kind: KindDecimal, Default: decimal.Zero},
			{Name: "compare_at_price", Kind: KindDecimal, Nullable: true},
			{Name: "category", Kind: KindText, Nullable: true},
			{Name: "images", Kind: KindJSON, Default: emptyList()},
			{Name: "sku", Kind: KindText, Nullable: true},
			{Name: "stock", Kind: KindInt, Default: int64(0)},
			{Name: "is_active", Kind: KindBool, Default: true},
			{Name: "attributes", Kind: KindJSON, Nullable: true},
		}, timestamps()...),
		PrimaryKey:   "id",
		SearchColumn: "title",
		Positional: []string{
			"id", "title", "description", "price", "compare_at_price", "category",
			"images", "sku", "stock", "is_active", "attributes",
		},
		Indexes:     [][]string{{"category"}, {"created_at"}},
		DefaultSort: []Sort{{Column: "created_at", Desc: true}},
	}).init()

	// CartItems holds one row per (user, product).
	CartItems = (&Table{
		Name: TableCartItems,
		Columns: append([]Column{
			{Name: "id", Kind: KindSerial},
			{Name: "user_id", Kind: KindText},
			{Name: "product_id", Kind: KindText},
			{Name: "quantity", Kind: KindInt, Default: int64(1)},
		}, timestamps()...),
		PrimaryKey: "id",
		Positional: []string{"user_id", "product_id", "quantity"},
		Unique:     [][]string{{"user_id", "product_id"}},
		Indexes:    [][]string{{"user_id"}},
		ForeignKeys: []ForeignKey{
			{Column: "user_id", RefTable: TableUsers, OnDelete: Cascade},
			{Column: "product_id", RefTable: TableProducts, OnDelete: Cascade},
		},
		DefaultSort: []Sort{{Column: "id"}},
	}).init()

	// Orders embed item and address snapshots as JSON.
	Orders = (&Table{
		Name: TableOrders,
		Columns: append([]Column{
			{Name: "id", Kind: KindText},
			{Name: "user_id", Kind: KindText, Nullable: true},
			{Name: "items", Kind: KindJSON, Default: emptyList()},
			{Name: "total", Kind: KindDecimal, Default: decimal.Zero},
			{Name: "shipping_address", Kind: KindJSON, Nullable: true},
			{Name: "payment_method", Kind: KindText, Nullable: true},
			{Name: "payment_transaction_id", Kind: KindText, Nullable: true},
			{Name: "payment_status", Kind: KindText, Nullable: true},
			{Name: "status", Kind: KindText, Default: "Pending"},
		}, timestamps()...),
		PrimaryKey:   "id",
		SearchColumn: "status",
		Positional: []string{
			"id", "user_id", "items", "total", "shipping_address", "payment_method",
			"payment_transaction_id", "payment_status", "status",
		},
		Indexes:     [][]string{{"user_id"}},
		ForeignKeys: []ForeignKey{{Column: "user_id", RefTable: TableUsers, OnDelete: SetNull}},
		DefaultSort: []Sort{{Column: "created_at", Desc: true}},
	}).init()
)

// Schema lists every table in dependency order.
var Schema = []*Table{Users, Addresses, Products, CartItems, Orders}

// Lookup finds a table by name.
func Lookup(name string) (*Table, bool) {
	for _, t := range Schema {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// CreateStatements returns the idempotent PostgreSQL DDL for the table.
func (t *Table) CreateStatements() []string {
	defs := make([]string, 0, len(t.Columns)+len(t.Unique)+len(t.ForeignKeys))
	for _, c := range t.Columns {
		defs = append(defs, columnDDL(c, c.Name == t.PrimaryKey))
	}
	for _, u := range t.Unique {
		defs = append(defs, fmt.Sprintf("UNIQUE (%s)", quoteColumns(u)))
	}
	for _, fk := range t.ForeignKeys {
		ref, _ := Lookup(fk.RefTable)
		defs = append(defs, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			quoteIdent(fk.Column), quoteIdent(fk.RefTable), quoteIdent(ref.PrimaryKey), fk.OnDelete,
		))
	}

	stmts := []string{fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		quoteIdent(t.Name), strings.Join(defs, ",\n\t"),
	)}
	for _, idx := range t.Indexes {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quoteIdent("idx_"+t.Name+"_"+strings.Join(idx, "_")), quoteIdent(t.Name), quoteColumns(idx),
		))
	}
	return stmts
}

// SchemaStatements returns the DDL for every table in dependency order.
func SchemaStatements() []string {
	var stmts []string
	for _, t := range Schema {
		stmts = append(stmts, t.CreateStatements()...)
	}
	return stmts
}

func columnDDL(c Column, primary bool) string {
	var b strings.Builder
	b.WriteString(quoteIdent(c.Name))
	b.WriteString(" ")
	b.WriteString(sqlType(c.Kind))
	if primary {
		b.WriteString(" PRIMARY KEY")
		return b.String()
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if def := sqlDefault(c); def != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(def)
	}
	return b.String()
}

func sqlType(k Kind) string {
	switch k {
	case KindDecimal:
		return "NUMERIC(12,2)"
	case KindInt:
		return "INTEGER"
	case KindBool:
		return "BOOLEAN"
	case KindJSON:
		return "JSONB"
	case KindTime:
		return "TIMESTAMPTZ"
	case KindSerial:
		return "BIGSERIAL"
	default:
		return "TEXT"
	}
}

func sqlDefault(c Column) string {
	if c.AutoNow {
		return "NOW()"
	}
	switch v := c.Default.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return fmt.Sprintf("%d", v)
	case decimal.Decimal:
		return v.String()
	case json.RawMessage:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'::jsonb"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return ""
	}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteColumns(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
