package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatement(t *testing.T) {
	productCols := selectColumns(Products)
	cartCols := selectColumns(CartItems)

	tests := []struct {
		name     string
		op       Op
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "select by id for update",
			op:       SelectByID{Table: TableProducts, ID: "p1", ForUpdate: true},
			wantSQL:  `SELECT ` + productCols + ` FROM "products" WHERE "id" = $1 FOR UPDATE`,
			wantArgs: []any{"p1"},
		},
		{
			name: "select list with search and paging",
			op: SelectList{
				Table:  TableProducts,
				Where:  []Cond{Eq("category", "shirts")},
				Search: &Search{Column: "title", Term: "%sh%irt_%"},
				Limit:  10,
				Offset: 20,
			},
			wantSQL: `SELECT ` + productCols + ` FROM "products" WHERE "category" = $1 AND "title" ILIKE $2` +
				` ORDER BY "created_at" DESC NULLS LAST, "id" ASC NULLS FIRST LIMIT $3 OFFSET $4`,
			wantArgs: []any{"shirts", `%shirt\_%`, 10, 20},
		},
		{
			name:     "select list with explicit primary key sort",
			op:       SelectList{Table: TableCartItems, Sort: []Sort{{Column: "id", Desc: true}}},
			wantSQL:  `SELECT ` + cartCols + ` FROM "cart_items" ORDER BY "id" DESC NULLS LAST`,
			wantArgs: nil,
		},
		{
			name: "insert binds decimals and json as text",
			op: Insert{Table: TableProducts, Values: Record{
				"id":     "p1",
				"title":  "Denim Jacket",
				"price":  "2499.00",
				"images": []string{"a.jpg"},
			}},
			wantSQL: `INSERT INTO "products" ("id", "title", "price", "images") VALUES ($1, $2, $3, $4)` +
				` RETURNING ` + productCols,
			wantArgs: []any{"p1", "Denim Jacket", "2499", `["a.jpg"]`},
		},
		{
			name: "upsert on composite key",
			op: Upsert{
				Table:      TableCartItems,
				Values:     Record{"user_id": "u1", "product_id": "p1", "quantity": 3},
				ConflictOn: []string{"user_id", "product_id"},
				Update:     []string{"quantity"},
			},
			wantSQL: `INSERT INTO "cart_items" ("user_id", "product_id", "quantity") VALUES ($1, $2, $3)` +
				` ON CONFLICT ("user_id", "product_id") DO UPDATE SET "quantity" = EXCLUDED."quantity", "updated_at" = NOW()` +
				` RETURNING ` + cartCols,
			wantArgs: []any{"u1", "p1", int64(3)},
		},
		{
			name:     "update sets patch columns and timestamps",
			op:       Update{Table: TableProducts, ID: "p1", Patch: Patch{"stock": 0, "compare_at_price": nil}},
			wantSQL:  `UPDATE "products" SET "compare_at_price" = $1, "stock" = $2, "updated_at" = NOW() WHERE "id" = $3 RETURNING ` + productCols,
			wantArgs: []any{nil, int64(0), "p1"},
		},
		{
			name:     "empty patch on a table without timestamps reads the row",
			op:       Update{Table: TableAddresses, ID: 7, Patch: Patch{}},
			wantSQL:  `SELECT ` + selectColumns(Addresses) + ` FROM "addresses" WHERE "id" = $1`,
			wantArgs: []any{int64(7)},
		},
		{
			name:     "delete by conditions",
			op:       Delete{Table: TableCartItems, Where: []Cond{Eq("user_id", "u1"), Eq("product_id", "p1")}},
			wantSQL:  `DELETE FROM "cart_items" WHERE "user_id" = $1 AND "product_id" = $2`,
			wantArgs: []any{"u1", "p1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, prepared, err := prepareOp(tt.op)
			require.NoError(t, err)

			stmt, err := buildStatement(table, prepared)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.sql)
			assert.Equal(t, tt.wantArgs, stmt.args)
		})
	}
}

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements()
	require.NotEmpty(t, stmts)

	joined := strings.Join(stmts, ";\n")
	for _, table := range Schema {
		assert.Contains(t, joined, `CREATE TABLE IF NOT EXISTS "`+table.Name+`"`)
	}
	assert.Contains(t, joined, `"price" NUMERIC(12,2) NOT NULL DEFAULT 0`)
	assert.Contains(t, joined, `"images" JSONB NOT NULL DEFAULT '[]'::jsonb`)
	assert.Contains(t, joined, `"id" BIGSERIAL PRIMARY KEY`)
	assert.Contains(t, joined, `UNIQUE ("user_id", "product_id")`)
	assert.Contains(t, joined, `FOREIGN KEY ("user_id") REFERENCES "users" ("id") ON DELETE SET NULL`)
	assert.Contains(t, joined, `CREATE INDEX IF NOT EXISTS "idx_products_category" ON "products" ("category")`)

	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") || strings.HasPrefix(s, "CREATE INDEX IF NOT EXISTS"), s)
	}
}
