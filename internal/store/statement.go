package store

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	tableAfter = map[string]*regexp.Regexp{
		"SELECT": regexp.MustCompile(`\bFROM\s+([A-Z0-9_."]+)`),
		"DELETE": regexp.MustCompile(`\bFROM\s+([A-Z0-9_."]+)`),
		"INSERT": regexp.MustCompile(`\bINTO\s+([A-Z0-9_."]+)`),
		"UPDATE": regexp.MustCompile(`^UPDATE\s+([A-Z0-9_."]+)`),
	}
	idToken       = regexp.MustCompile(`\bID\b`)
	insertReplace = regexp.MustCompile(`^INSERT\s+OR\s+REPLACE\b`)
)

// ParseStatement classifies a raw statement into a typed operation, for
// callers still written against positional SQL text. The dialect is closed:
//
//   - SELECT ... FROM t WHERE ... id ...    SelectByID with params[0]
//   - SELECT ... FROM t ...                 SelectList; with three or more params,
//     params[0] searches the table's search column and the last two params are
//     limit and offset
//   - INSERT [OR REPLACE] INTO t ...        Insert (or Upsert on the primary key)
//     with params bound to the table's positional field order
//   - UPDATE t ... WHERE ...                Update of the row whose id is the last
//     param; the other params follow the positional order without the id, and
//     falsy values leave their field unchanged
//   - DELETE FROM t ...                     Delete by params[0]
//
// Matching ignores case and whitespace layout. Anything else returns
// ErrUnrecognizedStatement.
func ParseStatement(sqlText string, params []any) (Op, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(sqlText), " "))
	verb, _, _ := strings.Cut(s, " ")

	t, ok := statementTable(s, verb)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedStatement, sqlText)
	}

	switch verb {
	case "SELECT":
		return parseSelect(t, s, params), nil
	case "INSERT":
		values := positionalValues(t, t.Positional, params)
		if insertReplace.MatchString(s) {
			return Upsert{Table: t.Name, Values: values, ConflictOn: []string{t.PrimaryKey}}, nil
		}
		return Insert{Table: t.Name, Values: values}, nil
	case "UPDATE":
		if !strings.Contains(s, " WHERE ") || len(params) == 0 {
			break
		}
		return parseUpdate(t, params), nil
	case "DELETE":
		if len(params) == 0 || params[0] == nil {
			break
		}
		return Delete{Table: t.Name, ID: params[0]}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedStatement, sqlText)
}

// statementTable finds the table a normalised statement targets.
func statementTable(s, verb string) (*Table, bool) {
	re, ok := tableAfter[verb]
	if !ok {
		return nil, false
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	name := strings.ToLower(strings.ReplaceAll(m[1], `"`, ""))
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return Lookup(name)
}

// tableForStatement resolves the target table of raw SQL text, if any.
func tableForStatement(sqlText string) (*Table, bool) {
	s := strings.ToUpper(strings.Join(strings.Fields(sqlText), " "))
	verb, _, _ := strings.Cut(s, " ")
	return statementTable(s, verb)
}

func parseSelect(t *Table, s string, params []any) Op {
	if _, where, found := strings.Cut(s, " WHERE "); found && idToken.MatchString(where) && len(params) > 0 {
		return SelectByID{Table: t.Name, ID: params[0]}
	}

	op := SelectList{Table: t.Name}
	if len(params) < 3 {
		return op
	}
	if term, ok := params[0].(string); ok && term != "" && t.SearchColumn != "" {
		op.Search = &Search{Column: t.SearchColumn, Term: term}
	}
	op.Limit = paramInt(params[len(params)-2])
	op.Offset = paramInt(params[len(params)-1])
	return op
}

// paramInt reads a paging parameter; anything unusable counts as zero.
func paramInt(v any) int {
	n, err := toInt(v)
	if err != nil || n == nil {
		return 0
	}
	i := n.(int64)
	if i < 0 {
		return 0
	}
	return int(i)
}

// positionalValues binds params to columns by position. Missing or NULL
// params are left out so column defaults apply.
func positionalValues(t *Table, order []string, params []any) Record {
	values := make(Record, len(order))
	for i, name := range order {
		if i >= len(params) || params[i] == nil {
			continue
		}
		c, _ := t.Column(name)
		if v := c.normalizeLenient(params[i]); v != nil {
			values[name] = v
		}
	}
	return values
}

func parseUpdate(t *Table, params []any) Op {
	id := params[len(params)-1]
	fields := params[:len(params)-1]

	patch := make(Patch)
	for i, name := range t.updatePositional() {
		if i >= len(fields) {
			break
		}
		c, _ := t.Column(name)
		raw := fields[i]
		if raw == nil {
			continue
		}
		if c.Kind == KindJSON {
			// Unparseable JSON keeps the stored value.
			if s, ok := raw.(string); ok && !json.Valid([]byte(s)) {
				continue
			}
		}
		v := c.normalizeLenient(raw)
		if isFalsy(v) {
			continue
		}
		patch[name] = v
	}
	return Update{Table: t.Name, ID: id, Patch: patch}
}
