// Package catalog loads product catalogue files and seeds them into the store.
package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"stylecore/internal/model"
)

// Entry is one product in a catalogue file. The ID is the natural key:
// seeding the same file twice replaces rather than duplicates.
type Entry struct {
	ID string `json:"id" validate:"required,max=64"`
	model.CreateProductRequest
}

// Product builds the entity described by the entry.
func (e *Entry) Product() *model.Product {
	p := e.CreateProductRequest.Product()
	p.ID = e.ID
	return p
}

// Loader defines the interface for loading catalogue files.
type Loader interface {
	// Load reads a catalogue file, a JSON array of entries, gzipped when
	// the name ends in ".gz".
	Load(ctx context.Context, source string) ([]Entry, error)
}

// decode reads a catalogue from r. name decides whether r is gzipped.
func decode(ctx context.Context, r io.Reader, name string) ([]Entry, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", name, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("catalogue %s is not a JSON array", name)
	}

	var entries []Entry
	for dec.More() {
		if len(entries)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d of %s: %w", len(entries), name, err)
		}
		entries = append(entries, e)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", name, err)
	}
	return entries, nil
}
