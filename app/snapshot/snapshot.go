// Package snapshot implements the bulk import/export document format.
// Import documents carry watched_items and ignored_items, export documents carry watched_data and ignore_data
// (plus cached_data on request). Export keys are accepted on import, so an exported file can be loaded back.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	log "github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/persistence"
)

// Document is the import format
type Document struct {
	WatchedItems []persistence.Item `json:"watched_items" yaml:"watched_items"`
	IgnoredItems []persistence.Item `json:"ignored_items" yaml:"ignored_items"`
	CachedItems  []persistence.Item `json:"cached_items,omitempty" yaml:"cached_items,omitempty"`
}

// ExportDocument is the output format. CachedData is nil unless the cached partition is requested,
// a requested empty partition encodes as [].
type ExportDocument struct {
	WatchedData []persistence.Item  `json:"watched_data" yaml:"watched_data"`
	IgnoreData  []persistence.Item  `json:"ignore_data" yaml:"ignore_data"`
	CachedData  *[]persistence.Item `json:"cached_data,omitempty" yaml:"cached_data,omitempty"`
}

// rawDocument accepts both import and export key names, nil means the key is absent
type rawDocument struct {
	WatchedItems *[]persistence.Item `json:"watched_items" yaml:"watched_items"`
	IgnoredItems *[]persistence.Item `json:"ignored_items" yaml:"ignored_items"`
	CachedItems  *[]persistence.Item `json:"cached_items" yaml:"cached_items"`
	WatchedData  *[]persistence.Item `json:"watched_data" yaml:"watched_data"`
	IgnoreData   *[]persistence.Item `json:"ignore_data" yaml:"ignore_data"`
	CachedData   *[]persistence.Item `json:"cached_data" yaml:"cached_data"`
}

func (r rawDocument) empty() bool {
	return r.WatchedItems == nil && r.IgnoredItems == nil && r.CachedItems == nil &&
		r.WatchedData == nil && r.IgnoreData == nil && r.CachedData == nil
}

// joinItems concatenates present lists
func joinItems(lists ...*[]persistence.Item) []persistence.Item {
	var res []persistence.Item
	for _, l := range lists {
		if l != nil {
			res = append(res, *l...)
		}
	}
	return res
}

// Importer stores imported items
type Importer interface {
	Import(ctx context.Context, req persistence.ImportRequest) (persistence.ImportResult, error)
}

// Lister reads partitions
type Lister interface {
	List(ctx context.Context, partition enums.Partition, limit int) ([]persistence.Item, error)
}

// Parse decodes and validates a snapshot document
func Parse(data []byte, format enums.Format) (Document, error) {
	var raw rawDocument
	switch format {
	case enums.FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return Document{}, fmt.Errorf("failed to parse json snapshot: %w", err)
		}
	case enums.FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Document{}, fmt.Errorf("failed to parse yaml snapshot: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("unsupported snapshot format %q", format)
	}

	if raw.empty() {
		return Document{}, errors.New("snapshot has no watched_items, ignored_items or cached_items")
	}

	doc := Document{
		WatchedItems: joinItems(raw.WatchedItems, raw.WatchedData),
		IgnoredItems: joinItems(raw.IgnoredItems, raw.IgnoreData),
		CachedItems:  joinItems(raw.CachedItems, raw.CachedData),
	}
	if err := doc.validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (d Document) validate() error {
	groups := []struct {
		name  string
		items []persistence.Item
	}{{"watched_items", d.WatchedItems}, {"ignored_items", d.IgnoredItems}, {"cached_items", d.CachedItems}}
	for _, g := range groups {
		for i, item := range g.items {
			if strings.TrimSpace(item.URL) == "" {
				return fmt.Errorf("%s[%d]: url is required", g.name, i)
			}
		}
	}
	return nil
}

// Import parses data and loads it into the store
func Import(ctx context.Context, store Importer, data []byte, format enums.Format) (persistence.ImportResult, error) {
	doc, err := Parse(data, format)
	if err != nil {
		return persistence.ImportResult{}, err
	}
	return ImportDocument(ctx, store, doc)
}

// ImportDocument loads an already parsed document into the store
func ImportDocument(ctx context.Context, store Importer, doc Document) (persistence.ImportResult, error) {
	res, err := store.Import(ctx, persistence.ImportRequest{
		Cached:  doc.CachedItems,
		Watched: doc.WatchedItems,
		Ignored: doc.IgnoredItems,
	})
	if err != nil {
		return persistence.ImportResult{}, fmt.Errorf("failed to import snapshot: %w", err)
	}
	log.Printf("[INFO] snapshot imported, cached: %d, updated: %d, watched: %d, ignored: %d, skipped: %d",
		res.Cached, res.Updated, res.Watched, res.Ignored, res.Skipped)
	return res, nil
}

// Export reads the requested partitions in full. Watched and ignored are used if no partitions given.
func Export(ctx context.Context, store Lister, partitions ...enums.Partition) (ExportDocument, error) {
	if len(partitions) == 0 {
		partitions = []enums.Partition{enums.PartitionWatched, enums.PartitionIgnored}
	}

	res := ExportDocument{WatchedData: []persistence.Item{}, IgnoreData: []persistence.Item{}}
	for _, p := range partitions {
		items, err := store.List(ctx, p, 0)
		if err != nil {
			return ExportDocument{}, fmt.Errorf("failed to export %s: %w", p, err)
		}
		if items == nil {
			items = []persistence.Item{}
		}
		switch p {
		case enums.PartitionWatched:
			res.WatchedData = items
		case enums.PartitionIgnored:
			res.IgnoreData = items
		case enums.PartitionCached:
			res.CachedData = &items
		}
	}
	return res, nil
}

// Encode writes the export document, json is indented by two spaces
func Encode(w io.Writer, exp ExportDocument, format enums.Format) error {
	switch format {
	case enums.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode json snapshot: %w", err)
		}
	case enums.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode yaml snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to close yaml encoder: %w", err)
		}
	default:
		return fmt.Errorf("unsupported snapshot format %q", format)
	}
	return nil
}

// FormatFromName picks the format by file extension, json is the default
func FormatFromName(name string) enums.Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return enums.FormatYAML
	default:
		return enums.FormatJSON
	}
}
