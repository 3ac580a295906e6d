package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/metrics"
)

// Source records which path produced a cache entry.
type Source string

const (
	// SourcePrimary marks entries propagated from a primary-store write.
	SourcePrimary Source = "primary"
	// SourceFallback marks entries written directly because the sync
	// queue was unavailable.
	SourceFallback Source = "fallback-write"
)

// Meta is the envelope stamped onto every cache entry by the writer.
type Meta struct {
	CachedAt time.Time `json:"_cachedAt"`
	Source   Source    `json:"_source"`
}

// Store is the key-value contract the data adapter and sync queue depend
// on. Entries are keyed by (kind, id); kind may contain slashes to form
// sub-namespaces such as "ads/daily" or "customer/CUS-1".
//
// Reads never surface backend failures: a missing or unparsable entry is
// reported as absent, not as an error.
type Store interface {
	Put(kind, id string, payload any, src Source) error
	Get(kind, id string, dst any) bool
	Entry(kind, id string) (Meta, bool)
	List(kind string) []json.RawMessage
	Subkinds(kind string) []string
	Delete(kind, id string) error
	Fresh(kind, id string, maxAge time.Duration) bool
}

// FileStore implements Store on a directory tree of JSON files, one file
// per entry at {root}/{kind}/{id}.json.
type FileStore struct {
	root   string
	logger zerolog.Logger
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{root: dir, logger: logger}, nil
}

// Root returns the cache root directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) entryPath(kind, id string) string {
	return filepath.Join(s.root, filepath.FromSlash(kind), id+".json")
}

// Put serializes payload plus a fresh meta stamp and atomically replaces
// the entry file. The payload must marshal to a JSON object so the meta
// fields can live at the document root.
func (s *FileStore) Put(kind, id string, payload any, src Source) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}

	stamp, _ := json.Marshal(time.Now().UTC().Format(time.RFC3339))
	doc["_cachedAt"] = stamp
	srcJSON, _ := json.Marshal(src)
	doc["_source"] = srcJSON

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	path := s.entryPath(kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	s.logger.Debug().Str("kind", kind).Str("id", id).Msg("cache entry written")
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Get reads the entry into dst. A missing file and a corrupt file are the
// same result: absent. Corruption is logged, never propagated.
func (s *FileStore) Get(kind, id string, dst any) bool {
	data, err := os.ReadFile(s.entryPath(kind, id))
	if err != nil {
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn().Str("kind", kind).Str("id", id).Err(err).Msg("corrupt cache entry, treating as absent")
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(kind).Inc()
	return true
}

// Entry reads only the meta envelope of an entry.
func (s *FileStore) Entry(kind, id string) (Meta, bool) {
	data, err := os.ReadFile(s.entryPath(kind, id))
	if err != nil {
		return Meta{}, false
	}
	var wire struct {
		CachedAt string `json:"_cachedAt"`
		Source   Source `json:"_source"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Meta{}, false
	}
	at, err := time.Parse(time.RFC3339, wire.CachedAt)
	if err != nil {
		return Meta{}, false
	}
	return Meta{CachedAt: at, Source: wire.Source}, true
}

// List returns the raw documents of every parsable entry under kind,
// sorted by file name. Corrupt entries are skipped, and index artifacts
// (files starting with "__") are excluded.
func (s *FileStore) List(kind string) []json.RawMessage {
	dir := filepath.Join(s.root, filepath.FromSlash(kind))
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []json.RawMessage
	for _, e := range names {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "__") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if !json.Valid(data) {
			s.logger.Warn().Str("kind", kind).Str("file", name).Msg("skipping corrupt cache entry")
			continue
		}
		out = append(out, json.RawMessage(data))
	}
	return out
}

// Subkinds returns the child namespaces under kind, e.g. the customer IDs
// under "customer". Dotfiles are ignored.
func (s *FileStore) Subkinds(kind string) []string {
	dir := filepath.Join(s.root, filepath.FromSlash(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

// Delete removes an entry. A missing entry is not an error.
func (s *FileStore) Delete(kind, id string) error {
	err := os.Remove(s.entryPath(kind, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Fresh reports whether the entry exists and was written within maxAge.
func (s *FileStore) Fresh(kind, id string, maxAge time.Duration) bool {
	meta, ok := s.Entry(kind, id)
	if !ok {
		return false
	}
	return time.Since(meta.CachedAt) < maxAge
}
