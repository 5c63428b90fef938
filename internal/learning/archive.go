package learning

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/database"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// Archiver writes evaluated predictions to gzip-compressed batch files and
// keeps a bounded number of batches, dropping the oldest beyond the bound.
type Archiver struct {
	dir      string
	batches  database.ArchiveDAO
	maxAge   time.Duration
	minBatch int
	keep     int
	now      func() time.Time
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithArchiveMaxAge overrides the age at which evaluated records qualify
// for cold storage.
func WithArchiveMaxAge(d time.Duration) ArchiverOption {
	return func(a *Archiver) {
		if d > 0 {
			a.maxAge = d
		}
	}
}

// WithArchiveMinBatch overrides the minimum batch size.
func WithArchiveMinBatch(n int) ArchiverOption {
	return func(a *Archiver) {
		if n > 0 {
			a.minBatch = n
		}
	}
}

// WithArchiveKeepBatches overrides how many batches are retained.
func WithArchiveKeepBatches(n int) ArchiverOption {
	return func(a *Archiver) {
		if n > 0 {
			a.keep = n
		}
	}
}

// WithArchiveClock overrides the time source for tests.
func WithArchiveClock(now func() time.Time) ArchiverOption {
	return func(a *Archiver) {
		if now != nil {
			a.now = now
		}
	}
}

// NewArchiver creates an archiver writing under dir.
func NewArchiver(dir string, batches database.ArchiveDAO, opts ...ArchiverOption) (*Archiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to create archive directory", err)
	}
	a := &Archiver{
		dir:      dir,
		batches:  batches,
		maxAge:   DefaultArchiveAge,
		minBatch: DefaultArchiveMinBatch,
		keep:     DefaultArchiveKeepBatches,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// MaxAge returns the archive age threshold.
func (a *Archiver) MaxAge() time.Duration { return a.maxAge }

// MinBatch returns the minimum batch size.
func (a *Archiver) MinBatch() int { return a.minBatch }

// manifest is the YAML header describing one archive batch file.
type manifest struct {
	CreatedAt   time.Time `yaml:"created_at"`
	RecordCount int       `yaml:"record_count"`
	OldestAt    time.Time `yaml:"oldest_at"`
	NewestAt    time.Time `yaml:"newest_at"`
	DataFile    string    `yaml:"data_file"`
}

// Archive writes records as one gzip-compressed JSON-lines batch plus a
// YAML manifest, records the batch, and trims retention.
func (a *Archiver) Archive(ctx context.Context, records []database.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	createdAt := a.now().UTC()
	oldest, newest := records[0].CreatedAt, records[0].CreatedAt
	for _, rec := range records[1:] {
		if rec.CreatedAt.Before(oldest) {
			oldest = rec.CreatedAt
		}
		if rec.CreatedAt.After(newest) {
			newest = rec.CreatedAt
		}
	}

	base := fmt.Sprintf("predictions-%s", createdAt.Format("20060102-150405"))
	dataName := base + ".jsonl.gz"

	if err := a.writeData(filepath.Join(a.dir, dataName), records); err != nil {
		return err
	}
	if err := a.writeManifest(filepath.Join(a.dir, base+".manifest.yaml"), manifest{
		CreatedAt:   createdAt,
		RecordCount: len(records),
		OldestAt:    oldest,
		NewestAt:    newest,
		DataFile:    dataName,
	}); err != nil {
		return err
	}

	if err := a.batches.Insert(ctx, &database.ArchiveBatch{
		FileName:    dataName,
		RecordCount: len(records),
		OldestAt:    oldest,
		NewestAt:    newest,
		CreatedAt:   createdAt,
	}); err != nil {
		return err
	}

	return a.trim(ctx)
}

func (a *Archiver) writeData(path string, records []database.PredictionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to create archive file", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			gz.Close()
			return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to encode archive record", err)
		}
	}
	if err := gz.Close(); err != nil {
		return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to flush archive file", err)
	}
	return f.Close()
}

func (a *Archiver) writeManifest(path string, m manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to marshal archive manifest", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to write archive manifest", err)
	}
	return nil
}

// trim deletes batches beyond the retention bound, files included.
func (a *Archiver) trim(ctx context.Context) error {
	removed, err := a.batches.TrimOldest(ctx, a.keep)
	if err != nil {
		return err
	}
	for _, name := range removed {
		dataPath := filepath.Join(a.dir, name)
		if err := os.Remove(dataPath); err != nil && !os.IsNotExist(err) {
			return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to remove archive file", err)
		}
		manifestPath := manifestPathFor(dataPath)
		if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
			return types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to remove archive manifest", err)
		}
	}
	return nil
}

func manifestPathFor(dataPath string) string {
	const suffix = ".jsonl.gz"
	base := dataPath
	if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
		base = base[:len(base)-len(suffix)]
	}
	return base + ".manifest.yaml"
}

// ReadBatch loads a previously written archive batch, mainly for
// inspection tooling and tests.
func (a *Archiver) ReadBatch(fileName string) ([]database.PredictionRecord, error) {
	f, err := os.Open(filepath.Join(a.dir, fileName))
	if err != nil {
		return nil, types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to open archive file", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, types.WrapError(types.LEARN_ARCHIVE_FAILED, "archive file is not gzip", err)
	}
	defer gz.Close()

	var records []database.PredictionRecord
	dec := json.NewDecoder(gz)
	for dec.More() {
		var rec database.PredictionRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to decode archive record", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
