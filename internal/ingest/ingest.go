// Package ingest drives the corpus scanner and TEI parser over a whole
// corpus tree and loads the results into the store exactly once.
//
// Ingestion is single-threaded and sequential over the file list: documents
// are parsed and written strictly one at a time. Concurrent writers would
// need per-URN locking to preserve the dedup invariant, which is not worth
// it at corpus sizes in the low thousands.
package ingest

import (
	"io/fs"
	"slices"

	"github.com/google/uuid"

	serrors "github.com/scriptorium-project/scriptorium/core/errors"
	"github.com/scriptorium-project/scriptorium/core/tei"
	"github.com/scriptorium-project/scriptorium/internal/corpus"
	"github.com/scriptorium-project/scriptorium/internal/logging"
	"github.com/scriptorium-project/scriptorium/internal/store"
)

// DefaultBatchSize is the number of inserted texts between checkpoint
// commits. Bounds transaction growth on a multi-thousand-document corpus;
// a crash after a checkpoint preserves all prior inserts.
const DefaultBatchSize = 50

// Options controls one ingestion run.
type Options struct {
	// Limit truncates the corpus to the first N files (deterministic given
	// the scanner's order); 0 means no limit.
	Limit int
	// Force clears the store and repopulates even if texts already exist.
	Force bool
	// Languages restricts ingestion to the listed codes; empty ingests all.
	Languages []string
	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int
}

// Stats is the sole run report.
type Stats struct {
	RunID         string
	Inserted      int
	Skipped       int
	Errors        int
	Filtered      int
	TotalSegments int
}

// Database is the store surface the orchestrator requires.
type Database interface {
	CountTexts() (int, error)
	Begin() (Batch, error)
}

// Batch is one checkpointed write transaction.
type Batch interface {
	HasText(urn string) (bool, error)
	InsertText(t *store.Text) (int64, error)
	InsertSegment(textID int64, seg *store.Segment) error
	DeleteAllSegments() error
	DeleteAllTexts() error
	BeginDocument() error
	CommitDocument() error
	AbandonDocument() error
	Commit() error
	Rollback() error
}

// storeAdapter narrows *store.Store to the Database interface.
type storeAdapter struct {
	s *store.Store
}

func (a storeAdapter) CountTexts() (int, error) { return a.s.CountTexts() }
func (a storeAdapter) Begin() (Batch, error)    { return a.s.Begin() }

// Runner orchestrates ingestion. Construct with New; dependencies are
// explicit rather than ambient.
type Runner struct {
	db    Database
	scan  func(root string) ([]string, error)
	read  func(path string) ([]byte, error)
	parse func(data []byte, name string) (*tei.Document, error)
}

// New returns a Runner backed by the given store and the real corpus
// scanner and TEI parser.
func New(s *store.Store) *Runner {
	return &Runner{
		db:    storeAdapter{s: s},
		scan:  corpus.Scan,
		read:  corpus.ReadDocument,
		parse: tei.Parse,
	}
}

// Run ingests the corpus under root. Individual document failures are
// counted and skipped, never fatal; the only fatal error paths are store
// transaction failures. Safe to re-run: the idempotency guard short-circuits
// when the store is already populated and forceless re-runs of overlapping
// corpora dedup by URN.
func (r *Runner) Run(root string, opts Options) (Stats, error) {
	stats := Stats{RunID: uuid.New().String()}
	log := logging.GetLogger().With("run_id", stats.RunID)

	count, err := r.db.CountTexts()
	if err != nil {
		return stats, err
	}
	if count > 0 && !opts.Force {
		log.Info("store already populated, skipping ingestion", "texts", count)
		stats.Skipped = count
		return stats, nil
	}

	if opts.Force {
		if err := r.clear(); err != nil {
			return stats, err
		}
		log.Warn("force flag set, cleared existing texts")
	}

	files, err := r.scan(root)
	if err != nil {
		if serrors.Is(err, fs.ErrNotExist) {
			log.Error("corpus root not found", "root", root)
			return stats, nil
		}
		return stats, err
	}
	log.Info("starting ingestion", "root", root, "files", len(files))

	if opts.Limit > 0 && len(files) > opts.Limit {
		files = files[:opts.Limit]
		log.Info("limited corpus", "limit", opts.Limit)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	batch, err := r.db.Begin()
	if err != nil {
		return stats, err
	}

	for i, path := range files {
		if (i+1)%100 == 0 {
			log.Info("ingestion progress", "processed", i+1, "total", len(files))
		}

		data, err := r.read(path)
		if err != nil {
			log.Warn("unreadable document", "path", path, "error", err)
			stats.Errors++
			continue
		}
		doc, err := r.parse(data, path)
		if err != nil {
			log.Debug("unusable document", "path", path, "error", err)
			stats.Errors++
			continue
		}

		exists, err := batch.HasText(doc.URN)
		if err != nil {
			log.Warn("dedup check failed", "urn", doc.URN, "error", err)
			stats.Errors++
			continue
		}
		if exists {
			log.Debug("text already exists", "urn", doc.URN)
			stats.Skipped++
			continue
		}

		if len(opts.Languages) > 0 && !slices.Contains(opts.Languages, doc.Language) {
			stats.Filtered++
			continue
		}

		if err := insertDocument(batch, doc); err != nil {
			log.Warn("document write failed", "urn", doc.URN, "path", path, "error", err)
			stats.Errors++
			continue
		}
		stats.Inserted++
		stats.TotalSegments += len(doc.Segments)

		if stats.Inserted%batchSize == 0 {
			if err := batch.Commit(); err != nil {
				return stats, &serrors.StoreError{Operation: "checkpoint commit", Err: err}
			}
			log.Info("checkpoint committed", "inserted", stats.Inserted)
			batch, err = r.db.Begin()
			if err != nil {
				return stats, err
			}
		}
	}

	// Final commit flushes anything since the last checkpoint. Its failure
	// indicates a systemic store problem and is the one fatal error path.
	if err := batch.Commit(); err != nil {
		return stats, &serrors.StoreError{Operation: "final commit", Err: err}
	}

	log.Info("ingestion complete",
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"segments", stats.TotalSegments)
	return stats, nil
}

// clear deletes all segments then all texts, children before parents, in
// one transaction.
func (r *Runner) clear() error {
	batch, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := batch.DeleteAllSegments(); err != nil {
		batch.Rollback()
		return err
	}
	if err := batch.DeleteAllTexts(); err != nil {
		batch.Rollback()
		return err
	}
	return batch.Commit()
}

// Clear empties the store. Exposed for the operator-facing corpus clear
// operation.
func (r *Runner) Clear() error {
	return r.clear()
}

// insertDocument writes one document's text and all its segments inside a
// savepoint, so a mid-document failure never leaves a committed text
// without its segments.
func insertDocument(batch Batch, doc *tei.Document) error {
	if err := batch.BeginDocument(); err != nil {
		return err
	}
	id, err := batch.InsertText(&store.Text{
		URN:        doc.URN,
		Author:     doc.Author,
		Title:      doc.Title,
		Language:   doc.Language,
		IsFragment: doc.IsFragment,
		Metadata:   doc.Metadata,
		SourceHash: doc.SourceHash,
	})
	if err != nil {
		batch.AbandonDocument()
		return err
	}
	for _, seg := range doc.Segments {
		err := batch.InsertSegment(id, &store.Segment{
			Book:      seg.Book,
			Line:      seg.Line,
			Reference: seg.Reference,
			Sequence:  seg.Sequence,
			Content:   seg.Content,
		})
		if err != nil {
			batch.AbandonDocument()
			return err
		}
	}
	if err := batch.CommitDocument(); err != nil {
		batch.AbandonDocument()
		return err
	}
	return nil
}
