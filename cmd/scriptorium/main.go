// Command scriptorium is the CLI for the canonical text corpus toolchain.
// It provides commands for populating the store from a TEI corpus tree and
// for querying the stored texts.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/scriptorium-project/scriptorium/core/cts"
	"github.com/scriptorium-project/scriptorium/internal/config"
	"github.com/scriptorium-project/scriptorium/internal/corpus"
	"github.com/scriptorium-project/scriptorium/internal/ingest"
	"github.com/scriptorium-project/scriptorium/internal/logging"
	"github.com/scriptorium-project/scriptorium/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for scriptorium.
var CLI struct {
	// Global flags
	Config string `help:"Configuration file path" type:"path"`
	DB     string `help:"SQLite database path (overrides config)" type:"path"`

	// Command groups (noun-first organization)
	Corpus  CorpusGroup `cmd:"" help:"Corpus operations (populate, clear, stats, scan)"`
	Texts   TextsGroup  `cmd:"" help:"Text queries (list, show, passage)"`
	Version VersionCmd  `cmd:"" help:"Print version information"`
}

// CorpusGroup contains corpus lifecycle operations.
type CorpusGroup struct {
	Populate PopulateCmd `cmd:"" help:"Populate the store from a TEI corpus tree"`
	Clear    ClearCmd    `cmd:"" help:"Delete all texts and segments from the store"`
	Stats    StatsCmd    `cmd:"" help:"Print store statistics"`
	Scan     ScanCmd     `cmd:"" help:"List candidate documents under a corpus root"`
}

// TextsGroup contains read-side query operations.
type TextsGroup struct {
	List    ListCmd    `cmd:"" help:"List and search texts"`
	Show    ShowCmd    `cmd:"" help:"Show one text with a page of its segments"`
	Passage PassageCmd `cmd:"" help:"Look up a passage by reference, e.g. 1.25 or 1.25-2.3"`
}

// loadConfig resolves configuration from the global flags and initializes
// logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(CLI.Config)
	if err != nil {
		return cfg, err
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Database, err)
	}
	return s, nil
}

// PopulateCmd populates the store from a TEI corpus tree.
type PopulateCmd struct {
	Root      string   `arg:"" optional:"" help:"Corpus root directory (default: data_dir from config)" type:"path"`
	Limit     int      `help:"Ingest at most N files (0 = all)"`
	Force     bool     `help:"Clear the store and repopulate"`
	Languages []string `help:"Only ingest texts in these language codes"`
}

func (c *PopulateCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	root := c.Root
	if root == "" {
		root = cfg.DataDir
	}
	opts := ingest.Options{
		Limit:     c.Limit,
		Force:     c.Force,
		Languages: c.Languages,
		BatchSize: cfg.Ingest.BatchSize,
	}
	if opts.Limit == 0 {
		opts.Limit = cfg.Ingest.Limit
	}
	if len(opts.Languages) == 0 {
		opts.Languages = cfg.Ingest.Languages
	}

	stats, err := ingest.New(s).Run(root, opts)
	if err != nil {
		return fmt.Errorf("population failed: %w", err)
	}

	fmt.Printf("Population complete (run %s)\n", stats.RunID)
	fmt.Printf("  Inserted: %d\n", stats.Inserted)
	fmt.Printf("  Skipped:  %d\n", stats.Skipped)
	fmt.Printf("  Errors:   %d\n", stats.Errors)
	if stats.Filtered > 0 {
		fmt.Printf("  Filtered: %d\n", stats.Filtered)
	}
	fmt.Printf("  Segments: %d\n", stats.TotalSegments)
	return nil
}

// ClearCmd deletes all texts and segments.
type ClearCmd struct{}

func (c *ClearCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := ingest.New(s).Clear(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	fmt.Println("Store cleared.")
	return nil
}

// StatsCmd prints store statistics.
type StatsCmd struct{}

func (c *StatsCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("Database: %s (%s driver)\n", cfg.Database, store.DriverType())
	fmt.Printf("  Texts:    %d\n", st.Texts)
	fmt.Printf("  Segments: %d\n", st.Segments)
	return nil
}

// ScanCmd lists candidate documents under a corpus root without ingesting.
type ScanCmd struct {
	Root    string `arg:"" optional:"" help:"Corpus root directory (default: data_dir from config)" type:"path"`
	Verbose bool   `short:"v" help:"Print every file path"`
}

func (c *ScanCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root := c.Root
	if root == "" {
		root = cfg.DataDir
	}

	files, err := corpus.Scan(root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if c.Verbose {
		for _, f := range files {
			fmt.Println(f)
		}
	}
	fmt.Printf("%d candidate document(s) under %s\n", len(files), root)
	return nil
}

// ListCmd lists and searches texts.
type ListCmd struct {
	Search   string `help:"Substring match against author or title"`
	Author   string `help:"Substring match against author"`
	Language string `help:"Exact language code, e.g. grc or lat"`
	Limit    int    `default:"50" help:"Maximum number of texts"`
	Offset   int    `help:"Number of texts to skip"`
}

func (c *ListCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	texts, err := s.ListTexts(store.TextFilter{
		Search:   c.Search,
		Author:   c.Author,
		Language: c.Language,
		Limit:    c.Limit,
		Offset:   c.Offset,
	})
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		fmt.Println("No texts found.")
		return nil
	}
	for _, t := range texts {
		fmt.Printf("%s\n", t.URN)
		fmt.Printf("  %s, %s [%s]\n", t.Author, t.Title, t.Language)
	}
	fmt.Printf("\n%d text(s)\n", len(texts))
	return nil
}

// ShowCmd shows one text with a page of its segments.
type ShowCmd struct {
	URN      string `arg:"" help:"CTS URN of the text"`
	Page     int    `default:"1" help:"Page number (1-based)"`
	PageSize int    `name:"page-size" default:"100" help:"Segments per page"`
}

func (c *ShowCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.GetText(c.URN)
	if err != nil {
		return err
	}

	page := c.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * c.PageSize
	segments, err := s.Segments(c.URN, offset, c.PageSize)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", t.URN)
	fmt.Printf("  Author:   %s\n", t.Author)
	fmt.Printf("  Title:    %s\n", t.Title)
	fmt.Printf("  Language: %s\n", t.Language)
	fmt.Printf("  Segments: %d\n\n", segments.Total)
	for _, seg := range segments.Segments {
		fmt.Printf("  %-10s %s\n", seg.Reference, seg.Content)
	}
	if segments.Total > offset+len(segments.Segments) {
		fmt.Printf("\n(page %d, %d more segment(s))\n",
			page, segments.Total-offset-len(segments.Segments))
	}
	return nil
}

// PassageCmd looks up a single segment or a contiguous range by reference.
type PassageCmd struct {
	URN string `arg:"" help:"CTS URN of the text"`
	Ref string `arg:"" help:"Passage reference, e.g. 1.25, 7, or 1.25-2.3"`
}

func (c *PassageCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	passage, err := cts.ParsePassage(c.Ref)
	if err != nil {
		return err
	}

	var segments []*store.Segment
	if passage.End == nil {
		seg, err := s.SegmentByReference(c.URN, passage.Start.Reference())
		if err != nil {
			return err
		}
		segments = []*store.Segment{seg}
	} else {
		segments, err = s.SegmentRange(c.URN, passage.Start.Reference(), passage.End.Reference())
		if err != nil {
			return err
		}
	}

	fmt.Printf("%s %s\n\n", c.URN, passage.String())
	for _, seg := range segments {
		fmt.Printf("  %-10s %s\n", seg.Reference, seg.Content)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("scriptorium %s (%s sqlite driver)\n", version, store.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("scriptorium"),
		kong.Description("Scriptorium - canonical Greek and Latin text corpus toolchain"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
