package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/alecthomas/units"

	"github.com/slok/pcp/internal/app/copyfile"
	"github.com/slok/pcp/internal/copier"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/printer"
	"github.com/slok/pcp/internal/storage"
	storageio "github.com/slok/pcp/internal/storage/io"
	"github.com/slok/pcp/internal/storage/sqlite"
)

type CpCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	source      string
	destination string
	slices      int
	sliceSize   units.Base2Bytes
	concurrency int
	chunkSize   units.Base2Bytes
	force       bool
	noProgress  bool
	noHistory   bool
}

// NewCpCommand returns the cp command.
func NewCpCommand(rootCmd *RootCommand, app *kingpin.Application) *CpCommand {
	c := &CpCommand{
		rootCmd: rootCmd,
	}

	c.Cmd = app.Command("cp", "Copy a single file by slicing it and copying the slices concurrently.")
	c.Cmd.Arg("source", "Path of the source file.").Required().StringVar(&c.source)
	c.Cmd.Arg("destination", "Path of the destination file (or an existing directory).").Required().StringVar(&c.destination)
	c.Cmd.Flag("slices", "Number of slices to split the copy into.").Short('p').IntVar(&c.slices)
	c.Cmd.Flag("slice-size", "Target slice size (e.g. 64MiB), alternative to --slices.").BytesVar(&c.sliceSize)
	c.Cmd.Flag("concurrency", "Maximum number of slices copied at once (defaults to the slice count).").Short('c').IntVar(&c.concurrency)
	c.Cmd.Flag("chunk-size", "Read/write block size inside a slice (e.g. 1MiB).").BytesVar(&c.chunkSize)
	c.Cmd.Flag("force", "Overwrite the destination if it already exists.").Short('f').BoolVar(&c.force)
	c.Cmd.Flag("no-progress", "Disable the progress bar.").BoolVar(&c.noProgress)
	c.Cmd.Flag("no-history", "Don't record this run in history.").BoolVar(&c.noHistory)

	return c
}

func (c CpCommand) Name() string { return c.Cmd.FullCommand() }

func (c CpCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Load config file defaults, flags win over them.
	defaults, err := c.loadDefaults(ctx)
	if err != nil {
		return fmt.Errorf("could not load config defaults: %w", err)
	}

	slices := c.slices
	sliceSize := int64(c.sliceSize)
	if slices == 0 && sliceSize == 0 {
		slices = defaults.SliceCount
		sliceSize = defaults.SliceSize
	}
	concurrency := c.concurrency
	if concurrency == 0 {
		concurrency = defaults.Concurrency
	}
	chunkSize := int64(c.chunkSize)
	if chunkSize == 0 {
		chunkSize = defaults.ChunkSize
	}
	noHistory := c.noHistory || defaults.NoHistory

	// Initialize history storage (SQLite). Copies must not fail because the
	// history database is unavailable, so this is best effort.
	var repo storage.Repository
	if !noHistory {
		sqliteRepo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if err != nil {
			logger.Warningf("History disabled, could not open history repository: %v", err)
		} else {
			defer sqliteRepo.Close()
			repo = sqliteRepo
		}
	}

	// Initialize copy engine.
	engine, err := copier.New(copier.Config{
		ChunkSize: chunkSize,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create copy engine: %w", err)
	}

	// Create copy service.
	svc, err := copyfile.NewService(copyfile.ServiceConfig{
		Engine:     engine,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	var progress copier.Notifier
	if !c.noProgress {
		progress = printer.NewProgressPrinter(c.rootCmd.Stderr)
	}

	// Execute copy operation.
	run, err := svc.Run(ctx, copyfile.Request{
		Source:      c.source,
		Destination: c.destination,
		SliceCount:  slices,
		SliceSize:   sliceSize,
		Concurrency: concurrency,
		Overwrite:   c.force,
		NoHistory:   noHistory,
		Progress:    progress,
	})
	if err != nil {
		// A run with per slice failures still carries detail worth showing.
		if run != nil {
			p := printer.NewTablePrinter(c.rootCmd.Stderr)
			_ = p.PrintRun(*run)
		}
		return err
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Copied %s to %s (%s in %s)\n",
		c.source,
		run.Destination,
		printer.FormatBytes(run.Result.TotalBytesCopied),
		printer.FormatDuration(run.Duration()),
	)

	return nil
}

// loadDefaults reads the copy defaults config file. A missing file is not an
// error, it just means built-in defaults.
func (c CpCommand) loadDefaults(ctx context.Context) (model.CopyDefaults, error) {
	path, err := filepath.Abs(c.rootCmd.ConfigPath)
	if err != nil {
		return model.CopyDefaults{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return model.CopyDefaults{}, nil
	}

	dir, file := filepath.Split(path)
	repo := storageio.NewDefaultsYAMLRepository(os.DirFS(dir))
	return repo.GetDefaults(ctx, file)
}
