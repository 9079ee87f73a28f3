package sfinspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Builder collects inspection inputs and loads them into one Directory.
// Use NewBuilder to create a new instance, then chain method calls to
// configure it.
//
// The typical usage pattern is:
//
//	builder, err := sfinspect.NewBuilder().AddPath("inspections.csv.gz").Build(ctx)
//	if err != nil {
//		return err
//	}
//	dir, report, err := builder.Load(ctx)
type Builder struct {
	// paths contains regular file or directory paths
	paths []string
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// readers contains caller supplied streams
	readers []readerInput
	// logger receives load progress and per-row rejections
	logger *slog.Logger
	// sheet selects the XLSX worksheet
	sheet string
	// inputs contains every input after Build validation, in load order
	inputs []input
}

// readerInput is a stream registered with AddReader
type readerInput struct {
	reader   io.Reader
	name     string
	fileType FileType
}

// input is one validated source of records
type input struct {
	// name labels the input in logs and errors
	name string
	// fileType is the base format after decompression
	fileType FileType
	// compression is the compression detected from the name
	compression CompressionType
	// open returns the decompressed stream and its cleanup function
	open func() (io.Reader, func() error, error)
}

// NewBuilder creates a new builder for configuring inspection inputs.
func NewBuilder() *Builder {
	return &Builder{
		paths:       make([]string, 0),
		filesystems: make([]fs.FS, 0),
		readers:     make([]readerInput, 0),
		logger:      discardLogger(),
	}
}

// AddPath adds a regular file or directory path to the builder.
// The path can be:
// - A single file with supported extensions (.csv, .xlsx, .parquet, and their compressed variants)
// - A directory path (all supported files will be loaded recursively, in lexical order)
//
// Supported compression: .gz, .bz2, .xz, .zst
//
// Returns the builder for method chaining.
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple regular file or directory paths to the builder.
// Each path follows the same rules as AddPath.
//
// Returns the builder for method chaining.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds all supported files from an fs.FS filesystem to the builder.
// This is useful for embedded sample data using go:embed.
//
// Returns the builder for method chaining.
func (b *Builder) AddFS(filesystem fs.FS) *Builder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// AddReader adds a stream of records in the given format. The name labels
// the input in logs and selects decompression by its extension, so
// "upload.csv.gz" is decompressed with gzip. A reader can be loaded only once.
//
// Returns the builder for method chaining.
func (b *Builder) AddReader(reader io.Reader, name string, fileType FileType) *Builder {
	b.readers = append(b.readers, readerInput{reader: reader, name: name, fileType: fileType})
	return b
}

// SetLogger sets the logger used while loading. A nil logger discards output.
//
// Returns the builder for method chaining.
func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = discardLogger()
	}
	b.logger = logger
	return b
}

// SetSheet selects the worksheet read from XLSX inputs. The default is the
// first sheet of each workbook.
//
// Returns the builder for method chaining.
func (b *Builder) SetSheet(sheet string) *Builder {
	b.sheet = sheet
	return b
}

// Build validates all configured inputs and prepares the builder for Load.
// It performs the following operations:
//
// 1. Validates that at least one input source is configured
// 2. Checks existence, readability and format of all file paths
// 3. Expands directories and filesystems into their supported files
// 4. Validates the format of every reader
//
// Returns the same builder instance for method chaining, or an error if validation fails.
func (b *Builder) Build(ctx context.Context) (*Builder, error) {
	if len(b.paths) == 0 && len(b.filesystems) == 0 && len(b.readers) == 0 {
		return nil, ErrNoInput
	}

	b.inputs = make([]input, 0)

	for _, path := range b.paths {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		inputs, err := collectPath(path)
		if err != nil {
			return nil, err
		}
		b.inputs = append(b.inputs, inputs...)
	}

	for _, filesystem := range b.filesystems {
		if filesystem == nil {
			return nil, errors.New("FS cannot be nil")
		}
		inputs, err := collectFS(filesystem)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		b.inputs = append(b.inputs, inputs...)
	}

	for _, r := range b.readers {
		if r.reader == nil {
			return nil, fmt.Errorf("reader %q cannot be nil", r.name)
		}
		if r.fileType == FileTypeUnsupported {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.name)
		}
		b.inputs = append(b.inputs, readerToInput(r))
	}

	if len(b.inputs) == 0 {
		return nil, errors.New("no valid input files found")
	}
	return b, nil
}

// Load ingests every validated input, in the order they were added, into a
// new Directory. Rows that fail validation are counted in the report and
// skipped; an input that cannot be read at all aborts the load.
//
// This method can only be called after Build() has been successfully executed.
func (b *Builder) Load(ctx context.Context) (*Directory, LoadReport, error) {
	if len(b.inputs) == 0 {
		return nil, LoadReport{}, errors.New("no valid input files found, did you call Build()?")
	}

	runID := uuid.New()
	logger := b.logger.With("run_id", runID.String())

	dir := NewDirectory()
	ingester := NewIngester(dir, logger)
	opts := sourceOptions{sheet: b.sheet}
	report := func() LoadReport {
		r := ingester.Report()
		r.RunID = runID
		return r
	}

	for _, in := range b.inputs {
		if err := checkContext(ctx); err != nil {
			return nil, report(), err
		}
		logger.Info("loading input", "source", in.name, "type", in.fileType.String(), "compression", in.compression.String())
		ingester.setSource(in.name)

		if err := loadInput(ctx, in, opts, ingester); err != nil {
			return nil, report(), NewErrorContext("load", in.name).Error(err)
		}
	}

	final := report()
	logger.Info("load finished", "establishments", dir.Len(), "report", final)
	return dir, final, nil
}

// Load is a convenience function that builds and loads the given paths.
func Load(ctx context.Context, paths ...string) (*Directory, LoadReport, error) {
	builder, err := NewBuilder().AddPaths(paths...).Build(ctx)
	if err != nil {
		return nil, LoadReport{}, err
	}
	return builder.Load(ctx)
}

// loadInput streams one input through the ingester
func loadInput(ctx context.Context, in input, opts sourceOptions, ingester *Ingester) (err error) {
	reader, cleanup, err := in.open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := cleanup(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close input: %w", closeErr)
		}
	}()

	opts.badLine = func(line int, err error) {
		_ = ingester.Reject(line, err)
	}
	return readRecords(ctx, reader, in.fileType, opts, func(line int, rec Record) error {
		// Row failures are counted by the ingester and never stop the load
		_ = ingester.Ingest(line, rec)
		return nil
	})
}

// collectPath validates a path and expands directories into their files
func collectPath(path string) ([]input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}

	if !info.IsDir() {
		if !isSupportedFile(path) {
			return nil, fmt.Errorf("%w: %s (supported: %v)", ErrUnsupportedFormat, path, supportedFileExtPatterns())
		}
		if err := checkReadable(path); err != nil {
			return nil, err
		}
		return []input{pathToInput(path)}, nil
	}

	inputs := make([]input, 0)
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isSupportedFile(p) {
			return nil
		}
		if err := checkReadable(p); err != nil {
			return err
		}
		inputs = append(inputs, pathToInput(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no supported files in directory %s", ErrFileNotFound, path)
	}
	return inputs, nil
}

// statError classifies an os.Stat failure
func statError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}
}

// checkReadable opens and closes path to surface permission problems at Build time
func checkReadable(path string) error {
	f, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return statError(path, err)
	}
	return f.Close()
}

// pathToInput creates an input that reads and decompresses a local file
func pathToInput(path string) input {
	f := newFile(path)
	return input{
		name:        sourceName(path),
		fileType:    f.fileType,
		compression: f.compression,
		open: func() (io.Reader, func() error, error) {
			return NewCompressionFactory().CreateReaderForFile(f.path)
		},
	}
}

// collectFS finds every supported file of filesystem in lexical order
func collectFS(filesystem fs.FS) ([]input, error) {
	inputs := make([]input, 0)
	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedFile(path) {
			return nil
		}
		inputs = append(inputs, fsToInput(filesystem, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(inputs) == 0 {
		return nil, errors.New("no supported files found in filesystem")
	}
	return inputs, nil
}

// fsToInput creates an input that reads and decompresses a file of an fs.FS
func fsToInput(filesystem fs.FS, path string) input {
	factory := NewCompressionFactory()
	return input{
		name:        sourceName(path),
		fileType:    factory.GetBaseFileType(path),
		compression: factory.DetectCompressionType(path),
		open: func() (io.Reader, func() error, error) {
			file, err := filesystem.Open(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open FS file: %w", err)
			}
			reader, cleanup, err := factory.CreateHandlerForFile(path).CreateReader(file)
			if err != nil {
				_ = file.Close()
				return nil, nil, err
			}
			return reader, func() error {
				return errors.Join(cleanup(), file.Close())
			}, nil
		},
	}
}

// readerToInput creates an input that decompresses a caller supplied stream
func readerToInput(r readerInput) input {
	return input{
		name:        sourceName(r.name),
		fileType:    r.fileType,
		compression: NewCompressionFactory().DetectCompressionType(r.name),
		open: func() (io.Reader, func() error, error) {
			return NewCompressionFactory().CreateHandlerForFile(r.name).CreateReader(r.reader)
		},
	}
}
