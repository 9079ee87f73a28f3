// Package shell implements the interactive query loop of sfinspect.
//
// Each input line is one command. The first word selects the command and is
// matched ignoring case; the rest of the line is its argument.
//
//	name KEYWORD   establishments whose name contains KEYWORD
//	zip KEYWORD    establishments whose zip code contains KEYWORD
//	sql QUERY      run QUERY against the SQL mirror (when enabled)
//	stats          counts of the loaded data
//	export DIR [FORMAT [COMPRESSION]]
//	               write every inspection to DIR (csv, xlsx or parquet;
//	               none, gz, xz or zst)
//	help           print the command list
//	quit           leave the shell
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/sfinspect"
	"github.com/nao1215/sfinspect/mirror"
)

const (
	msgInvalidQuery = "This is not a valid query. Try again."
	msgNoMatches    = "No matches found. Try again."
	msgSQLDisabled  = "SQL is not enabled. Start sfinspect with --sql to use it."
)

// prompt is printed before every command is read
const prompt = `Search the database by matching keywords to restaurant names or zip codes.
  To search for matching restaurant names, enter
    name KEYWORD
  To search for restaurants in matching zip codes, enter
    zip KEYWORD
  To finish the program, enter
    quit
`

// help lists every command, including the ones the prompt leaves out
const help = `Commands:
  name KEYWORD   restaurants whose name contains KEYWORD (case-insensitive)
  zip KEYWORD    restaurants whose zip code contains KEYWORD
  sql QUERY      run QUERY on the tables establishments and inspections
  stats          number of restaurants and inspections loaded
  export DIR [FORMAT [COMPRESSION]]
                 write all inspections to DIR as csv, xlsx or parquet,
                 optionally compressed with gz, xz or zst
  help           show this list
  quit           leave the program
`

// Querier runs SQL against a loaded directory.
type Querier interface {
	Query(ctx context.Context, q string) (*mirror.Result, error)
}

// Shell answers queries about one loaded directory.
type Shell struct {
	dir    *sfinspect.Directory
	report sfinspect.LoadReport
	sql    Querier
	logger *slog.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithSQL enables the sql command.
func WithSQL(q Querier) Option {
	return func(s *Shell) {
		s.sql = q
	}
}

// WithReport adds the load counters to the stats command.
func WithReport(report sfinspect.LoadReport) Option {
	return func(s *Shell) {
		s.report = report
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a shell over dir.
func New(dir *sfinspect.Directory, opts ...Option) *Shell {
	s := &Shell{
		dir:    dir,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads commands from in and writes answers to out until quit, the end
// of in, or the cancellation of ctx. Reaching the end of in is not an error.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("shell stopped: %w", err)
		}
		if _, err := io.WriteString(out, prompt); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read command: %w", err)
			}
			return nil
		}

		done, err := s.Execute(ctx, scanner.Text(), out)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Execute runs a single command line. It reports done when the line asks the
// shell to quit. Only write failures are returned as errors; bad queries are
// answered on out.
func (s *Shell) Execute(ctx context.Context, line string, out io.Writer) (done bool, err error) {
	command, arg := splitCommand(line)
	s.logger.Debug("command", "name", command, "argument", arg)

	switch command {
	case "quit":
		return true, nil
	case "name":
		found, ok := s.dir.FindByNameKeyword(arg)
		return false, s.writeMatches(out, found, ok)
	case "zip":
		found, ok := s.dir.FindByZipSubstring(arg)
		return false, s.writeMatches(out, found, ok)
	case "sql":
		return false, s.runSQL(ctx, out, arg)
	case "stats":
		return false, s.writeStats(out)
	case "export":
		return false, s.export(ctx, out, arg)
	case "help":
		return false, writeLine(out, strings.TrimSuffix(help, "\n"))
	default:
		return false, writeLine(out, msgInvalidQuery)
	}
}

// splitCommand returns the lowercased first word of line and the trimmed
// remainder. A missing argument is the empty string.
func splitCommand(line string) (command, arg string) {
	line = strings.TrimSpace(line)
	command, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(command), strings.TrimSpace(arg)
}

// writeMatches prints every establishment of found, or the no-match message
func (s *Shell) writeMatches(out io.Writer, found *sfinspect.Directory, ok bool) error {
	if !ok {
		return writeLine(out, msgNoMatches)
	}
	if err := sfinspect.WriteSummaries(out, found); err != nil {
		return err
	}
	return writeLine(out, "")
}

// writeStats prints the size of the directory and the load counters
func (s *Shell) writeStats(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "establishments\t%d\n", s.dir.Len())
	fmt.Fprintf(tw, "inspections\t%d\n", s.dir.InspectionCount())
	if s.report.Rows > 0 {
		fmt.Fprintf(tw, "rows read\t%d\n", s.report.Rows)
		fmt.Fprintf(tw, "rows skipped\t%d\n", s.report.Skipped)
		fmt.Fprintf(tw, "rows rejected\t%d\n", s.report.Rejected)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return nil
}

// export writes the directory to the folder named by the first word of arg.
// The optional second and third words select format and compression.
func (s *Shell) export(ctx context.Context, out io.Writer, arg string) error {
	words := strings.Fields(arg)
	if len(words) == 0 || len(words) > 3 {
		return writeLine(out, msgInvalidQuery)
	}

	opts := sfinspect.NewExportOptions()
	if len(words) > 1 {
		format, err := sfinspect.ParseFileType(words[1])
		if err != nil {
			return writeLine(out, "Export failed: "+err.Error())
		}
		opts = opts.WithFormat(format)
	}
	if len(words) > 2 {
		compression, err := sfinspect.ParseCompressionType(words[2])
		if err != nil {
			return writeLine(out, "Export failed: "+err.Error())
		}
		opts = opts.WithCompression(compression)
	}

	path, err := sfinspect.Export(ctx, s.dir, words[0], opts)
	if err != nil {
		s.logger.Debug("export failed", "dir", words[0], "error", err)
		return writeLine(out, "Export failed: "+err.Error())
	}
	s.logger.Info("export written", "path", path, "format", opts.Format.String(), "compression", opts.Compression.String())
	return writeLine(out, fmt.Sprintf("Exported %d inspections to %s", s.dir.InspectionCount(), path))
}

// runSQL runs q on the mirror and prints the result as an aligned table.
// Query errors are shown to the user and do not stop the shell.
func (s *Shell) runSQL(ctx context.Context, out io.Writer, q string) error {
	if s.sql == nil {
		return writeLine(out, msgSQLDisabled)
	}
	if q == "" {
		return writeLine(out, msgInvalidQuery)
	}

	result, err := s.sql.Query(ctx, q)
	if err != nil {
		s.logger.Debug("sql query failed", "query", q, "error", err)
		return writeLine(out, "SQL error: "+err.Error())
	}
	return writeResult(out, result)
}

// writeResult prints the header and rows of result followed by a row count
func writeResult(out io.Writer, result *mirror.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write query result: %w", err)
	}

	suffix := "s"
	if len(result.Rows) == 1 {
		suffix = ""
	}
	return writeLine(out, fmt.Sprintf("(%d row%s)", len(result.Rows), suffix))
}

func writeLine(out io.Writer, s string) error {
	if _, err := io.WriteString(out, s+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
