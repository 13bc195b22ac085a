package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/config"
	"github.com/mrlokans/courseimport/internal/database"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/services"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// CourseImportCommand imports courses from a CSV file on disk
type CourseImportCommand struct {
	Source       string
	Delimiter    string
	Encoding     string
	Category     string
	Thumbnails   bool
	DatabasePath string

	cfg    *config.Config
	logger logrus.FieldLogger
	out    io.Writer
	errOut io.Writer
}

// NewCourseImportCommand creates a new CourseImportCommand. cfg supplies the
// defaults for every flag.
func NewCourseImportCommand(cfg *config.Config, logger logrus.FieldLogger) *CourseImportCommand {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CourseImportCommand{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetOutput redirects the report and usage text.
func (cmd *CourseImportCommand) SetOutput(out, errOut io.Writer) {
	cmd.out = out
	cmd.errOut = errOut
}

// ParseFlags parses command line flags
func (cmd *CourseImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(cmd.errOut)

	fs.StringVar(&cmd.Source, "source", "", "Path to the CSV file to import (required)")
	fs.StringVar(&cmd.Delimiter, "delimiter", cmd.cfg.Import.DefaultDelimiter, "Field delimiter: comma, semicolon, tab, colon or cfg")
	fs.StringVar(&cmd.Encoding, "encoding", cmd.cfg.Import.DefaultEncoding, "Character encoding of the file")
	fs.StringVar(&cmd.Category, "category", cmd.cfg.Import.DefaultCategory, "Default category id or idnumber (first category if empty)")
	fs.BoolVar(&cmd.Thumbnails, "thumbnails", true, "Download course thumbnails")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(cmd.errOut, "Usage: %s import -source FILE [options]\n\n", os.Args[0])
		fmt.Fprintf(cmd.errOut, "Create or update external content courses from a CSV file.\n\n")
		fmt.Fprintf(cmd.errOut, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(cmd.errOut, "\nExamples:\n")
		fmt.Fprintf(cmd.errOut, "  %s import -source courses.csv\n", os.Args[0])
		fmt.Fprintf(cmd.errOut, "  %s import -source courses.csv -delimiter semicolon -encoding ISO-8859-1 -thumbnails=false\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Source == "" {
		fs.Usage()
		return errors.New("-source is required")
	}
	return nil
}

// Run executes the import and prints the plain report. Session-fatal
// problems are returned as one error listing every message.
func (cmd *CourseImportCommand) Run(ctx context.Context) error {
	content, err := os.ReadFile(cmd.Source)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	components, err := services.Build(db, cmd.cfg, cmd.logger)
	if err != nil {
		return fmt.Errorf("failed to initialise import: %w", err)
	}
	// events must be written before the process exits
	components.Audit.SetAsync(false)

	var category *string
	if cmd.Category != "" {
		category = &cmd.Category
	}
	thumbnails := cmd.Thumbnails

	result, err := components.Imports.Import(ctx, services.StageRequest{
		Content:   content,
		Encoding:  cmd.Encoding,
		Delimiter: importers.Delimiter(cmd.Delimiter),
		Source:    filepath.Base(cmd.Source),
	}, category, &thumbnails, services.OriginCLI, tracker.ModePlain, cmd.out)
	if err != nil {
		var sessionErr *importers.SessionError
		if errors.As(err, &sessionErr) {
			return errors.New(strings.Join(sessionErr.Messages, "\n"))
		}
		return err
	}

	cmd.logger.WithFields(logrus.Fields{
		"source": cmd.Source,
		"result": result.Summary.String(),
	}).Info("Import finished")
	return nil
}
