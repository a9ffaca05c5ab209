// Command fintrack-import bulk-loads transactions from a CSV file into
// the configured data backend. Rows use the column order
// description,amount,type,category,date; a header row is skipped when
// present. Writes go through the regular backend so change events are
// published for running servers.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/identity"
	"fintrack/internal/log"
)

func main() {
	var (
		file   = flag.String("file", "", "path to the CSV file to import")
		user   = flag.String("user", "", "user handle to import into (32 hex characters)")
		dryRun = flag.Bool("dry-run", false, "validate the file without writing anything")
	)
	flag.Parse()

	cli.LoadEnvFile()

	if *file == "" || *user == "" {
		fmt.Fprintln(os.Stderr, "usage: fintrack-import -file transactions.csv -user <handle> [-dry-run]")
		os.Exit(2)
	}

	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentImport)
	if !identity.IsValidHandle(*user) {
		logger.Error("Invalid user handle", log.FieldUser, *user)
		os.Exit(2)
	}

	result := cli.InitBackend(logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("Failed to open CSV file", log.FieldError, err.Error(), log.FieldPath, *file)
		os.Exit(1)
	}
	defer f.Close()

	imported, skipped, err := importCSV(context.Background(), f, result.Store, *user, *dryRun, logger)
	if err != nil {
		logger.Error("Import aborted", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Import finished",
		log.FieldUser, *user,
		"imported", imported,
		"skipped", skipped,
		"dry_run", *dryRun)
	if skipped > 0 {
		os.Exit(1)
	}
}

type creator interface {
	Create(ctx context.Context, user string, f core.Fields) (string, error)
}

// importCSV reads rows, validates each as a draft and writes the valid
// ones. Invalid rows are logged and counted but do not stop the run.
func importCSV(ctx context.Context, r io.Reader, st creator, user string, dryRun bool, logger *log.Logger) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true

	line := 0
	for {
		record, rerr := reader.Read()
		if rerr == io.EOF {
			return imported, skipped, nil
		}
		if rerr != nil {
			return imported, skipped, fmt.Errorf("line %d: %w", line+1, rerr)
		}
		line++

		if line == 1 && isHeaderRow(record) {
			continue
		}

		draft := core.Draft{
			Description: strings.TrimSpace(record[0]),
			Amount:      strings.TrimSpace(record[1]),
			Type:        strings.ToLower(strings.TrimSpace(record[2])),
			Category:    strings.TrimSpace(record[3]),
			Date:        strings.TrimSpace(record[4]),
		}

		if errs := core.ValidateDraft(draft); len(errs) > 0 {
			logger.Warn("Skipping invalid row", "line", line, log.FieldError, joinMessages(errs))
			skipped++
			continue
		}
		fields, ferr := draft.Fields()
		if ferr != nil {
			logger.Warn("Skipping invalid row", "line", line, log.FieldError, ferr.Error())
			skipped++
			continue
		}

		if dryRun {
			imported++
			continue
		}

		id, cerr := st.Create(ctx, user, fields)
		if cerr != nil {
			return imported, skipped, fmt.Errorf("line %d: %w", line, cerr)
		}
		logger.Debug("Row imported", "line", line, log.FieldTxID, id)
		imported++
	}
}

func isHeaderRow(record []string) bool {
	return strings.EqualFold(strings.TrimSpace(record[0]), "description")
}

func joinMessages(errs map[string]string) string {
	msgs := make([]string, 0, len(errs))
	for _, m := range errs {
		msgs = append(msgs, m)
	}
	return strings.Join(msgs, "; ")
}
