package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ehr/patientor/internal/bmi"
	"github.com/ehr/patientor/internal/config"
	"github.com/ehr/patientor/internal/domain/diagnosis"
	"github.com/ehr/patientor/internal/domain/patient"
	"github.com/ehr/patientor/internal/platform/db"
	"github.com/ehr/patientor/migrations"
)

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required for migrations")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrations.FS), pool.Close, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	})

	return cmd
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

const (
	validatePatient = "patient"
	validateEntry   = "entry"
)

func validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:       "validate (patient|entry) [file]",
		Short:     "Validate a patient or entry JSON document",
		Long:      "Reads a JSON object from file, or stdin when file is omitted or \"-\", and runs it through the same checks as the API.",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{validatePatient, validateEntry},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			catalog := diagnosis.MustCatalog(diagnosis.Defaults)
			var opts []patient.Option
			if strict {
				opts = append(opts, patient.WithStrictDates())
			}
			parser := patient.NewParser(catalog, opts...)
			return validateDocument(cmd.OutOrStdout(), in, args[0], parser, catalog)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict-dates", false, "Accept only YYYY-MM-DD dates")
	return cmd
}

// validateDocument writes the normalised patient as JSON, or the entry as
// text, when the document passes validation.
func validateDocument(w io.Writer, r io.Reader, kind string, parser *patient.Parser, names patient.DiagnosisNamer) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("document must be a JSON object: %w", err)
	}

	switch kind {
	case validatePatient:
		np, err := parser.ToNewPatient(raw)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(np)
	case validateEntry:
		e, err := parser.ToNewEntry(raw)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, patient.Describe(e, names))
		return err
	}
	return fmt.Errorf("unknown document kind %q, want %q or %q", kind, validatePatient, validateEntry)
}

func bmiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bmi <height-cm> <weight-kg>",
		Short: "Classify body mass index",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bmi.ParseArgs(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (BMI %s)\n", bmi.Classify(m.Index()), m)
			return nil
		},
	}
}
