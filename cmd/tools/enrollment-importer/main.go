// cmd/tools/enrollment-importer/main.go
//
// Imports the freshman enrollment list into the eligibility registry from a
// CSV export. Expected columns: student_id, name, username, initial_password.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"member-registration/internal/common/config"
	"member-registration/internal/common/database"
	"member-registration/internal/models"
	"member-registration/internal/store/enrollment"
)

func main() {
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	filePath := importCmd.String("file", "", "Path to the CSV enrollment list")
	dryRun := importCmd.Bool("dry-run", false, "Parse and report without writing to the registry")
	skipHeader := importCmd.Bool("skip-header", true, "Skip the first CSV row")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		importCmd.Parse(os.Args[2:])
		if *filePath == "" {
			fmt.Println("Error: -file is required for import.")
			importCmd.Usage()
			os.Exit(1)
		}
		if err := runImport(*filePath, *dryRun, *skipHeader); err != nil {
			fmt.Printf("Import failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func runImport(path string, dryRun, skipHeader bool) error {
	students, err := parseCSV(path, skipHeader)
	if err != nil {
		return err
	}
	fmt.Printf("Parsed %d students from %s\n", len(students), path)

	if dryRun {
		for _, s := range students {
			fmt.Printf("  %s  %s  username=%s\n", s.StudentID, s.Name, s.Username)
		}
		fmt.Println("Dry run, nothing written.")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pg.Close()

	ctx := context.Background()
	if err := pg.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}

	store := enrollment.NewPostgresStore(pg.DB)
	for i := range students {
		if err := store.Upsert(ctx, &students[i]); err != nil {
			return fmt.Errorf("upsert %s failed: %w", students[i].StudentID, err)
		}
	}

	fmt.Printf("Imported %d students.\n", len(students))
	return nil
}

func parseCSV(path string, skipHeader bool) ([]models.EnrolledStudent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var students []models.EnrolledStudent
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		if line == 1 && skipHeader {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least student_id and name, got %d columns", line, len(record))
		}

		student := models.EnrolledStudent{
			StudentID:  record[0],
			Name:       record[1],
			EnrolledAt: time.Now().UTC(),
		}
		if len(record) > 2 {
			student.Username = record[2]
		}
		if len(record) > 3 {
			student.InitialPassword = record[3]
		}
		if student.StudentID == "" || student.Name == "" {
			return nil, fmt.Errorf("line %d: student_id and name must not be empty", line)
		}
		students = append(students, student)
	}

	return students, nil
}

func help() {
	fmt.Println(`Usage: enrollment-importer <command> [flags]

Commands:
  import   Import an enrollment list CSV into the registry
  help     Show this help

Import flags:
  -file        Path to the CSV file (required)
  -dry-run     Parse and report without writing
  -skip-header Skip the first CSV row (default true)`)
}
