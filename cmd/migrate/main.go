package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"neuromorph/app"
	"neuromorph/internal/config"
	"neuromorph/internal/container"
	"neuromorph/internal/migration"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [measurements_root]")
	}

	databaseURL := os.Args[1]
	driver := config.DriverSQLite
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		driver = config.DriverPostgres
	}
	os.Setenv("DATABASE_DRIVER", driver)
	os.Setenv("DATABASE_URL", databaseURL)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	c, err := container.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer c.Shutdown(ctx)
	log.Printf("Schema %s ready on %s", migration.NewRunner().Version(), driver)

	if len(os.Args) < 3 {
		return
	}

	// each subdirectory of the root is one assay
	root := os.Args[2]
	dirs, err := assayDirectories(root)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", root, err)
	}
	log.Printf("Found %d assay directories in %s", len(dirs), root)

	imported, skipped := 0, 0
	for _, dir := range dirs {
		name := filepath.Base(dir)
		res, err := c.Imports.Import(ctx, app.ImportRequest{Assay: name, Directory: dir})
		if err != nil {
			log.Printf("Skipping %s: %v", name, err)
			skipped++
			continue
		}
		for _, f := range res.Failures {
			log.Printf("  %v", f.Err)
		}
		log.Printf("Imported %s: %d files, %d rows, %d already present", name, res.Files, res.Rows, len(res.Duplicates))
		imported++
	}
	log.Printf("Migration complete: %d assays imported, %d skipped", imported, skipped)
}

func assayDirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
