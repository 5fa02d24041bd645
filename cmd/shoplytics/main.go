package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"shoplytics/internal/config"
	applog "shoplytics/internal/log"
	"shoplytics/internal/repos"
	"shoplytics/internal/services"
)

const usage = `Usage: shoplytics <command>
  generate        generate sample e-commerce data into a fresh sample store
  load-csv        load data from the CSV files in DATA_DIR
  analyze [--csv] print the sales report (--csv: use the CSV-loaded store)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	log.SetOutput(os.Stderr)
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}

	command := strings.ToLower(os.Args[1])
	applog.StartRun(command)

	var err error
	switch command {
	case "generate":
		err = runGenerate(cfg)
	case "load-csv":
		err = runLoadCSV(cfg)
	case "analyze":
		err = runAnalyze(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s", command, usage)
		os.Exit(2)
	}
	if err != nil {
		applog.Error(command+".failed", err, nil)
		os.Exit(1)
	}
}

func runGenerate(cfg config.Config) error {
	if err := removeStore(cfg.SampleDBDSN); err != nil {
		return err
	}
	db, err := repos.OpenDB(cfg.SampleDBDSN)
	if err != nil {
		return err
	}
	store := repos.NewStore(db)
	defer store.Close()

	fmt.Println("Generating sample e-commerce data...")
	sum, err := services.NewGenerator(store, cfg.Seed, cfg.SampleDays).Generate()
	if err != nil {
		return err
	}
	fmt.Println("Sample data generated successfully!")
	fmt.Printf("- %d categories\n", sum.Categories)
	fmt.Printf("- %d products\n", sum.Products)
	fmt.Printf("- %d customers\n", sum.Customers)
	fmt.Printf("- %d orders with %d items over %d days\n", sum.Orders, sum.OrderItems, cfg.SampleDays)
	return nil
}

func runLoadCSV(cfg config.Config) error {
	db, err := repos.OpenDB(cfg.CSVDBDSN)
	if err != nil {
		return err
	}
	store := repos.NewStore(db)
	defer store.Close()

	fmt.Printf("Loading data from CSV files in %s...\n", cfg.DataDir)
	sum, err := services.NewCSVLoader(store, cfg.DataDir).LoadAll()
	fmt.Printf("   Loaded %d categories\n", sum.Categories)
	fmt.Printf("   Loaded %d products\n", sum.Products)
	fmt.Printf("   Loaded %d customers\n", sum.Customers)
	fmt.Printf("   Loaded %d orders with %d items\n", sum.Orders, sum.OrderItems)
	if err != nil {
		return err
	}
	fmt.Println("CSV data loading completed!")
	return nil
}

func runAnalyze(cfg config.Config, args []string) error {
	fset := flag.NewFlagSet("analyze", flag.ContinueOnError)
	useCSV := fset.Bool("csv", false, "analyze the CSV-loaded store")
	if err := fset.Parse(args); err != nil {
		return err
	}
	dsn := cfg.SampleDBDSN
	if *useCSV {
		dsn = cfg.CSVDBDSN
	}

	db, err := repos.OpenDB(dsn)
	if err != nil {
		return err
	}
	store := repos.NewStore(db)
	defer store.Close()

	if run, err := store.Imports.Latest(); err == nil {
		applog.Info("analyze.store", map[string]any{"dsn": dsn, "last_import": run.ID, "source": run.Source, "status": run.Status})
	} else {
		applog.Warn("analyze.store.empty", map[string]any{"dsn": dsn})
	}

	fmt.Print("Analyzing sales data...\n\n")
	return services.NewAnalyzer(store.Sales).WriteReport(os.Stdout)
}

// removeStore deletes the store file behind dsn so generate starts fresh.
// In-memory stores are left alone.
func removeStore(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if strings.Contains(path[i:], "mode=memory") {
			return nil
		}
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reset sample store: %w", err)
	}
	applog.Info("sample.store.reset", map[string]any{"path": path})
	return nil
}
