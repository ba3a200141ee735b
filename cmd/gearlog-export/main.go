package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/highpoint-ops/gearlog/internal/db"
	"github.com/highpoint-ops/gearlog/internal/export"
	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// envOr returns the GEARLOG_* environment value for key, or fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv("GEARLOG_" + key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gearlog-export", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", envOr("DB", "gearlog.sqlite3"), "")
	fs.StringVar(&dbPath, "d", envOr("DB", "gearlog.sqlite3"), "")

	var outPath string
	fs.StringVar(&outPath, "out", "", "")
	fs.StringVar(&outPath, "o", "", "")

	var report string
	fs.StringVar(&report, "report", "all", "")
	fs.StringVar(&report, "r", "all", "")

	var asOfStr string
	fs.StringVar(&asOfStr, "asof", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: gearlog-export [flags]

Writes compliance reports from a gearlog database to an XLSX workbook.

Flags:
  -d, -db <path>       SQLite database path (default: gearlog.sqlite3)
  -o, -out <path>      output workbook path (default: <report>_<date>.xlsx)
  -r, -report <name>   overdue | redtag | expiry | all (default: all)
  -asof <date>         compute as of YYYY-MM-DD (default: today)
  -h, -help            show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	asOf := model.DateOnly(time.Now())
	if asOfStr != "" {
		d, err := model.ParseDate(asOfStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid -asof date %q, want YYYY-MM-DD\n", asOfStr)
			os.Exit(1)
		}
		asOf = d
	}

	wantOverdue := report == "overdue" || report == "all"
	wantRedTag := report == "redtag" || report == "all"
	wantExpiry := report == "expiry" || report == "all"
	if !wantOverdue && !wantRedTag && !wantExpiry {
		fmt.Fprintf(os.Stderr, "error: unknown report %q, want overdue, redtag, expiry or all\n", report)
		os.Exit(1)
	}

	if outPath == "" {
		outPath = fmt.Sprintf("%s_%s.xlsx", report, model.FormatDate(asOf))
	}

	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot open database %s: %v\n", dbPath, err)
		os.Exit(1)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	wb := export.New()

	if wantOverdue {
		rows, err := store.OverdueInspections(ctx, database, asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: overdue inspections report: %v\n", err)
			os.Exit(1)
		}
		if err := wb.AddOverdueSheet(rows); err != nil {
			fmt.Fprintf(os.Stderr, "error: building overdue sheet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Overdue inspections: %d rows\n", len(rows))
	}
	if wantRedTag {
		rows, err := store.RedTagReport(ctx, database, asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: red tag report: %v\n", err)
			os.Exit(1)
		}
		if err := wb.AddRedTagSheet(rows); err != nil {
			fmt.Fprintf(os.Stderr, "error: building red tag sheet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Red tag countdown: %d rows\n", len(rows))
	}
	if wantExpiry {
		rows, err := store.ExpiringSoftGoods(ctx, database, asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: expiring soft goods report: %v\n", err)
			os.Exit(1)
		}
		if err := wb.AddExpirySheet(rows); err != nil {
			fmt.Fprintf(os.Stderr, "error: building expiry sheet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Expiring soft goods: %d rows\n", len(rows))
	}

	if err := wb.SaveAs(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (as of %s)\n", outPath, model.FormatDate(asOf))
}
