// Command inspect loads the configured datasets once and prints what the
// normalization pipeline made of them: resolved columns, period range,
// undated and dropped counts. Run it after receiving a new export to see
// whether the alias lists still match before the dashboard does.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ouvipanel/internal/config"
	"ouvipanel/internal/dataset"
)

func main() {
	var (
		only    = flag.String("dataset", "", "inspect only the named dataset")
		columns = flag.Bool("columns", false, "list every normalized column header")
		timeout = flag.Duration("timeout", 2*time.Minute, "load timeout")
	)
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loader := dataset.NewLoader(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := false
	for _, src := range cfg.Datasets.Sources {
		if *only != "" && src.Name != *only {
			continue
		}
		if err := inspect(ctx, loader, src, *columns); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", src.Name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(ctx context.Context, loader *dataset.Loader, src dataset.Source, listColumns bool) error {
	set, err := loader.Load(ctx, src)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", set.Name, src.Path)
	fmt.Printf("  records:      %d\n", set.Len())
	fmt.Printf("  undated:      %d\n", set.UndatedCount())
	fmt.Printf("  dropped dates:%d\n", set.DroppedDates)

	if set.DateColumnMissing {
		fmt.Printf("  date column:  MISSING (tried %s)\n", strings.Join(src.DateField.Aliases, ", "))
	} else {
		fmt.Printf("  date column:  %s\n", set.DateColumn)
	}

	if periods := set.Periods(); len(periods) > 0 {
		fmt.Printf("  period range: %s .. %s\n",
			periods[len(periods)-1].String(), periods[0].String())
	} else {
		fmt.Printf("  period range: none\n")
	}

	if len(set.MissingFields) > 0 {
		fields := make([]string, 0, len(set.MissingFields))
		for f := range set.MissingFields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Printf("  missing:      %s (tried %s)\n", f, strings.Join(set.MissingFields[f], ", "))
		}
	}

	if listColumns {
		for _, c := range set.Columns {
			fmt.Printf("  column:       %s\n", c)
		}
	}

	fmt.Println()
	return nil
}
