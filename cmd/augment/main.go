// Command augment rewrites a sales CSV in place, adding a placeholder LSTM
// column: the ARIMAX forecast plus Gaussian noise.
package main

import (
	"flag"
	"log"
	"os"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/services/placeholder"
	"SalesCast/pkg/config"
	applogger "SalesCast/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "config file path, empty for defaults")
	file := flag.String("file", "", "CSV to augment (defaults to data.path)")
	seed := flag.Int64("seed", 0, "noise seed (defaults to placeholder.seed)")
	std := flag.Float64("std", -1, "noise standard deviation (defaults to placeholder.std)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	path := cfg.Data.Path
	if *file != "" {
		path = *file
	}
	s := cfg.Placeholder.Seed
	if *seed != 0 {
		s = *seed
	}
	sd := cfg.Placeholder.Std
	if *std >= 0 {
		sd = *std
	}

	c := cfg.Data.Columns
	names := models.ColumnNames{
		Date:   c.Date,
		Actual: c.Actual,
		Arimax: c.Arimax,
		LSTM:   c.LSTM,
		Live:   c.Live,
		Price:  c.Price,
		Stock:  c.Stock,
	}
	if err := placeholder.New(names, s, sd, l).AugmentFile(path); err != nil {
		l.Error("augment failed", applogger.String("path", path), applogger.Error(err))
		os.Exit(1)
	}
}
