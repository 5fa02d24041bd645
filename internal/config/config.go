package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	SampleDBDSN string
	CSVDBDSN    string
	DataDir     string
	LogFile     string
	Seed        int64
	SampleDays  int
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, fills in variables that are not already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[warn] could not read .env: %v", err)
	}

	sample := os.Getenv("SAMPLE_DB_DSN")
	if sample == "" {
		sample = "ecommerce_sample.db"
	}
	csvDSN := os.Getenv("CSV_DB_DSN")
	if csvDSN == "" {
		csvDSN = "ecommerce_csv.db"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	// empty LOG_FILE means stderr only
	logFile := os.Getenv("LOG_FILE")

	cfg := Config{
		SampleDBDSN: sample,
		CSVDBDSN:    csvDSN,
		DataDir:     dataDir,
		LogFile:     logFile,
		Seed:        int64(intEnv("SEED", 42)),
		SampleDays:  intEnv("SAMPLE_DAYS", 30),
	}
	log.Printf("[config] SAMPLE_DB_DSN=%s CSV_DB_DSN=%s DATA_DIR=%s LOG_FILE=%s SEED=%d SAMPLE_DAYS=%d",
		cfg.SampleDBDSN, cfg.CSVDBDSN, cfg.DataDir, cfg.LogFile, cfg.Seed, cfg.SampleDays)
	return cfg
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[warn] %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}
