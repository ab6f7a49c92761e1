// ubltool generates and checks PEPPOL BIS 3 UBL documents from the same JSON
// the API accepts, without a database or gateway.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"peppolsheet/internal/logger"
)

func main() {
	// .env is optional; only LOG_LEVEL and LOG_FORMAT are read
	_ = godotenv.Load()

	cfg := logger.DefaultConfig()
	cfg.Output = "stderr"
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Level = lvl
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	if err := logger.Setup(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
