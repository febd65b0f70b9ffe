// Package config provides centralized configuration management for staypulse.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe Config to the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The file is taken from STAYPULSE_CONFIG_FILE when set, otherwise from
// config.yaml or configs/config.yaml in the working directory.
//
// # Environment Variables
//
// All environment variables follow the pattern STAYPULSE_<SECTION>_<KEY>:
//
//	STAYPULSE_SERVER_PORT=8080
//	STAYPULSE_DATA_SOURCE=/srv/Airbnb_Open_Data.csv
//	STAYPULSE_THRESHOLDS_MIN_NIGHTS_QUANTILE=0.99
//	STAYPULSE_THRESHOLDS_BUDGET_TOLERANCE=0.15
//	STAYPULSE_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
