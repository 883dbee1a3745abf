// Package config provides configuration management for dealersync.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Scrape: inventory page URL, HTTP timeout, run lock and sync interval
//   - Database: MySQL connection details
//   - Storage: S3/MinIO credentials and bucket for snapshot archives
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
