// Package database handles database connections for the vehicle catalog.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure MySQL connections based on the application's configuration. An
// SQLite driver is also wired in so that tests and single-node deployments can
// run against an in-memory or file-backed database.
//
// # Connect
//
// The Connect function establishes a connection, applies pool settings and
// verifies it with a ping before returning.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
