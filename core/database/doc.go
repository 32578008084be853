// Package database handles index store connections and schema inspection.
//
// It provides a wrapper around GORM to configure the relational store that
// holds one analysis run: definitions, properties, references, the transitive
// closure and recorded mod operations.
//
// # Connect
//
// Connect opens the store. The sqlite driver (default) maps one analysis run
// to one store file; the mysql driver is available for shared deployments.
//
// # Schema Inspection
//
// GetTableColumns and VerifyTables support the store consistency check that
// runs before report queries. Unlike ingestion-side errors, inspection
// failures are bubbled, since they indicate a broken store rather than bad
// input data.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Store connection failed", err)
//	}
package database
