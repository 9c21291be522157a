// Package catalog loads the governance catalog (datasets, columns, lineage
// and audits) from a configured source.
//
// Sources register by type name, the same way database adapters do:
//
//	csv       four CSV files in a data directory (default)
//	sqlite    the govpilot state database
//	duckdb    a DuckDB database, or the CSV files queried in memory
//	postgres  four tables in a PostgreSQL schema
//
// Every source produces raw rows; decoding into core records and validation
// happen once, in Load, so all sources share the same typing rules.
package catalog
