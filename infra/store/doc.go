// Package store persists extracted trips, packed shifts, driver shifts and
// the driver roster in SQLite, and imports rosters from CSV or YAML files.
package store
