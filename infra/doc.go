// Package infra contains technical adapters such as the zerolog logger,
// metrics exporters and the SQLite store. These packages should depend only
// on the interfaces and types defined in the core packages.
package infra
