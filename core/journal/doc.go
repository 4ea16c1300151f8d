// Package journal keeps one record per extraction, packing or assignment
// run so past runs can be listed and filtered.
package journal
