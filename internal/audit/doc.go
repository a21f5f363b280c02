// Package audit persists operational events and user feedback as
// newline-delimited JSON. Records are append-only and write-once; the
// package never reads them back except through the in-memory mirror of
// recent events kept for local inspection.
package audit
