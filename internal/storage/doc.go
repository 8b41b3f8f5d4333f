// Package storage provides the BBolt history journal for nxsteg.
//
// Database structure uses two buckets:
//   - config: schema version, creation timestamp
//   - history: one JSON record per embed or extract, keyed by a
//     big-endian sequence number so iteration is chronological
//
// Records never contain passwords or payload contents; only sizes,
// paths and the SHA-256 of the payload are kept.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
