// Package patient provides the business boundary for the triage board.
// It defines the ordered Record container, best-effort field lookup,
// triage level normalization, the Store interface (in-memory persistence),
// and the Service that ingests records and forwards confirmations.
package patient
