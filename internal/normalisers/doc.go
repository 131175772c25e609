// Package normalisers provides implementations of the EventNormaliser
// interface. Each normaliser understands the raw event format of one
// upstream agenda provider and produces cleaned EventRecords.
package normalisers
