// Package services implements the driving ports.
//
// FilterCandidates, Gate and Retriever are pure functions of their input
// and hold no state. IndexProvider is the one shared mutable resource: a
// cached index handle swapped after a successful rebuild.
package services
