// Package domain holds the event assistant's plain data types: event
// metadata and documents, scored candidates, retrieval queries and
// policies, answers with their citations, rebuild and evaluation results,
// and application settings.
//
// It depends on the standard library only; every other package may
// import it.
package domain
