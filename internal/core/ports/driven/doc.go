// Package driven holds the interfaces core services call out through:
// the vector index and its loader and builder, the embedding and chat
// models, settings, prompts, history, and the agenda source.
//
// Answering needs EventIndex (through IndexLoader) and LLMService.
// Everything else may be nil: without PromptStore the built-in French
// prompts apply, without AskLogStore and RebuildLogStore nothing is
// recorded, without IndexBuilder rebuilds are refused and without
// EventSource ingestion is unavailable.
//
// This package imports domain and nothing else from internal/.
package driven
