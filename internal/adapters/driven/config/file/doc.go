// Package file provides filesystem-backed configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at <home>/config.toml
//   - PromptStore: editable answer prompts under <home>/prompts
//
// The home directory is $PULSRAG_HOME when set, ~/.pulsrag otherwise.
package file
