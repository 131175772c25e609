// Package driving holds the interfaces the CLI, REST, MCP and TUI
// adapters call into. internal/core/services implements them.
package driving
