// Package connectors holds the upstream event sources. Each connector
// fetches raw events from one agenda provider and implements
// driven.EventSource.
package connectors
