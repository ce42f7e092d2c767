// Package notifications publishes run lifecycle events to an ntfy
// topic. Unconfigured installs get a noop service.
package notifications
