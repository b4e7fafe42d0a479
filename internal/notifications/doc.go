// Package notifications delivers run events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. Callers
// depend only on the Service interface, so alternative transports can be
// dropped in without touching pipeline code.
package notifications
