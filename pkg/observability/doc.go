/*
Package observability turns story lifecycle events into metrics and logs.

Metrics feeds Prometheus counters from domain.LifecycleHooks; LogHooks writes
the same events to a structured logger. Combine both with domain.ChainHooks.
*/
package observability
