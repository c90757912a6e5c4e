/*
Package observability turns engine lifecycle events into metrics and logs.

Metrics registers Prometheus counters and exposes them as LifecycleHooks;
LoggingHooks writes the same events to a slog.Logger. Both are plain hooks
and compose with LifecycleHooks.Merge.
*/
package observability
