// Package observability provides a ready-made hook extension that exports
// scheduler lifecycle metrics through OpenTelemetry.
//
// Register it on a scheduler's hook registry:
//
//	hooks := hook.NewRegistry(logger)
//	hooks.Register(observability.NewMetricsExtension())
//	s, _ := airfair.New(airfair.WithHooks(hooks))
//
// If no global MeterProvider is configured, the OTel API hands back noop
// instruments and the extension costs next to nothing.
package observability
