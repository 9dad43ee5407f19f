// Package logger wraps zap for the device and its tools:
//   - a global sugared logger with a console encoder (stdout or any writer),
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and a shared atomic level,
//   - KV convenience functions (InfoKV, WarnKV, ErrorKV, ...).
//
// Coordinators receive a context and log through it, so every line carries the
// name of the component that produced it.
package logger
