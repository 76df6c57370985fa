// Package types defines the core data structures shared across stencil:
// the template configuration document model, user selections, the
// filesystem abstraction, and the staged plan operations.
//
// Engines never mutate these values; a TemplateConfig is decoded once per
// invocation and flows read-only through planning and execution.
package types
