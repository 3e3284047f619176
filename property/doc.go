// Package property implements the lazy, typed value cells used to wire
// task inputs and outputs together. A Property holds one of three states
// (unset, a static value, or a value derived from a Supplier chain) and
// every value that passes through a Property is coerced through a small
// registry of value adapters built on top of zclconf/go-cty's ground type
// system.
//
// Nothing in this package depends on tasks, projects, or execution order:
// it is usable as a standalone lazy-value library, and the kraken package
// is simply its first (and largest) consumer.
package property
