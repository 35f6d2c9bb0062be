// Package testutil provides seeded generators for synthetic galleries used in
// tests and examples.
package testutil
