// Package shared holds helpers used across packages that belong to no single
// layer. Today that is testutil, which captures slog output in tests so
// packages can assert on what they log.
package shared
