// Package mocks provides hand-written test doubles for the store and auth
// interfaces. Each mock has in-memory default behavior that can be
// overridden per method through its Fn fields.
package mocks
