// Package mocks provides hand-written test doubles for the store and
// event interfaces. Mocks default to returning their configured values
// and can be overridden per-call with the Fn fields.
package mocks
