// Package mock provides test doubles for the ai interfaces. The mocks
// default to deterministic behavior and allow custom behavior injection via
// function fields.
package mock
