// Package mock provides test doubles for the ai contracts.
//
// The doubles default to deterministic behavior (hash-derived vectors,
// canned responses) and accept function fields for injecting failures or
// custom replies in tests.
package mock
