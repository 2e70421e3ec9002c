// Package fusion merges ranked candidate lists from heterogeneous
// retrieval methods into a single ordering using Reciprocal Rank
// Fusion.
package fusion
