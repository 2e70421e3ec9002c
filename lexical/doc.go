// Package lexical implements a BM25 term-overlap index over chunk
// contents. It is one of the two candidate generators feeding rank
// fusion; see the search package for the coordinator.
package lexical
