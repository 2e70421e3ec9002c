package search

import (
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/fusion"
)

// RetrieveMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate rankings during a query.
type RetrieveMonitor interface {
	Start(query string)
	AfterLexicalSearch(indices []int)
	AfterVectorSearch(indices []int)
	AfterFusion(results []fusion.Result)
	Finish(results []core.ScoredChunk)
}

// noopMonitor is a no-op implementation of RetrieveMonitor
type noopMonitor struct{}

var _ RetrieveMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                {}
func (n *noopMonitor) AfterLexicalSearch(_ []int)    {}
func (n *noopMonitor) AfterVectorSearch(_ []int)     {}
func (n *noopMonitor) AfterFusion(_ []fusion.Result) {}
func (n *noopMonitor) Finish(_ []core.ScoredChunk)   {}
