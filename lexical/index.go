package lexical

import (
	"math"
	"sort"
	"strings"
)

// BM25 parameters. Standard values from the literature; retrieval
// quality is not very sensitive to either within sane ranges.
const (
	k1 = 1.5
	b  = 0.75
)

// Index ranks documents by lexical overlap with a query using the BM25
// scoring function. Documents are identified by their append order:
// the i-th added document has index i, and indices never change.
//
// The index is not safe for concurrent mutation; the caller serializes
// Add against Retrieve.
type Index struct {
	tokens  [][]string
	docLens []int
	avgdl   float64
	tf      []map[string]int
	df      map[string]int
	idf     map[string]float64
}

// NewIndex creates an empty lexical index.
func NewIndex() *Index {
	return &Index{
		df:  make(map[string]int),
		idf: make(map[string]float64),
	}
}

// Build indexes the given document texts, replacing any existing state.
func Build(texts []string) *Index {
	idx := NewIndex()
	idx.Add(texts)
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.tokens)
}

// Add incorporates new documents into the index. Previously indexed
// documents keep their positions and tokenization; the inverse document
// frequencies are recomputed over the whole corpus, which is acceptable
// amortized cost for append-heavy workloads.
func (idx *Index) Add(texts []string) {
	if len(texts) == 0 {
		return
	}

	for _, text := range texts {
		tokens := strings.Fields(text)
		idx.tokens = append(idx.tokens, tokens)
		idx.docLens = append(idx.docLens, len(tokens))

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		idx.tf = append(idx.tf, tf)

		for tok := range tf {
			idx.df[tok]++
		}
	}

	idx.recompute()
}

// recompute refreshes the average document length and the IDF table.
func (idx *Index) recompute() {
	total := 0
	for _, l := range idx.docLens {
		total += l
	}
	n := len(idx.docLens)
	if n == 0 {
		idx.avgdl = 0
		return
	}
	idx.avgdl = float64(total) / float64(n)

	idx.idf = make(map[string]float64, len(idx.df))
	for term, df := range idx.df {
		// The +1 inside the log keeps IDF positive for very common terms.
		idx.idf[term] = math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}
}

// Retrieve returns the indices of the topK documents ranked by BM25
// score, best first. Ties are broken by original document order. A
// blank or whitespace-only query yields no results.
func (idx *Index) Retrieve(query string, topK int) []int {
	if strings.TrimSpace(query) == "" || topK <= 0 || idx.Len() == 0 {
		return nil
	}

	queryTokens := strings.Fields(query)
	scores := make([]float64, idx.Len())
	for i := range idx.tf {
		scores[i] = idx.score(queryTokens, i)
	}

	ranked := make([]int, idx.Len())
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, c int) bool {
		return scores[ranked[a]] > scores[ranked[c]]
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	return ranked[:topK]
}

// score computes the BM25 score of document i against the query tokens.
func (idx *Index) score(queryTokens []string, i int) float64 {
	tf := idx.tf[i]
	docLen := float64(idx.docLens[i])

	var score float64
	for _, tok := range queryTokens {
		f, ok := tf[tok]
		if !ok {
			continue
		}
		idf := idx.idf[tok]
		num := float64(f) * (k1 + 1)
		denom := float64(f) + k1*(1-b+b*docLen/idx.avgdl)
		score += idf * (num / denom)
	}
	return score
}
