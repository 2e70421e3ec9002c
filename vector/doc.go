// Package vector implements an exact cosine nearest-neighbor index
// over dense embedding vectors. Rows are stored unit-normalized and
// scanned either serially or sharded across CPUs; both backends rank
// identically.
package vector
