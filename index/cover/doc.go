// Package cover adapts tree/cover's Euclidean cover tree to the index.Index
// interface: Build loads a batch of (id, vector) pairs into a tree/cover.Tree,
// and Query answers kNN by converting tree distances to a "higher is more
// similar" score.
package cover
