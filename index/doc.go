// Package index defines a minimal abstraction for vector indexes that can be
// built from embeddings, queried for kNN, and serialized for persistence.
// index/cover implements it over a tree/cover.Tree.
package index

