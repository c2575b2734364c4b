// Package catalog answers read queries over the stored psalm corpus.
//
// Only the psalm list is cached. Its cache key is the raw request query
// string, and a hit returns the stored payload bytes without consulting
// storage again. Point lookups always read storage.
package catalog
