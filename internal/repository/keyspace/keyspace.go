// Package keyspace names Redis keys and FT indexes for an index name.
//
//	<prefix><index>:idx   FT index
//	<prefix><index>:<id>  JSON document
package keyspace

import "strings"

// Space derives key names under a configured prefix.
type Space struct {
	prefix string
}

// New creates a Space. The prefix is used verbatim (e.g. "shelfdex:").
func New(prefix string) Space { return Space{prefix: prefix} }

// Index returns the FT index name for index.
func (s Space) Index(index string) string { return s.prefix + index + ":idx" }

// DocPrefix returns the key prefix covering every document of index.
func (s Space) DocPrefix(index string) string { return s.prefix + index + ":" }

// Doc returns the key of document id in index.
func (s Space) Doc(index, id string) string { return s.DocPrefix(index) + id }

// DocID strips the document prefix from a key returned by FT.SEARCH.
func (s Space) DocID(index, key string) string {
	return strings.TrimPrefix(key, s.DocPrefix(index))
}
