// Package db defines the storage contract for the vector index. The concrete
// implementation lives in db/redis; upper layers depend only on Store.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrIndexExists signals that an FT index with that name already exists.
var ErrIndexExists = errors.New("index already exists")

// Operation names for Error.Op.
const (
	OpPing        = "ping"
	OpCreateIndex = "create_index"
	OpIndexInfo   = "index_info"
	OpHSet        = "hset"
	OpSearch      = "search"
)

// Error wraps a store failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("db %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// FieldType enumerates FT index field types used by the schema.
type FieldType string

const (
	FieldTag     FieldType = "tag"
	FieldText    FieldType = "text"
	FieldNumeric FieldType = "numeric"
	FieldVector  FieldType = "vector"
)

// IndexField describes one field of an FT index schema.
type IndexField struct {
	Name string
	Type FieldType

	// Vector fields only.
	VectorDim         int
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over hash keys with a common prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// HashSetItem is one hash write in a multi-set batch.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// TagFilter restricts a KNN query to records whose tag field matches one of
// the given values.
type TagFilter struct {
	Field  string
	Values []string
}

// KNNQuery is a filtered vector similarity query against one vector field.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	Filter       TagFilter
	ReturnFields []string
}

// SearchEntry is one hit of a similarity query.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the outcome of a similarity query, entries in
// descending-similarity order as returned by the index.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Store is the vector index storage contract.
type Store interface {
	Ping(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error

	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)

	HSetMulti(ctx context.Context, items []HashSetItem) error

	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
