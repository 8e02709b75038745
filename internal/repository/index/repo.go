// Package index persists and queries SOP index records in the vector store.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/chanmyae99/sopqa/internal/config"
	"github.com/chanmyae99/sopqa/internal/db"
	"github.com/chanmyae99/sopqa/internal/domain"
)

// store is the subset of db.Store the repo needs.
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo maps domain index records onto the hash-per-record vector index layout.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	vectorDim int
	hnswM     int
	hnswEF    int
}

// New creates an index repository over a vector store.
func New(s store, cfg config.IndexConfig, vectorDim int) *Repo {
	return &Repo{
		store:     s,
		indexName: cfg.Name,
		keyPrefix: cfg.KeyPrefix,
		vectorDim: vectorDim,
		hnswM:     cfg.HNSWM,
		hnswEF:    cfg.HNSWEFConstruct,
	}
}

// EnsureIndex creates the FT index if it does not exist yet. Safe to call on
// every startup.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:   r.indexName,
		Prefix: r.keyPrefix,
		Fields: []db.IndexField{
			{Name: fieldAssetType, Type: db.FieldTag},
			{Name: fieldContent, Type: db.FieldText},
			{Name: fieldSourceName, Type: db.FieldTag},
			{Name: fieldPageNumber, Type: db.FieldNumeric},
			{Name: fieldSection, Type: db.FieldText},
			{Name: fieldParagraph, Type: db.FieldNumeric},
			{Name: fieldSheetName, Type: db.FieldTag},
			{Name: fieldRowNumber, Type: db.FieldNumeric},
			{Name: fieldImageCaption, Type: db.FieldText},
			{
				Name:              fieldContentVector,
				Type:              db.FieldVector,
				VectorDim:         r.vectorDim,
				VectorM:           r.hnswM,
				VectorEFConstruct: r.hnswEF,
			},
			{
				Name:              fieldImageVector,
				Type:              db.FieldVector,
				VectorDim:         r.vectorDim,
				VectorM:           r.hnswM,
				VectorEFConstruct: r.hnswEF,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// UpsertBatch writes one batch of records. Keys are deterministic, so a rerun
// over the same documents overwrites in place.
func (r *Repo) UpsertBatch(ctx context.Context, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(records))
	for i := range records {
		items = append(items, db.HashSetItem{
			Key:    r.keyPrefix + records[i].Key,
			Fields: buildHashFields(&records[i]),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(records), err)
	}
	return nil
}

// SearchText runs a KNN query over text and table records.
func (r *Repo) SearchText(ctx context.Context, vector []float32, k int) ([]domain.RetrievedRecord, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:   r.indexName,
		VectorField: fieldContentVector,
		Vector:      vector,
		K:           k,
		Filter: db.TagFilter{
			Field:  fieldAssetType,
			Values: []string{string(domain.AssetText), string(domain.AssetTable)},
		},
		ReturnFields: textReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search text knn: %w", err)
	}

	records := make([]domain.RetrievedRecord, 0, len(res.Entries))
	for i := range res.Entries {
		records = append(records, parseTextEntry(&res.Entries[i]))
	}
	return records, nil
}

// SearchImages runs a KNN query over image records.
func (r *Repo) SearchImages(ctx context.Context, vector []float32, k int) ([]domain.RetrievedRecord, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:   r.indexName,
		VectorField: fieldImageVector,
		Vector:      vector,
		K:           k,
		Filter: db.TagFilter{
			Field:  fieldAssetType,
			Values: []string{string(domain.AssetImage)},
		},
		ReturnFields: imageReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search image knn: %w", err)
	}

	records := make([]domain.RetrievedRecord, 0, len(res.Entries))
	for i := range res.Entries {
		records = append(records, parseImageEntry(&res.Entries[i]))
	}
	return records, nil
}
