package vectorindex

import (
	"context"
	"fmt"
	"time"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"docvault-go/internal/config"
	"docvault-go/internal/errs"
	"docvault-go/internal/model"
)

// Chroma metadata attribute keys.
const (
	attrSource  = "source"
	attrOrdinal = "ordinal"
	attrKind    = "kind"
	attrModTime = "mtime"
)

// Chroma stores chunks in a Chroma collection. Vectors are supplied
// explicitly so the index never embeds on its own; both sides of retrieval
// go through the one configured embedding model.
type Chroma struct {
	col chroma.Collection
}

// NewChroma connects to the Chroma server and opens (or creates) the
// configured collection.
func NewChroma(ctx context.Context, cfg config.ChromaConfig) (*Chroma, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	col, err := client.GetOrCreateCollection(ctx, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to open chroma collection: %w", err)
	}
	return &Chroma{col: col}, nil
}

func (c *Chroma) Upsert(ctx context.Context, chunks []model.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]chroma.DocumentID, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	vectors := make([]embeddings.Embedding, 0, len(chunks))
	metas := make([]chroma.DocumentMetadata, 0, len(chunks))
	for _, ch := range chunks {
		ids = append(ids, chroma.DocumentID(ch.ChunkID))
		texts = append(texts, ch.TextContent)
		vectors = append(vectors, embeddings.NewEmbeddingFromFloat32(ch.Vector))
		metas = append(metas, chroma.NewDocumentMetadata(
			chroma.NewStringAttribute(attrSource, ch.Source),
			chroma.NewIntAttribute(attrOrdinal, int64(ch.Ordinal)),
			chroma.NewStringAttribute(attrKind, ch.Kind),
			chroma.NewIntAttribute(attrModTime, ch.ModTime),
		))
	}

	err := c.col.Add(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithEmbeddings(vectors...),
		chroma.WithMetadatas(metas...),
	)
	if err != nil {
		return &errs.IndexUnavailableError{Op: "upsert", Err: err}
	}
	return nil
}

func (c *Chroma) DeleteBySource(ctx context.Context, source string) error {
	err := c.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(attrSource, source)))
	if err != nil {
		return &errs.IndexUnavailableError{Op: "delete", Err: err}
	}
	return nil
}

func (c *Chroma) Query(ctx context.Context, vector []float32, k int, filter Filter) ([]model.RawMatch, error) {
	opts := []chroma.CollectionQueryOption{
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(k),
	}
	if where := whereFromFilter(filter); where != nil {
		opts = append(opts, chroma.WithWhereQuery(where))
	}

	r, err := c.col.Query(ctx, opts...)
	if err != nil {
		return nil, &errs.IndexUnavailableError{Op: "query", Err: err}
	}

	docs := r.GetDocumentsGroups()[0]
	metadatas := r.GetMetadatasGroups()[0]
	distances := r.GetDistancesGroups()[0]

	matches := make([]model.RawMatch, 0, len(docs))
	for i := range docs {
		source, _ := metadatas[i].GetString(attrSource)
		ordinal, _ := metadatas[i].GetInt(attrOrdinal)
		kind, _ := metadatas[i].GetString(attrKind)
		mtime, _ := metadatas[i].GetInt(attrModTime)
		matches = append(matches, model.RawMatch{
			ChunkID:  fmt.Sprintf("%s:%d", source, ordinal),
			Source:   source,
			Ordinal:  int(ordinal),
			Kind:     kind,
			ModTime:  time.Unix(mtime, 0),
			Text:     docs[i].ContentString(),
			Distance: float64(distances[i]),
		})
	}
	return matches, nil
}

// whereFromFilter translates a Filter into a Chroma where clause so the
// server excludes non-matching chunks before the nearest-neighbor cut;
// filtering the k nearest afterwards could starve a filtered query of
// results that exist. Returns nil for an empty filter.
func whereFromFilter(filter Filter) chroma.WhereClause {
	var clauses []chroma.WhereClause
	if len(filter.Kinds) > 0 {
		clauses = append(clauses, chroma.InString(attrKind, filter.Kinds...))
	}
	if !filter.Oldest.IsZero() {
		clauses = append(clauses, chroma.GteInt(attrModTime, int(filter.Oldest.Unix())))
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return chroma.And(clauses...)
	}
}
