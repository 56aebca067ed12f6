package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docvault-go/internal/chunk"
	"docvault-go/internal/config"
	"docvault-go/internal/errs"
	"docvault-go/internal/indexer"
	"docvault-go/internal/model"
	"docvault-go/internal/vectorindex"
	"docvault-go/pkg/extract"
	"docvault-go/pkg/kafka"
)

type stubEmbedder struct{}

func (stubEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) Model() string { return "stub-embedder" }

type fakeRepo struct {
	indexed map[string]int
	failed  map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{indexed: make(map[string]int), failed: make(map[string]bool)}
}

func (r *fakeRepo) Upsert(doc *model.Document) error               { return nil }
func (r *fakeRepo) FindBySource(s string) (*model.Document, error) { return nil, nil }
func (r *fakeRepo) FindAll() ([]model.Document, error)             { return nil, nil }
func (r *fakeRepo) MarkFailed(source string) error                 { r.failed[source] = true; return nil }
func (r *fakeRepo) DeleteBySource(source string) error             { return nil }

func (r *fakeRepo) MarkIndexed(source string, chunkCount int) error {
	r.indexed[source] = chunkCount
	return nil
}

func newTestProcessor(idx vectorindex.Index) (*Processor, *fakeRepo) {
	repo := newFakeRepo()
	ix := indexer.New(chunk.NewSplitter(10, 2), stubEmbedder{}, idx, time.Second)
	p := NewProcessor(repo, extract.NewExtractor(config.TikaConfig{}), ix, "test-bucket")
	return p, repo
}

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func Test_Ingest_PlaintextSource(t *testing.T) {
	idx := vectorindex.NewMemory()
	p, _ := newTestProcessor(idx)

	// 26 words at window 10 / step 8 cover in three windows.
	count, err := p.Ingest(context.Background(), "notes.txt", model.KindNotes,
		time.Now(), []byte(wordText(26)))
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Equal(t, 3, idx.Count("notes.txt"))
}

func Test_Ingest_EmptyFileIsExtractionError(t *testing.T) {
	p, _ := newTestProcessor(vectorindex.NewMemory())

	_, err := p.Ingest(context.Background(), "empty.md", model.KindMarkdown, time.Now(), nil)
	var xerr *errs.ExtractionError
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, "empty.md", xerr.Source)
}

func Test_Ingest_WhitespaceOnlyIsExtractionError(t *testing.T) {
	p, _ := newTestProcessor(vectorindex.NewMemory())

	_, err := p.Ingest(context.Background(), "blank.txt", model.KindNotes,
		time.Now(), []byte("   \n\t  "))
	var xerr *errs.ExtractionError
	require.ErrorAs(t, err, &xerr)
}

func Test_Process_RecordsOutcomeInCatalog(t *testing.T) {
	idx := vectorindex.NewMemory()
	p, repo := newTestProcessor(idx)
	p.fetch = func(ctx context.Context, bucket, source string) ([]byte, error) {
		return []byte(wordText(26)), nil
	}

	task := kafka.IngestTask{Source: "notes.txt", Kind: model.KindNotes, ModTime: time.Now().Unix()}
	require.NoError(t, p.Process(context.Background(), task))
	require.Equal(t, 3, repo.indexed["notes.txt"])
	require.False(t, repo.failed["notes.txt"])
}

func Test_Process_FetchFailureMarksFailed(t *testing.T) {
	p, repo := newTestProcessor(vectorindex.NewMemory())
	p.fetch = func(ctx context.Context, bucket, source string) ([]byte, error) {
		return nil, fmt.Errorf("object not found")
	}

	task := kafka.IngestTask{Source: "gone.txt", Kind: model.KindNotes, ModTime: time.Now().Unix()}
	err := p.Process(context.Background(), task)
	require.Error(t, err)
	require.True(t, repo.failed["gone.txt"])
	require.NotContains(t, repo.indexed, "gone.txt")
}

func Test_Process_ExtractionFailureMarksFailed(t *testing.T) {
	p, repo := newTestProcessor(vectorindex.NewMemory())
	p.fetch = func(ctx context.Context, bucket, source string) ([]byte, error) {
		return nil, nil
	}

	task := kafka.IngestTask{Source: "empty.md", Kind: model.KindMarkdown, ModTime: time.Now().Unix()}
	err := p.Process(context.Background(), task)
	var xerr *errs.ExtractionError
	require.ErrorAs(t, err, &xerr)
	require.True(t, repo.failed["empty.md"])
}

func Test_Ingest_ReplacesPreviousVersion(t *testing.T) {
	idx := vectorindex.NewMemory()
	p, _ := newTestProcessor(idx)
	ctx := context.Background()

	count, err := p.Ingest(ctx, "doc.md", model.KindMarkdown, time.Now(), []byte(wordText(36)))
	require.NoError(t, err)
	require.Equal(t, 5, count)

	count, err = p.Ingest(ctx, "doc.md", model.KindMarkdown, time.Now(), []byte(wordText(22)))
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Equal(t, 3, idx.Count("doc.md"))
}
