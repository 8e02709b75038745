package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chanmyae99/sopqa/internal/domain"
)

type mockBlobs struct {
	files    map[string][]byte
	names    []string
	uploaded []string
}

func (m *mockBlobs) List(_ context.Context) ([]string, error) { return m.names, nil }

func (m *mockBlobs) Download(_ context.Context, name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("no blob %s", name)
	}
	return data, nil
}

func (m *mockBlobs) UploadImage(_ context.Context, sourceName string, page int, fileName string, _ []byte) (string, error) {
	path := fmt.Sprintf("images/%s/page_%d/%s", sourceName, page, fileName)
	m.uploaded = append(m.uploaded, path)
	return path, nil
}

type mockReader struct {
	pages  map[string][]domain.Page
	images map[string][]domain.ExtractedImage
}

func (m *mockReader) Supported(name string) bool {
	ext := strings.ToLower(name[strings.LastIndex(name, "."):])
	return ext == ".pdf" || ext == ".docx" || ext == ".xlsx"
}

func (m *mockReader) Read(name string, _ []byte) ([]domain.Page, error) {
	pages, ok := m.pages[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrUnsupportedFormat)
	}
	return pages, nil
}

func (m *mockReader) ExtractImages(_ []byte, sourceName string) ([]domain.ExtractedImage, error) {
	return m.images[sourceName], nil
}

type mockEmbedder struct {
	calls []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls = append(m.calls, text)
	return domain.EmbeddingResult{Embedding: []float32{0.5}, TotalTokens: 3}, nil
}

type mockCaptioner struct{}

func (m *mockCaptioner) Caption(_ context.Context, _ []byte) (string, error) {
	return "a diagram", nil
}

type mockIndexer struct {
	batches    [][]domain.IndexRecord
	upsertErr  error
	ensureErr  error
	ensured    bool
	failOnCall int // 1-based; 0 means never fail
}

func (m *mockIndexer) EnsureIndex(_ context.Context) error {
	m.ensured = true
	return m.ensureErr
}

func (m *mockIndexer) UpsertBatch(_ context.Context, records []domain.IndexRecord) error {
	m.batches = append(m.batches, records)
	if m.failOnCall > 0 && len(m.batches) == m.failOnCall {
		return m.upsertErr
	}
	if m.failOnCall == 0 && m.upsertErr != nil {
		return m.upsertErr
	}
	return nil
}

func (m *mockIndexer) allRecords() []domain.IndexRecord {
	var all []domain.IndexRecord
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}

func testService(blobs *mockBlobs, reader *mockReader, idx *mockIndexer) *Service {
	return New(blobs, reader, &mockEmbedder{}, &mockCaptioner{}, idx, Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		BatchSize:    100,
	})
}

func TestRun_SkipsUnsupported(t *testing.T) {
	blobs := &mockBlobs{
		names: []string{"notes.txt", "sop.pdf"},
		files: map[string][]byte{"sop.pdf": []byte("pdf")},
	}
	reader := &mockReader{
		pages: map[string][]domain.Page{
			"sop.pdf": {{Text: "wear gloves", Position: domain.PagePosition(1)}},
		},
	}
	idx := &mockIndexer{}

	report, err := testService(blobs, reader, idx).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", report.Skipped)
	}
	if report.Files != 1 {
		t.Errorf("files = %d, want 1 (run continues past unsupported blobs)", report.Files)
	}
	if !idx.ensured {
		t.Error("EnsureIndex was not called")
	}
}

func TestRun_PDFWithImages(t *testing.T) {
	blobs := &mockBlobs{
		names: []string{"lifting.pdf"},
		files: map[string][]byte{"lifting.pdf": []byte("pdf")},
	}
	reader := &mockReader{
		pages: map[string][]domain.Page{
			"lifting.pdf": {
				{Text: strings.Repeat("a", 950), Position: domain.PagePosition(1)},
				{Text: "short page", Position: domain.PagePosition(2)},
			},
		},
		images: map[string][]domain.ExtractedImage{
			"lifting.pdf": {
				{FileName: "lifting.pdf_p2_0.png", Page: 2, Data: []byte{1}},
			},
		},
	}
	idx := &mockIndexer{}

	report, err := testService(blobs, reader, idx).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 950 chars at size 500 overlap 50 is exactly 2 chunks, plus 1 for page 2.
	if report.TextRecords != 3 {
		t.Errorf("text records = %d, want 3", report.TextRecords)
	}
	if report.ImageRecords != 1 {
		t.Errorf("image records = %d, want 1", report.ImageRecords)
	}
	if len(blobs.uploaded) != 1 || blobs.uploaded[0] != "images/lifting.pdf/page_2/lifting.pdf_p2_0.png" {
		t.Errorf("uploaded = %v", blobs.uploaded)
	}

	all := idx.allRecords()
	keys := make(map[string]bool, len(all))
	for _, rec := range all {
		if keys[rec.Key] {
			t.Errorf("duplicate key %s", rec.Key)
		}
		keys[rec.Key] = true
	}

	// Page chunk indices reset per page.
	wantKey := domain.ChunkKey("lifting.pdf", domain.PagePosition(2), 0)
	if !keys[wantKey] {
		t.Error("missing chunk 0 key for page 2")
	}
}

func TestRun_DOCXMonotonicChunkIndex(t *testing.T) {
	blobs := &mockBlobs{
		names: []string{"manual.docx"},
		files: map[string][]byte{"manual.docx": []byte("docx")},
	}
	reader := &mockReader{
		pages: map[string][]domain.Page{
			"manual.docx": {
				{Text: "first paragraph", Position: domain.SectionPosition("Introduction", 1)},
				{Text: "second paragraph", Position: domain.SectionPosition("Introduction", 2)},
				{Text: "third paragraph", Position: domain.SectionPosition("Scope", 1)},
			},
		},
	}
	idx := &mockIndexer{}

	if _, err := testService(blobs, reader, idx).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	all := idx.allRecords()
	if len(all) != 3 {
		t.Fatalf("records = %d, want 3", len(all))
	}

	// Keys ignore the section, so only a document-wide index keeps them apart.
	for i, rec := range all {
		want := domain.ChunkKey("manual.docx", rec.Position, i)
		if rec.Key != want {
			t.Errorf("record %d key = %s, want chunk index %d", i, rec.Key, i)
		}
	}
}

func TestRun_XLSXRowsAreTables(t *testing.T) {
	blobs := &mockBlobs{
		names: []string{"limits.xlsx"},
		files: map[string][]byte{"limits.xlsx": []byte("xlsx")},
	}
	reader := &mockReader{
		pages: map[string][]domain.Page{
			"limits.xlsx": {
				{Text: "Sheet: Limits | Row 1 | load: 2t", Position: domain.SheetPosition("Limits", 1)},
			},
		},
	}
	idx := &mockIndexer{}

	if _, err := testService(blobs, reader, idx).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	all := idx.allRecords()
	if len(all) != 1 || all[0].AssetType != domain.AssetTable {
		t.Errorf("records = %+v, want one table record", all)
	}
}

func TestRun_BatchSizeFlush(t *testing.T) {
	pages := make([]domain.Page, 5)
	for i := range pages {
		pages[i] = domain.Page{
			Text:     fmt.Sprintf("paragraph %d", i),
			Position: domain.SectionPosition("Scope", i+1),
		}
	}

	blobs := &mockBlobs{
		names: []string{"manual.docx"},
		files: map[string][]byte{"manual.docx": []byte("docx")},
	}
	reader := &mockReader{pages: map[string][]domain.Page{"manual.docx": pages}}
	idx := &mockIndexer{}

	svc := New(blobs, reader, &mockEmbedder{}, &mockCaptioner{}, idx, Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		BatchSize:    2,
	})

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Batches != 3 {
		t.Errorf("batches = %d, want 3 (2+2+1)", report.Batches)
	}
	if len(idx.batches) != 3 || len(idx.batches[0]) != 2 || len(idx.batches[2]) != 1 {
		t.Errorf("batch sizes wrong: %d batches", len(idx.batches))
	}
}

func TestRun_BatchFailureAborts(t *testing.T) {
	pages := make([]domain.Page, 4)
	for i := range pages {
		pages[i] = domain.Page{
			Text:     fmt.Sprintf("paragraph %d", i),
			Position: domain.SectionPosition("Scope", i+1),
		}
	}

	blobs := &mockBlobs{
		names: []string{"manual.docx"},
		files: map[string][]byte{"manual.docx": []byte("docx")},
	}
	reader := &mockReader{pages: map[string][]domain.Page{"manual.docx": pages}}
	idx := &mockIndexer{upsertErr: errors.New("write refused"), failOnCall: 1}

	svc := New(blobs, reader, &mockEmbedder{}, &mockCaptioner{}, idx, Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		BatchSize:    2,
	})

	_, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrIndexUpload) {
		t.Fatalf("Run() error = %v, want ErrIndexUpload", err)
	}
	if len(idx.batches) != 1 {
		t.Errorf("batches attempted = %d, want 1 (run aborts on first failure)", len(idx.batches))
	}
}

func TestRun_EmbedsCaptionNotPixels(t *testing.T) {
	blobs := &mockBlobs{
		names: []string{"lifting.pdf"},
		files: map[string][]byte{"lifting.pdf": []byte("pdf")},
	}
	reader := &mockReader{
		pages: map[string][]domain.Page{"lifting.pdf": {}},
		images: map[string][]domain.ExtractedImage{
			"lifting.pdf": {{FileName: "lifting.pdf_p1_0.png", Page: 1, Data: []byte{1}}},
		},
	}
	idx := &mockIndexer{}
	embed := &mockEmbedder{}

	svc := New(blobs, reader, embed, &mockCaptioner{}, idx, Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		BatchSize:    100,
	})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(embed.calls) != 1 || embed.calls[0] != "a diagram" {
		t.Errorf("embed calls = %v, want the caption text", embed.calls)
	}

	all := idx.allRecords()
	if len(all) != 1 {
		t.Fatalf("records = %d, want 1", len(all))
	}
	rec := all[0]
	if rec.Key != domain.ImageKey("lifting.pdf", "lifting.pdf_p1_0.png") {
		t.Errorf("key = %s, want image identity key", rec.Key)
	}
	if rec.ImageCaption != "a diagram" || len(rec.ImageVector) == 0 {
		t.Error("image record must carry caption and vector")
	}
	if rec.Position.Page != 1 {
		t.Errorf("page = %d, want 1", rec.Position.Page)
	}
}
