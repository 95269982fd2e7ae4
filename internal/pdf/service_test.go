package pdf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/yourusername/trial-reports/internal/config"
	"github.com/yourusername/trial-reports/internal/exports"
	"github.com/yourusername/trial-reports/internal/records"
	"github.com/yourusername/trial-reports/internal/report"
)

const fakeLabel = "test.fakerecord"

type fakeRecord struct {
	id      string
	subject string
	pages   int
}

func (r *fakeRecord) PK() string                { return r.id }
func (r *fakeRecord) SubjectIdentifier() string { return r.subject }
func (r *fakeRecord) ModelLabel() string        { return fakeLabel }

type fakeStore struct {
	records map[string]records.Record
}

func (s *fakeStore) Get(ctx context.Context, label, pk string) (records.Record, error) {
	rec, ok := s.records[pk]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", pk, records.ErrNotFound)
	}
	return rec, nil
}

type fakeReport struct {
	filename string
	pages    int
}

func (r *fakeReport) Filename() string        { return r.filename }
func (r *fakeReport) Page() report.PageConfig { return report.DefaultPage() }

func (r *fakeReport) Compose(doc *fpdf.Fpdf) error {
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 0.6, "page 1", "", 1, "L", false, 0, "")
	for i := 2; i <= r.pages; i++ {
		doc.AddPage()
		doc.CellFormat(0, 0.6, fmt.Sprintf("page %d", i), "", 1, "L", false, 0, "")
	}
	return doc.Error()
}

type captureRecorder struct {
	receipt *exports.Receipt
}

func (r *captureRecorder) Put(ctx context.Context, receipt *exports.Receipt) error {
	r.receipt = receipt
	return nil
}

func newTestService(t *testing.T, recs []*fakeRecord, recorder ExportRecorder) *Service {
	t.Helper()

	store := &fakeStore{records: make(map[string]records.Record)}
	for _, rec := range recs {
		store.records[rec.id] = rec
	}

	registry := report.NewRegistry()
	err := registry.Register(fakeLabel, report.Descriptor{
		VerboseName:     "Fake Record",
		GenericFilename: "fake_reports.pdf",
		New: func(rec records.Record) (report.Report, error) {
			fake, ok := rec.(*fakeRecord)
			if !ok {
				return nil, fmt.Errorf("unexpected record type %T", rec)
			}
			return &fakeReport{
				filename: fmt.Sprintf("fake_report_%s.pdf", fake.id),
				pages:    fake.pages,
			}, nil
		},
	})
	if err != nil {
		t.Fatalf("failed to register descriptor: %v", err)
	}

	cfg := &config.Config{
		WorkDir:             t.TempDir(),
		MaxRecordsPerExport: 100,
		ExportExpireMinutes: 1,
		Institution:         "Test Clinical Trials Unit",
	}
	return NewService(cfg, store, registry, report.NewRenderer(cfg.Institution), recorder)
}

func decryptedPageCount(t *testing.T, path, phrase string) int {
	t.Helper()
	decPath := filepath.Join(t.TempDir(), "decrypted.pdf")
	conf := model.NewAESConfiguration(phrase, phrase, 256)
	if err := pdfapi.DecryptFile(path, decPath, conf); err != nil {
		t.Fatalf("failed to decrypt with phrase %q: %v", phrase, err)
	}
	pages, err := pdfapi.PageCountFile(decPath)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	return pages
}

func TestBuildArchiveSingleRecord(t *testing.T) {
	svc := newTestService(t, []*fakeRecord{{id: "a", subject: "S-1", pages: 2}}, nil)

	result, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"a"},
	})
	if err != nil {
		t.Fatalf("BuildArchive returned error: %v", err)
	}
	defer result.Cleanup()

	if result.OutputFilename != "fake_report_a.pdf" {
		t.Fatalf("unexpected filename: %s", result.OutputFilename)
	}
	if result.TotalPages != 2 {
		t.Fatalf("unexpected total pages: %d", result.TotalPages)
	}
	if !result.PhraseGenerated || result.Passphrase == "" {
		t.Fatalf("expected generated passphrase, got %q", result.Passphrase)
	}
	if got := decryptedPageCount(t, result.OutputPath, result.Passphrase); got != 2 {
		t.Fatalf("decrypted page count = %d, want 2", got)
	}
}

func TestBuildArchiveMergePageCountIsSum(t *testing.T) {
	svc := newTestService(t, []*fakeRecord{
		{id: "a", subject: "S-1", pages: 2},
		{id: "b", subject: "S-2", pages: 3},
	}, nil)

	result, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("BuildArchive returned error: %v", err)
	}
	defer result.Cleanup()

	if result.OutputFilename != "fake_reports.pdf" {
		t.Fatalf("expected generic filename, got %s", result.OutputFilename)
	}
	if result.TotalPages != 5 {
		t.Fatalf("unexpected total pages: %d", result.TotalPages)
	}
	if len(result.Sources) != 2 || result.Sources[0].Pages != 2 || result.Sources[1].Pages != 3 {
		t.Fatalf("unexpected sources: %#v", result.Sources)
	}
	if got := decryptedPageCount(t, result.OutputPath, result.Passphrase); got != 5 {
		t.Fatalf("decrypted page count = %d, want 5", got)
	}
}

func TestBuildArchiveSuppliedPhrase(t *testing.T) {
	svc := newTestService(t, []*fakeRecord{{id: "a", subject: "S-1", pages: 1}}, nil)

	result, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"a"},
		Phrase:     "correct-horse-42",
	})
	if err != nil {
		t.Fatalf("BuildArchive returned error: %v", err)
	}
	defer result.Cleanup()

	if result.PhraseGenerated {
		t.Fatal("expected supplied phrase to be used verbatim")
	}
	if result.Passphrase != "correct-horse-42" {
		t.Fatalf("unexpected passphrase: %s", result.Passphrase)
	}

	// 誤ったパスフレーズでは復号できない
	wrongPath := filepath.Join(t.TempDir(), "wrong.pdf")
	wrongConf := model.NewAESConfiguration("wrong-phrase-00", "wrong-phrase-00", 256)
	if err := pdfapi.DecryptFile(result.OutputPath, wrongPath, wrongConf); err == nil {
		t.Fatal("expected decryption to fail with wrong phrase")
	}

	if got := decryptedPageCount(t, result.OutputPath, "correct-horse-42"); got != 1 {
		t.Fatalf("decrypted page count = %d, want 1", got)
	}
}

func TestBuildArchiveRecordNotFound(t *testing.T) {
	svc := newTestService(t, []*fakeRecord{{id: "a", subject: "S-1", pages: 1}}, nil)

	_, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"missing"},
	})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND error, got %v", err)
	}
}

func TestBuildArchiveNoPKs(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.BuildArchive(context.Background(), ArchiveRequest{ModelLabel: fakeLabel})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT error, got %v", err)
	}
}

func TestBuildArchiveUnknownModel(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: "test.unknown",
		PKs:        []string{"a"},
	})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT error, got %v", err)
	}
}

func TestBuildArchiveLimitExceeded(t *testing.T) {
	svc := newTestService(t, []*fakeRecord{{id: "a", subject: "S-1", pages: 1}}, nil)
	svc.cfg.MaxRecordsPerExport = 1

	_, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"a", "a"},
	})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "LIMIT_EXCEEDED" {
		t.Fatalf("expected LIMIT_EXCEEDED error, got %v", err)
	}
}

func TestBuildArchiveMissingFilename(t *testing.T) {
	svc := newTestService(t, []*fakeRecord{
		{id: "a", subject: "S-1", pages: 1},
		{id: "b", subject: "S-2", pages: 1},
	}, nil)

	// 複数レコード時は GenericFilename が必須
	svc.registry = report.NewRegistry()
	err := svc.registry.Register(fakeLabel, report.Descriptor{
		New: func(rec records.Record) (report.Report, error) {
			fake := rec.(*fakeRecord)
			return &fakeReport{filename: fake.id + ".pdf", pages: fake.pages}, nil
		},
	})
	if err != nil {
		t.Fatalf("failed to register descriptor: %v", err)
	}

	_, buildErr := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"a", "b"},
	})
	var apiErr *Error
	if !errors.As(buildErr, &apiErr) || apiErr.Code != "MISSING_FILENAME" {
		t.Fatalf("expected MISSING_FILENAME error, got %v", buildErr)
	}
}

func TestBuildArchiveRecordsReceipt(t *testing.T) {
	recorder := &captureRecorder{}
	svc := newTestService(t, []*fakeRecord{
		{id: "a", subject: "S-1", pages: 1},
		{id: "b", subject: "S-2", pages: 2},
	}, recorder)

	result, err := svc.BuildArchive(context.Background(), ArchiveRequest{
		ModelLabel: fakeLabel,
		PKs:        []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("BuildArchive returned error: %v", err)
	}
	defer result.Cleanup()

	receipt := recorder.receipt
	if receipt == nil {
		t.Fatal("expected export receipt to be recorded")
	}
	if receipt.ExportID != result.ExportID {
		t.Fatalf("receipt export id = %s, want %s", receipt.ExportID, result.ExportID)
	}
	if receipt.Records != 2 || receipt.Pages != 3 || !receipt.Encrypted {
		t.Fatalf("unexpected receipt: %#v", receipt)
	}
}
