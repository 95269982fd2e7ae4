package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/trial-reports/internal/config"
	"github.com/yourusername/trial-reports/internal/exports"
	"github.com/yourusername/trial-reports/internal/logging"
	"github.com/yourusername/trial-reports/internal/records"
	"github.com/yourusername/trial-reports/internal/report"
)

const defaultCleanupMin = 10

// RecordStore はモデルラベルと主キーからレコードを解決します。
type RecordStore interface {
	Get(ctx context.Context, label, pk string) (records.Record, error)
}

// ExportRecorder は配信済みエクスポートの受領記録を保存します。
type ExportRecorder interface {
	Put(ctx context.Context, receipt *exports.Receipt) error
}

// Service はレポートの結合・暗号化パイプラインを実行します。
type Service struct {
	cfg      *config.Config
	store    RecordStore
	registry *report.Registry
	renderer *report.Renderer
	recorder ExportRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService は Service を作成します。recorder は nil でも構いません。
func NewService(cfg *config.Config, store RecordStore, registry *report.Registry, renderer *report.Renderer, recorder ExportRecorder) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		registry: registry,
		renderer: renderer,
		recorder: recorder,
		logger:   logging.NewLogger("pdf"),
		now:      time.Now,
	}
}

type workspace struct {
	exportID string
	dir      string
	inDir    string
	outDir   string
}

func (s *Service) createWorkspace() (workspace, error) {
	base := s.cfg.WorkDir
	if base == "" {
		base = os.TempDir()
	}

	exportID := uuid.NewString()
	dir := filepath.Join(base, "trial-reports", exportID)
	ws := workspace{
		exportID: exportID,
		dir:      dir,
		inDir:    filepath.Join(dir, "in"),
		outDir:   filepath.Join(dir, "out"),
	}

	for _, d := range []string{ws.inDir, ws.outDir} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return workspace{}, fmt.Errorf("作業ディレクトリの作成に失敗しました: %w", err)
		}
	}
	return ws, nil
}

func removeDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
