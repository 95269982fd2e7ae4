package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/yourusername/trial-reports/internal/exports"
	"github.com/yourusername/trial-reports/internal/metrics"
	"github.com/yourusername/trial-reports/internal/passphrase"
	"github.com/yourusername/trial-reports/internal/records"
	"github.com/yourusername/trial-reports/internal/report"
)

const (
	mergedFilename  = "merged.pdf"
	securedFilename = "secured.pdf"
)

// ArchiveRequest は1回のダウンロード要求を表します。
// PKs の集合はレンダリング開始前に確定していなければなりません。
type ArchiveRequest struct {
	ModelLabel string
	PKs        []string
	Phrase     string // 空の場合はパスフレーズを生成する
}

// BuildArchive は指定されたレコード群を順にPDFへ変換し、1つのドキュメントに
// 結合したうえでAES-256で暗号化します。処理は同期的で、並行レンダリングは
// 行いません（順序 = 入力順）。
func (s *Service) BuildArchive(ctx context.Context, req ArchiveRequest) (_ *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(req.PKs) == 0 {
		return nil, newError("INVALID_INPUT", "対象レコードが指定されていません。", nil)
	}
	if len(req.PKs) > s.cfg.MaxRecordsPerExport {
		return nil, newError("LIMIT_EXCEEDED",
			fmt.Sprintf("一度にエクスポートできるレコード数の上限（%d件）を超えています。", s.cfg.MaxRecordsPerExport), nil)
	}

	desc, ok := s.registry.Lookup(req.ModelLabel)
	if !ok {
		return nil, newError("INVALID_INPUT", fmt.Sprintf("未対応のモデルです: %s", req.ModelLabel), nil)
	}

	ws, err := s.createWorkspace()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = removeDir(ws.dir)
		}
	}()

	var (
		inputs      []string
		sources     []SourceMeta
		totalPages  int
		firstReport report.Report
	)
	for i, pk := range req.PKs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, lookupErr := s.store.Get(ctx, req.ModelLabel, pk)
		if lookupErr != nil {
			if errors.Is(lookupErr, records.ErrNotFound) {
				return nil, newError("NOT_FOUND", fmt.Sprintf("レコード %s が見つかりませんでした。", pk), lookupErr)
			}
			return nil, fmt.Errorf("レコード %s の検索に失敗しました: %w", pk, lookupErr)
		}

		rep, factoryErr := desc.New(rec)
		if factoryErr != nil {
			return nil, fmt.Errorf("レポートの作成に失敗しました: %w", factoryErr)
		}

		buf, renderErr := s.renderer.Render(rep)
		if renderErr != nil {
			return nil, renderErr
		}
		if !mimetype.Detect(buf.Bytes()).Is("application/pdf") {
			return nil, newError("UNSUPPORTED_PDF",
				fmt.Sprintf("レコード %s のレポートがPDFとして検出されませんでした。", pk), nil)
		}

		partPath := filepath.Join(ws.inDir, fmt.Sprintf("part-%03d.pdf", i+1))
		if writeErr := os.WriteFile(partPath, buf.Bytes(), 0o640); writeErr != nil {
			return nil, fmt.Errorf("レポートの保存に失敗しました: %w", writeErr)
		}

		pages, countErr := pdfapi.PageCountFile(partPath)
		if countErr != nil {
			return nil, newError("UNSUPPORTED_PDF",
				fmt.Sprintf("レコード %s のページ数を確認できませんでした。", pk), countErr)
		}

		sources = append(sources, SourceMeta{
			PK:       pk,
			Filename: rep.Filename(),
			Pages:    pages,
			Size:     int64(buf.Len()),
		})
		totalPages += pages
		inputs = append(inputs, partPath)
		if i == 0 {
			firstReport = rep
		}
	}

	mergedPath := filepath.Join(ws.outDir, mergedFilename)
	if mergeErr := pdfapi.MergeCreateFile(inputs, mergedPath, false, nil); mergeErr != nil {
		return nil, newError("UNSUPPORTED_PDF", "PDFの結合に失敗しました。", mergeErr)
	}

	mergedPages, countErr := pdfapi.PageCountFile(mergedPath)
	if countErr != nil {
		return nil, fmt.Errorf("結合結果のページ数確認に失敗しました: %w", countErr)
	}
	if mergedPages != totalPages {
		return nil, fmt.Errorf("結合後のページ数が一致しません: got %d, want %d", mergedPages, totalPages)
	}

	phrase := strings.TrimSpace(req.Phrase)
	generated := false
	if phrase == "" {
		phrase, err = passphrase.Generate(passphrase.DefaultWords)
		if err != nil {
			return nil, err
		}
		generated = true
	}

	securedPath := filepath.Join(ws.outDir, securedFilename)
	conf := model.NewAESConfiguration(phrase, phrase, 256)
	if encErr := pdfapi.EncryptFile(mergedPath, securedPath, conf); encErr != nil {
		return nil, newError("ENCRYPT_FAILED", "PDFの暗号化に失敗しました。", encErr)
	}

	filename := desc.GenericFilename
	if len(req.PKs) == 1 {
		filename = firstReport.Filename()
	}
	if filename == "" {
		return nil, newError("MISSING_FILENAME",
			"出力ファイル名を決定できませんでした。レポート定義を確認してください。", nil)
	}

	outInfo, statErr := os.Stat(securedPath)
	if statErr != nil {
		return nil, fmt.Errorf("出力ファイルの確認に失敗しました: %w", statErr)
	}

	if s.recorder != nil {
		receipt := &exports.Receipt{
			ExportID:   ws.exportID,
			ModelLabel: req.ModelLabel,
			Filename:   filename,
			Records:    len(req.PKs),
			Pages:      totalPages,
			Encrypted:  true,
		}
		// 受領記録の失敗は配信を妨げない
		if recErr := s.recorder.Put(ctx, receipt); recErr != nil {
			s.logger.Warn().Err(recErr).Str("export_id", ws.exportID).Msg("failed to record export receipt")
		}
	}

	expireMinutes := s.cfg.ExportExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = defaultCleanupMin
	}
	time.AfterFunc(time.Duration(expireMinutes)*time.Minute, func() {
		_ = removeDir(ws.dir)
	})

	metrics.ExportsTotal.Inc()
	s.logger.Info().
		Str("export_id", ws.exportID).
		Str("model", req.ModelLabel).
		Int("records", len(req.PKs)).
		Int("pages", totalPages).
		Bool("phrase_generated", generated).
		Msg("report export built")

	return &Result{
		ExportID:        ws.exportID,
		ModelLabel:      req.ModelLabel,
		OutputPath:      securedPath,
		OutputFilename:  filename,
		OutputSize:      outInfo.Size(),
		TotalPages:      totalPages,
		Passphrase:      phrase,
		PhraseGenerated: generated,
		Sources:         sources,
		jobDir:          ws.dir,
	}, nil
}
