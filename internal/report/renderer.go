package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/yourusername/trial-reports/internal/logging"
	"github.com/yourusername/trial-reports/internal/metrics"
)

// Renderer はレポート1件をメモリ上のPDFバッファに変換します。
type Renderer struct {
	institution string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRenderer は Renderer を作成します。
// institution はヘッダーに印字する施設名です（空なら省略）。
func NewRenderer(institution string) *Renderer {
	return &Renderer{
		institution: institution,
		logger:      logging.NewLogger("report"),
		now:         time.Now,
	}
}

// Render はレポートを組版し、完成した1つのPDFをバッファとして返します。
func (r *Renderer) Render(rep Report) (*bytes.Buffer, error) {
	if rep == nil {
		return nil, fmt.Errorf("report is nil")
	}

	start := r.now()
	page := rep.Page()
	doc := fpdf.New(page.Orientation, page.Unit, page.Size, "")
	doc.SetMargins(page.LeftMargin, page.TopMargin, page.RightMargin)
	doc.SetAutoPageBreak(true, page.BottomMargin)

	NumberPages(doc, r.institution, start)

	doc.AddPage()
	if err := rep.Compose(doc); err != nil {
		return nil, fmt.Errorf("レポートの組版に失敗しました: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := doc.Output(buf); err != nil {
		return nil, fmt.Errorf("PDFバッファの生成に失敗しました: %w", err)
	}

	metrics.ReportsRendered.Inc()
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	r.logger.Debug().
		Str("filename", rep.Filename()).
		Int("pages", doc.PageCount()).
		Int("bytes", buf.Len()).
		Msg("report rendered")

	return buf, nil
}
