package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/yourusername/trial-reports/internal/records"
)

// RegisterDeathReport は死亡報告のレポート定義をレジストリに登録します。
func RegisterDeathReport(reg *Registry) error {
	return reg.Register(records.DeathReportLabel, Descriptor{
		VerboseName:     "Death Report",
		GenericFilename: "death_reports.pdf",
		New: func(rec records.Record) (Report, error) {
			deathReport, ok := rec.(*records.DeathReport)
			if !ok {
				return nil, fmt.Errorf("unexpected record type %T for %s", rec, records.DeathReportLabel)
			}
			return NewDeathPdfReport(deathReport), nil
		},
	})
}

// DeathPdfReport は死亡報告1件のPDFレイアウトです。
type DeathPdfReport struct {
	rec      *records.DeathReport
	filename string
}

// NewDeathPdfReport は DeathPdfReport を作成します。
// ファイル名は被験者識別子から決定し、識別子が無い場合はUUIDにフォールバックします。
func NewDeathPdfReport(rec *records.DeathReport) *DeathPdfReport {
	filename := uuid.NewString() + ".pdf"
	if slug := slugify(rec.SubjectID); slug != "" {
		filename = fmt.Sprintf("death_report_%s.pdf", slug)
	}
	return &DeathPdfReport{
		rec:      rec,
		filename: filename,
	}
}

// Filename はこのレポート固有のファイル名を返します。
func (p *DeathPdfReport) Filename() string { return p.filename }

// Page はページ設定を返します。
func (p *DeathPdfReport) Page() PageConfig { return DefaultPage() }

// Compose は死亡報告の本文を組版します。
func (p *DeathPdfReport) Compose(doc *fpdf.Fpdf) error {
	setTitleFont(doc)
	doc.CellFormat(0, 1.0, "Death Report", "", 1, "C", false, 0, "")
	doc.Ln(0.3)

	rows := []struct {
		label string
		value string
	}{
		{"Subject", p.rec.SubjectID},
		{"Report date", p.rec.ReportDatetime.Format("2006-01-02 15:04")},
		{"Date of death", p.rec.DeathDatetime.Format("2006-01-02")},
		{"Cause of death", p.rec.CauseOfDeath},
	}
	for _, row := range rows {
		setLabelFont(doc)
		doc.CellFormat(4.0, 0.6, row.label, "", 0, "L", false, 0, "")
		setDataFont(doc)
		doc.CellFormat(0, 0.6, row.value, "", 1, "L", false, 0, "")
	}

	doc.Ln(0.5)
	setLabelFont(doc)
	doc.CellFormat(0, 0.6, "Narrative", "", 1, "L", false, 0, "")
	setDataFontSmall(doc)
	doc.MultiCell(0, 0.5, p.rec.Narrative, "", "L", false)

	return doc.Error()
}

// slugify はファイル名として安全なスラッグに変換します。
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
