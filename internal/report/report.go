// Package report は単票PDFレポートの生成とページ装飾を提供します。
package report

import "github.com/go-pdf/fpdf"

// PageConfig はレポートのページ設定です。
type PageConfig struct {
	Orientation  string
	Unit         string
	Size         string
	LeftMargin   float64
	TopMargin    float64
	RightMargin  float64
	BottomMargin float64
}

// DefaultPage は既定のページ設定（A4・左右0.5cm・上下1.5cm）を返します。
func DefaultPage() PageConfig {
	return PageConfig{
		Orientation:  "P",
		Unit:         "cm",
		Size:         "A4",
		LeftMargin:   0.5,
		TopMargin:    1.5,
		RightMargin:  0.5,
		BottomMargin: 1.5,
	}
}

// Report はレコード1件分のPDFレイアウトが実装します。
type Report interface {
	// Filename はこのレポート固有のダウンロードファイル名を返します。
	Filename() string
	// Page はページ設定を返します。
	Page() PageConfig
	// Compose はドキュメントに本文を組版します。
	Compose(doc *fpdf.Fpdf) error
}
