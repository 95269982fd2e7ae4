package report

import "github.com/go-pdf/fpdf"

// 原票の体裁に合わせた最小限のフォントセットです。

func setTitleFont(doc *fpdf.Fpdf) {
	doc.SetFont("Helvetica", "B", 14)
}

func setLabelFont(doc *fpdf.Fpdf) {
	doc.SetFont("Helvetica", "", 7)
}

func setDataFont(doc *fpdf.Fpdf) {
	doc.SetFont("Helvetica", "", 10)
}

func setDataFontSmall(doc *fpdf.Fpdf) {
	doc.SetFont("Helvetica", "", 8)
}
