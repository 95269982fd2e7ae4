package report

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// NumberPages はヘッダーとフッターの装飾を設定します。
// フッターの "Page X of Y" の総ページ数 Y はドキュメント確定時に
// エイリアス置換で解決されます。AddPage より前に呼ぶ必要があります。
func NumberPages(doc *fpdf.Fpdf, institution string, printedAt time.Time) {
	doc.AliasNbPages("")

	doc.SetHeaderFunc(func() {
		if institution == "" {
			return
		}
		doc.SetY(0.5)
		doc.SetFont("Helvetica", "", 6)
		doc.CellFormat(0, 0.4, institution, "", 0, "C", false, 0, "")
	})

	timestamp := printedAt.Format("2006-01-02 15:04")
	doc.SetFooterFunc(func() {
		doc.SetY(-1.0)
		doc.SetFont("Helvetica", "", 6)
		doc.CellFormat(6.0, 0.4, "trial-reports", "", 0, "L", false, 0, "")
		doc.CellFormat(8.0, 0.4, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
		doc.CellFormat(6.0, 0.4, "printed on "+timestamp, "", 0, "R", false, 0, "")
	})
}
