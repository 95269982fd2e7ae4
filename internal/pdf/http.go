package pdf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/trial-reports/internal/exports"
	"github.com/yourusername/trial-reports/internal/metrics"
)

// SessionKeyModelPKs は中間確認ステップが主キー配列を書き込むセッションキーです。
// ダウンロード処理はこのキーをちょうど1回だけ取り出して消費します。
const SessionKeyModelPKs = "model_pks"

const flashExportFailed = "PDFレポートを作成できませんでした。もう一度お試しください。"

// ArchiveService は結合・暗号化パイプラインを実行できるサービスが実装します。
type ArchiveService interface {
	BuildArchive(ctx context.Context, req ArchiveRequest) (*Result, error)
}

// ReceiptFinder はエクスポートの受領記録を検索します。
type ReceiptFinder interface {
	Get(ctx context.Context, exportID string) (*exports.Receipt, error)
}

// SelectHandler は POST /api/reports/:app/:model/select のハンドラーを返します。
// 中間確認ステップとして、対象レコードの主キー配列をセッションに保存します。
func SelectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PKs []string `json:"pks" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.PKs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "pks を JSON の文字列配列で送信してください。",
			})
			return
		}

		payload, err := json.Marshal(req.PKs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "主キー配列の保存に失敗しました。",
			})
			return
		}

		session := sessions.Default(c)
		session.Set(SessionKeyModelPKs, string(payload))
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "SESSION_SAVE_FAILED",
				"message": "セッションの保存に失敗しました。",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(req.PKs),
			"next":  fmt.Sprintf("/api/reports/%s/%s/print", c.Param("app"), c.Param("model")),
		})
	}
}

// PrintHandlerOptions は PrintHandler の設定です。
type PrintHandlerOptions struct {
	// RedirectURL はセッションに主キーが無い場合のリダイレクト先です（デフォルト "/"）。
	RedirectURL string
}

// PrintHandler は GET|POST /api/reports/:app/:model/print のハンドラーを返します。
// セッションの主キー配列を消費してレポートを結合・暗号化し、添付ファイルとして
// 返します。主キーが無い場合は例外にせず、エラーメッセージ付きでリダイレクトします。
func PrintHandler(svc ArchiveService, opts PrintHandlerOptions) gin.HandlerFunc {
	redirectURL := opts.RedirectURL
	if redirectURL == "" {
		redirectURL = "/"
	}

	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(SessionKeyModelPKs)
		// 取り出しは一度きり。同じ主キー集合での再ダウンロードはできない。
		session.Delete(SessionKeyModelPKs)

		encoded, ok := raw.(string)
		if !ok || encoded == "" {
			session.AddFlash(flashExportFailed)
			_ = session.Save()
			c.Redirect(http.StatusSeeOther, redirectURL)
			return
		}

		var pks []string
		if err := json.Unmarshal([]byte(encoded), &pks); err != nil || len(pks) == 0 {
			session.AddFlash(flashExportFailed)
			_ = session.Save()
			c.Redirect(http.StatusSeeOther, redirectURL)
			return
		}

		req := ArchiveRequest{
			ModelLabel: modelLabel(c),
			PKs:        pks,
			Phrase:     strings.TrimSpace(c.PostForm("phrase")),
		}

		result, err := svc.BuildArchive(c.Request.Context(), req)
		if err != nil {
			// 失敗してもセッションからの取り出しは確定させる
			_ = session.Save()
			respondWithError(c, err)
			return
		}
		defer result.Cleanup()

		session.AddFlash(exportedMessage(result))
		if err := session.Save(); err != nil {
			respondWithError(c, fmt.Errorf("セッションの保存に失敗しました: %w", err))
			return
		}

		if err := streamResult(c, result); err != nil {
			respondWithError(c, err)
		}
	}
}

// MessagesHandler は GET /api/messages のハンドラーを返します。
// セッションに蓄積されたフラッシュメッセージを取り出して返します。
func MessagesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		flashes := session.Flashes()
		_ = session.Save()

		messages := make([]string, 0, len(flashes))
		for _, flash := range flashes {
			if msg, ok := flash.(string); ok {
				messages = append(messages, msg)
			}
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}

// ExportReceiptHandler は GET /api/exports/:id のハンドラーを返します。
func ExportReceiptHandler(finder ReceiptFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		exportID := strings.TrimSpace(c.Param("id"))
		if exportID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "exportId を指定してください。",
			})
			return
		}

		receipt, err := finder.Get(c.Request.Context(), exportID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "受領記録の取得に失敗しました。",
			})
			return
		}
		if receipt == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "EXPORT_NOT_FOUND",
				"message": "指定されたエクスポートは存在しません。",
			})
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}

func modelLabel(c *gin.Context) string {
	return c.Param("app") + "." + c.Param("model")
}

func exportedMessage(result *Result) string {
	return fmt.Sprintf(
		"レポートを保護付きPDFとして出力しました。ブラウザのダウンロードを確認してください。ファイル: %s / パスフレーズ: %s",
		result.OutputFilename, result.Passphrase)
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		status := http.StatusBadRequest
		switch apiErr.Code {
		case "NOT_FOUND":
			status = http.StatusNotFound
		case "LIMIT_EXCEEDED":
			status = http.StatusRequestEntityTooLarge
		case "MISSING_FILENAME", "ENCRYPT_FAILED":
			status = http.StatusInternalServerError
		}
		metrics.ExportFailures.WithLabelValues(apiErr.Code).Inc()
		c.JSON(status, gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
	case errors.Is(err, context.Canceled):
		metrics.ExportFailures.WithLabelValues("REQUEST_CANCELED").Inc()
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		metrics.ExportFailures.WithLabelValues("INTERNAL_ERROR").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}

func streamResult(c *gin.Context, result *Result) error {
	file, err := os.Open(result.OutputPath)
	if err != nil {
		return fmt.Errorf("エクスポート結果の読み込みに失敗しました: %w", err)
	}
	defer file.Close()

	const contentType = "application/pdf"
	encodedName := url.PathEscape(result.OutputFilename)
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", result.OutputFilename, encodedName))
	c.Header("Cache-Control", "no-store")
	c.Header("X-Export-Id", result.ExportID)
	c.DataFromReader(http.StatusOK, result.OutputSize, contentType, file, nil)
	return nil
}
