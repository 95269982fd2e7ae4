package pdf

import "sync"

// SourceMeta は結合対象となった単票レポートのメタデータです。
type SourceMeta struct {
	PK       string `json:"pk"`
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
	Size     int64  `json:"size"`
}

// Result はエクスポート処理の成果を表します。
type Result struct {
	ExportID        string       `json:"exportId"`
	ModelLabel      string       `json:"modelLabel"`
	OutputPath      string       `json:"outputPath"`
	OutputFilename  string       `json:"outputFilename"`
	OutputSize      int64        `json:"outputSize"`
	TotalPages      int          `json:"totalPages"`
	Passphrase      string       `json:"-"`
	PhraseGenerated bool         `json:"-"`
	Sources         []SourceMeta `json:"sources"`

	jobDir      string
	cleanupOnce sync.Once
	cleanupErr  error
}

// Cleanup は作業ディレクトリを削除します。
func (r *Result) Cleanup() error {
	if r == nil {
		return nil
	}
	r.cleanupOnce.Do(func() {
		r.cleanupErr = removeDir(r.jobDir)
	})
	return r.cleanupErr
}
