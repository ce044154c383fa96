// Package main provides localization for the editsurface CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Render, play and grade images and videos on an editing surface": "編集サーフェス上で画像と動画を描画・再生・補正",

		// Commands
		"Show the metadata of a video file":         "動画ファイルのメタデータを表示",
		"Play a file on an offscreen surface":       "オフスクリーンのサーフェスでファイルを再生",
		"Render the histogram of a file as PNG":     "ファイルのヒストグラムをPNGとして描画",
		"Generate thumbnails for a folder":          "フォルダーのサムネイルを生成",
		"Export an image or the frames of a video":  "画像または動画のフレームを書き出し",
		"Play a file interactively in the terminal": "ターミナルでファイルを対話的に再生",
		"Write a synthetic MP4 clip for testing":    "テスト用の合成MP4クリップを書き出し",
		"Show version information":                  "バージョン情報を表示",
		"editsurface version %s":                    "editsurface バージョン %s",

		// Global flags
		"YAML configuration file":              "YAML設定ファイル",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Command flags
		"Surface width in pixels":                  "サーフェスの幅（ピクセル）",
		"Surface height in pixels":                 "サーフェスの高さ（ピクセル）",
		"How long to play":                         "再生する時間",
		"Write the last presented frame as PNG":    "最後に表示したフレームをPNGで保存",
		"LUT filter name to apply":                 "適用するLUTフィルター名",
		"Output PNG file path (required)":          "出力PNGファイルパス（必須）",
		"Output directory (required)":              "出力ディレクトリ（必須）",
		"Output file path (required)":              "出力ファイルパス（必須）",
		"Exposure in stops":                        "露出（段）",
		"Render every frame without writing files": "ファイルを書き出さずに全フレームを描画",
		"Write a Markdown summary of the export":   "書き出しのMarkdownサマリーを保存",
		"Clip width in pixels":                     "クリップの幅（ピクセル）",
		"Clip height in pixels":                    "クリップの高さ（ピクセル）",
		"Frames per second":                        "フレームレート",
		"Number of frames":                         "フレーム数",

		// Probe output
		"File: %s":                       "ファイル: %s",
		"Format: %s, codec %s":           "形式: %s, コーデック %s",
		"Size: %dx%d":                    "サイズ: %dx%d",
		"Frames: %d at %.3f fps (%.2fs)": "フレーム数: %d (%.3f fps, %.2f秒)",
		"Fragmented: %t, audio: %t":      "フラグメント: %t, 音声: %t",

		// Runtime messages
		"Interrupted, shutting down...":               "中断されました。シャットダウン中...",
		"Output saved to %s":                          "出力を %s に保存しました",
		"Frames saved to %s":                          "フレームを %s に保存しました",
		"Presented %d frames (%s)":                    "%d フレームを表示しました (%s)",
		"Histogram with %d bars saved to %s":          "%[1]d 本のバーを持つヒストグラムを %[2]s に保存しました",
		"Wrote %d thumbnails (%d placeholders) to %s": "%[3]s に %[1]d 個のサムネイル（プレースホルダー %[2]d 個）を書き出しました",
		"Exporting %d/%d frames (%.0f%%)":             "書き出し中 %d/%d フレーム (%.0f%%)",
		"Wrote %d frames at %dx%d to %s":              "%[4]s に %[2]dx%[3]d の %[1]d フレームを書き出しました",
		"Summary saved to %s":                         "サマリーを %s に保存しました",

		// Export summary
		"Export Summary":   "書き出しサマリー",
		"Generated":        "生成日時",
		"Item":             "項目",
		"Value":            "値",
		"Source":           "ソース",
		"File":             "ファイル",
		"Kind":             "種類",
		"Video":            "動画",
		"Image":            "画像",
		"Container":        "コンテナ",
		"Size":             "サイズ",
		"Frame Rate":       "フレームレート",
		"Frames":           "フレーム数",
		"Duration":         "再生時間",
		"Look":             "ルック",
		"Filter":           "フィルター",
		"None":             "なし",
		"Adjustments":      "補正",
		"Default":          "デフォルト",
		"Output":           "出力",
		"Path":             "パス",
		"Frames Directory": "フレームディレクトリ",
		"Format":           "形式",
		"quality":          "品質",
		"Elapsed":          "所要時間",
		"Dry Run":          "ドライラン",
		"Yes":              "はい",

		// Watch
		"Paused":                    "一時停止",
		"Playing":                   "再生中",
		"Zoom %s  presented %d":     "ズーム %s  表示 %d",
		"watch requires a terminal": "watch にはターミナルが必要です",
		"space play/pause  ←/→ seek  +/-/0 zoom  h histogram  q quit": "space 再生/一時停止  ←/→ シーク  +/-/0 ズーム  h ヒストグラム  q 終了",

		// Error messages
		"%s argument is required": "%s 引数が必要です",
	})
}
