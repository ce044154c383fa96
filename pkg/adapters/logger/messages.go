package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// UI loop and scheduler
		"UI loop started": "UIループを開始しました",
		"UI loop stopped": "UIループを停止しました",
		"Presentation cadence set to %v (%.2f fps)": "表示間隔を %v (%.2f fps) に設定しました",
		"Frame render failed: %v":                   "フレームの描画に失敗しました: %v",
		"Frame rendering recovered":                 "フレーム描画が回復しました",

		// Surface and resize
		"Surface created: %dx%d":           "サーフェスを作成しました: %dx%d",
		"Surface resized: %dx%d":           "サーフェスをリサイズしました: %dx%d",
		"Surface destroyed":                "サーフェスを破棄しました",
		"Resizing surface to %dx%d":        "サーフェスを %dx%d にリサイズ中",
		"Resize to %dx%d failed: %v":       "%dx%d へのリサイズに失敗しました: %v",
		"Resize to %dx%d restored":         "%dx%d へのリサイズで復旧しました",
		"Size change to %dx%d deferred":    "%dx%d へのサイズ変更を保留しました",
		"Attached shared handle %d":        "共有ハンドル %d をアタッチしました",
		"Present failed for handle %d: %v": "ハンドル %d の表示に失敗しました: %v",

		// Media loading and playback
		"File not found: %s":                            "ファイルが見つかりません: %s",
		"Image loaded: %s":                              "画像を読み込みました: %s",
		"Failed to load image %s: %v":                   "画像 %s の読み込みに失敗しました: %v",
		"Probe failed, treating %s as an image: %v":     "判定に失敗したため %s を画像として扱います: %v",
		"Video loaded: %s (%dx%d, %.2f fps, %d frames)": "動画を読み込みました: %s (%dx%d, %.2f fps, %d フレーム)",
		"Video opened: %s (%dx%d, %d frames, codec %s)": "動画を開きました: %s (%dx%d, %d フレーム, コーデック %s)",
		"Video closed: %s":                              "動画を閉じました: %s",
		"Failed to open video %s: %v":                   "動画 %s を開けませんでした: %v",
		"Failed to read video metadata %s: %v":          "動画 %s のメタデータ取得に失敗しました: %v",
		"Playing: %t":                                   "再生中: %t",
		"Seek to %d us failed: %v":                      "%d us へのシークに失敗しました: %v",
		"Playback position unavailable: %v":             "再生位置を取得できません: %v",
		"Decoded %s image %dx%d":                        "%s 画像 %dx%d をデコードしました",

		// Zoom and histogram
		"Zoom update failed: %v":                      "ズームの更新に失敗しました: %v",
		"Zoom reapply failed: %v":                     "ズームの再適用に失敗しました: %v",
		"Histogram unavailable: %v":                   "ヒストグラムを取得できません: %v",
		"Histogram view not laid out, deferring draw": "ヒストグラム表示のレイアウト前のため描画を保留します",

		// Filters and adjustments
		"Skipping LUT directory %s: %v":   "LUTディレクトリ %s をスキップします: %v",
		"Loaded %d filters":               "%d 個のフィルターを読み込みました",
		"Filter selected: %s":             "フィルターを選択しました: %s",
		"Filter removed":                  "フィルターを解除しました",
		"Failed to load filter %s: %v":    "フィルター %s の読み込みに失敗しました: %v",
		"Adjustments reset":               "調整をリセットしました",
		"Failed to apply adjustments: %v": "調整の適用に失敗しました: %v",
		"LUT loaded: %s (size %d)":        "LUTを読み込みました: %s (サイズ %d)",

		// Thumbnails
		"Found %d media files in %s":               "%[2]s に %[1]d 個のメディアファイルがあります",
		"Generating %d thumbnails with %d workers": "%d 個のサムネイルを %d ワーカーで生成中",
		"Video thumbnail unavailable for %s: %v":   "%s の動画サムネイルを取得できません: %v",
		"Thumbnail failed for %s: %v":              "%s のサムネイル生成に失敗しました: %v",

		// Export
		"Image exported: %s (%s)":            "画像を書き出しました: %s (%s)",
		"Image export failed: %v":            "画像の書き出しに失敗しました: %v",
		"Video export started: %s (job %s)":  "動画の書き出しを開始しました: %s (ジョブ %s)",
		"Video export failed to start: %v":   "動画の書き出しを開始できませんでした: %v",
		"Video export cancelled: %s":         "動画の書き出しを中止しました: %s",
		"Video export completed: %s":         "動画の書き出しが完了しました: %s",
		"Video export failed: %v":            "動画の書き出しに失敗しました: %v",
		"Exporting %d frames of %s at %dx%d": "%[2]s の %[1]d フレームを %[3]dx%[4]d で書き出し中",
		"Export cancelled after %d frames":   "%d フレームで書き出しを中止しました",
		"Export frame %d failed: %v":         "フレーム %d の書き出しに失敗しました: %v",
		"Export sink close failed: %v":       "書き出し先のクローズに失敗しました: %v",

		// Backend
		"Backend initialized": "バックエンドを初期化しました",
		"Backend shut down":   "バックエンドを終了しました",

		// Editor
		"Backend initialization failed: %v":          "バックエンドの初期化に失敗しました: %v",
		"Editor started":                             "エディターを開始しました",
		"Surface creation failed: %v":                "サーフェスの作成に失敗しました: %v",
		"Layout after start failed: %v":              "開始後のレイアウトに失敗しました: %v",
		"Export cancel on shutdown: %v":              "終了時の書き出し中止に失敗しました: %v",
		"Editor shut down":                           "エディターを終了しました",
		"Load of %s deferred until resize completes": "%s の読み込みをリサイズ完了まで延期しました",
		"Deferred load failed: %v":                   "延期した読み込みに失敗しました: %v",
	})
}
