package main

import (
	"ImageRecognitionSkill/internal/annotation"
	"ImageRecognitionSkill/internal/clients"
	"ImageRecognitionSkill/internal/config"
	"ImageRecognitionSkill/internal/services"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var (
	configDir  string
	configName string
	resultFile string
	backend    string
)

var rootCmd = &cobra.Command{
	Use:   "annotate [image]",
	Short: "標註單張影像並輸出所有 metadata 範本",
	Long: `annotate 讀取一張影像並呼叫設定的標註後端，或直接讀取既有的
Vision API 標註 JSON (--result)，接著輸出純文字 metadata 與每個 skills 範本。
不連線資料庫，也不寫回任何檔案。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (resultFile != "") {
			return fmt.Errorf("請指定影像路徑或 --result 其中之一")
		}
		cfg, err := config.Load(configDir, configName)
		if err != nil {
			return err
		}
		if backend != "" {
			cfg.Annotator.Backend = backend
		}

		var result annotation.Result
		if resultFile != "" {
			result, err = loadResult(resultFile)
		} else {
			result, err = annotateImage(cmd.Context(), cfg, args[0])
		}
		if err != nil {
			return err
		}
		return printOutputs(cmd.OutOrStdout(), cfg.Metadata, result)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", "./configs", "設定檔目錄")
	rootCmd.Flags().StringVar(&configName, "config-name", "config", "設定檔名稱（不含副檔名）")
	rootCmd.Flags().StringVar(&resultFile, "result", "", "已存在的標註結果 JSON 檔案")
	rootCmd.Flags().StringVar(&backend, "backend", "", "覆寫 annotator.backend (vision 或 gemini)")
}

func loadResult(path string) (annotation.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("無法讀取標註結果 '%s': %w", path, err)
	}
	return annotation.ParseResult(raw)
}

func annotateImage(ctx context.Context, cfg *config.Config, path string) (annotation.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("無法讀取影像 '%s': %w", path, err)
	}
	annotator, closeAnnotator, err := clients.NewAnnotator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeAnnotator()

	if secs := cfg.Annotator.TimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}
	return annotator.Annotate(ctx, image, cfg.Vision.Features)
}

// printOutputs 依範本鍵輸出；舊版範本未啟用時另外預覽純文字內容
func printOutputs(w io.Writer, meta config.MetadataConfig, result annotation.Result) error {
	fmt.Fprintf(w, "# 分類: %v\n\n", result.Names())
	if !meta.Legacy.Enabled {
		text := annotation.RenderFlatText(annotation.Select(result, services.LegacyCategories(meta.Legacy)))
		fmt.Fprintf(w, "## flat text\n%s\n", text)
	}

	outputs, err := services.BuildOutputs(meta, result)
	if err != nil {
		return err
	}
	for _, o := range outputs {
		fmt.Fprintf(w, "## %s\n", o.TemplateKey)
		keys := make([]string, 0, len(o.Value))
		for k := range o.Value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s: %s\n", k, o.Value[k])
		}
		fmt.Fprintln(w)
	}
	return nil
}
