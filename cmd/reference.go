package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"audiocinema/internal/analyzer"
	"audiocinema/internal/capture"
	"audiocinema/internal/config"
	"audiocinema/internal/decoder"
)

var (
	refDuration float64
	refOutput   string
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "录制新的参考音轨",
	Long: `用麦克风录制一段新的参考音轨，裁剪到配置的通带
（默认 30-8000 Hz）后保存为 WAV，供后续 verify 对比使用。
录制时请保持麦克风位置与日常校验一致。`,
	Args: cobra.NoArgs,
	RunE: runReference,
}

func init() {
	referenceCmd.Flags().Float64VarP(&refDuration, "duration", "d", 0, "录音时长（秒），默认取配置")
	referenceCmd.Flags().StringVarP(&refOutput, "output", "o", "", "保存路径，默认取配置")

	rootCmd.AddCommand(referenceCmd)
}

func runReference(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	duration := cfg.Audio.DurationS
	if refDuration > 0 {
		duration = refDuration
	}
	output := cfg.Reference.WAVPath
	if refOutput != "" {
		output = refOutput
	}

	fmt.Printf("通带范围: %.0f Hz - %.0f Hz\n", cfg.Reference.CutoffLowHz, cfg.Reference.CutoffHighHz)

	recorder := capture.NewMicRecorder(cfg.Audio.FS, cfg.Audio.PreferredInputName, true)
	track, err := recorder.Record(duration)
	if err != nil {
		return fmt.Errorf("录制参考音轨失败: %w", err)
	}

	trimmed := analyzer.Bandpass(track, cfg.Reference.CutoffLowHz, cfg.Reference.CutoffHighHz)
	if err := decoder.SaveWAV(output, trimmed); err != nil {
		return fmt.Errorf("保存参考音轨失败: %w", err)
	}

	fmt.Printf("参考音轨已保存到: %s\n", output)
	return nil
}
