package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"audiocinema/internal/analyzer"
	"audiocinema/internal/capture"
	"audiocinema/internal/config"
	"audiocinema/internal/decoder"
	"audiocinema/internal/report"
	"audiocinema/internal/telemetry"
	"audiocinema/internal/types"
)

var (
	verifyDuration    float64
	verifyLevel       string
	verifyInput       string
	verifyDevice      string
	verifyNoTelemetry bool
	verifyJSON        bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "录制测试音轨并与参考音轨对比校验",
	Long: `录制一段测试音轨（或用 --input 指定已有的音频文件），
与配置的参考音轨对比，输出逐通道与整体的通过/失败结论，
写出 JSON 报告，并在配置了 token 时上报 ThingsBoard。`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Float64VarP(&verifyDuration, "duration", "d", 0, "录音时长（秒），默认取配置")
	verifyCmd.Flags().StringVarP(&verifyLevel, "level", "l", "", "严格级别 Low/Medium/High，默认取配置")
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "用音频文件代替麦克风作为测试音轨")
	verifyCmd.Flags().StringVar(&verifyDevice, "device", "", "采集设备名称子串，默认取配置")
	verifyCmd.Flags().BoolVar(&verifyNoTelemetry, "no-telemetry", false, "跳过遥测上报")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "以JSON格式输出结果")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if verifyDuration > 0 {
		cfg.Audio.DurationS = verifyDuration
	}
	if verifyLevel != "" {
		cfg.Evaluation.Level = verifyLevel
	}
	if verifyDevice != "" {
		cfg.Audio.PreferredInputName = verifyDevice
	}

	engine, err := analyzer.NewAnalyzer(cfg.EngineConfig())
	if err != nil {
		return err
	}

	// 1) 加载参考音轨
	refRaw, refChannels, err := decoder.LoadReference(cfg.Reference.WAVPath)
	if err != nil {
		return err
	}
	ref := analyzer.Downmix(refRaw, refChannels)

	// 2) 获取测试音轨：麦克风采集或外部文件
	cur, err := acquireTestTrack(cfg)
	if err != nil {
		return err
	}

	// 3) 校验
	payload, err := engine.VerifyPair(ref, cur)
	if err != nil {
		return err
	}

	// 4) 输出与导出
	if verifyJSON {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("JSON序列化失败: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printPayload(payload)
	}

	writer := report.NewWriter(cfg.Paths.ReportsDir)
	reportPath, err := writer.Write(payload)
	if err != nil {
		return err
	}
	if !verifyJSON {
		fmt.Printf("报告已写入: %s\n", reportPath)
	}

	// 5) 遥测：先发扁平视图再发完整负载，两次独立投递，失败不中断
	if !verifyNoTelemetry && cfg.ThingsBoard.Token != "" {
		publishTelemetry(cfg.ThingsBoard, payload)
	}

	return nil
}

// acquireTestTrack 获取测试音轨。麦克风采集的片段会先归档到采集目录。
func acquireTestTrack(cfg *config.Config) (types.AudioTrack, error) {
	if verifyInput != "" {
		raw, channels, err := decoder.LoadTrack(verifyInput, "capture")
		if err != nil {
			return types.AudioTrack{}, err
		}
		return analyzer.Downmix(raw, channels), nil
	}

	recorder := capture.NewMicRecorder(cfg.Audio.FS, cfg.Audio.PreferredInputName, !verifyJSON)
	cur, err := recorder.Record(cfg.Audio.DurationS)
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("录制测试音轨失败: %w", err)
	}

	capturePath := filepath.Join(cfg.Paths.CapturesDir,
		fmt.Sprintf("capture_%s.wav", time.Now().UTC().Format("20060102_150405")))
	if err := decoder.SaveWAV(capturePath, cur); err != nil {
		fmt.Fprintf(os.Stderr, "归档采集片段失败: %v\n", err)
	}
	return cur, nil
}

// printPayload 打印校验结果
func printPayload(payload *types.ResultPayload) {
	fmt.Printf("\n=== 校验结果 ===\n")
	fmt.Printf("采样率: %d Hz\n", payload.FS)
	fmt.Printf("参考标记: %v\n", payload.RefMarkers)
	fmt.Printf("测试标记: %v\n", payload.CurMarkers)

	for _, ch := range payload.Evaluation.Channels {
		fmt.Printf("\n--- 通道 %d: %s ---\n", ch.Channel, ch.Status)
		if ch.Cause != "" {
			fmt.Printf("原因: %s\n", ch.Cause)
		}
		if ch.Ref != nil && ch.Test != nil {
			fmt.Printf("RMS: 参考 %.4f / 测试 %.4f\n", ch.Ref.RMS, ch.Test.RMS)
			fmt.Printf("峰值因子: 参考 %.2f / 测试 %.2f\n", ch.Ref.Crest, ch.Test.Crest)
			fmt.Printf("P95: 参考 %.4f / 测试 %.4f\n", ch.Ref.P95, ch.Test.P95)
			fmt.Printf("频谱偏差: %+.1f dB\n", ch.Test.SpectrumDevDB)
		}
	}

	if payload.Evaluation.Overall == types.StatusPassed {
		fmt.Printf("\n✅ 整体结论: PASSED\n")
	} else {
		fmt.Printf("\n⚠️  整体结论: FAILED\n")
	}
}

// publishTelemetry 两段式遥测投递，任一失败只打印不终止
func publishTelemetry(tb config.ThingsBoardConfig, payload *types.ResultPayload) {
	client := telemetry.NewClient(tb.Host, tb.Port, tb.Token, tb.UseTLS)
	if err := client.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	defer client.Close()

	if err := client.PublishFlat(analyzer.Flatten(payload)); err != nil {
		fmt.Fprintf(os.Stderr, "扁平遥测未送达: %v\n", err)
	}
	if err := client.PublishFull(payload); err != nil {
		fmt.Fprintf(os.Stderr, "完整遥测未送达: %v\n", err)
	}
}
