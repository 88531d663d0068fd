package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"audiocinema/internal/capture"
	"audiocinema/internal/config"
	"audiocinema/internal/decoder"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "检查运行环境",
	Long:  `逐项检查配置、参考音轨、数据目录、采集后端和遥测配置是否就绪。`,
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("AudioCinema doctor")
	fmt.Println("------------------")

	issues := 0

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("❌ 配置文件无法解析: %v\n", err)
		return fmt.Errorf("发现 1 个问题")
	}
	fmt.Printf("✅ 配置可用: %s\n", cfgPath)

	if track, channels, err := decoder.LoadReference(cfg.Reference.WAVPath); err != nil {
		fmt.Printf("❌ 参考音轨不可用: %v\n", err)
		issues++
	} else {
		// 采样仍是声道交织的，时长要除以声道数
		fmt.Printf("✅ 参考音轨可用: %s (%d 声道, %.1f 秒)\n",
			cfg.Reference.WAVPath, channels, track.DurationSeconds()/float64(channels))
	}

	for _, dir := range []string{cfg.Paths.ReportsDir, cfg.Paths.CapturesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("❌ 数据目录不可写: %s (%v)\n", dir, err)
			issues++
		} else {
			fmt.Printf("✅ 数据目录就绪: %s\n", dir)
		}
	}

	if devices, err := capture.ListDevices(); err != nil {
		fmt.Printf("❌ 采集后端不可用: %v\n", err)
		issues++
	} else if len(devices) == 0 {
		fmt.Println("⚠️  未检测到采集设备")
		issues++
	} else {
		fmt.Printf("✅ 采集设备 %d 个\n", len(devices))
	}

	if cfg.ThingsBoard.Token == "" {
		fmt.Println("⚠️  未配置遥测 token，结果不会上报")
	} else {
		fmt.Println("✅ 遥测 token 已配置")
	}

	if issues > 0 {
		return fmt.Errorf("发现 %d 个问题", issues)
	}
	fmt.Println("\n全部检查通过。")
	return nil
}
