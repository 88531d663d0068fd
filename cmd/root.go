package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	version = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:   "audiocinema",
	Short: "现场音频链路校验工具",
	Long: `AudioCinema 是一个现场音频链路校验CLI工具。
它通过麦克风录制一段测试音轨，与预先录制的参考音轨对比
（RMS、峰值因子、频段能量、相对频谱、P95），判断功放、
音箱和布线组成的重放链路是否仍在容差之内。

校验结果导出为 JSON 报告，并可选地上报到 ThingsBoard 遥测平台。`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", filepath.Join("config", "config.json"), "配置文件路径")
	rootCmd.Flags().BoolP("version", "v", false, "显示版本信息")

	rootCmd.SetVersionTemplate("audiocinema version {{.Version}}\n")
	rootCmd.Version = version
}
