package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"audiocinema/internal/capture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "列出可用的采集设备",
	Long: `枚举系统的麦克风采集设备。设备序号可通过环境变量
AUDIOCINEMA_INPUT_INDEX 强制指定，优先于配置里的名称匹配。`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := capture.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("未检测到采集设备")
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%d: %s\n", d.Index, d.Name)
	}
	return nil
}
