package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/schollz/progressbar/v3"

	"audiocinema/internal/types"
)

// EnvInputIndex 环境变量：强制指定采集设备序号，优先于配置里的名称匹配
const EnvInputIndex = "AUDIOCINEMA_INPUT_INDEX"

// Recorder 麦克风采集协作方。引擎本身不发起采集，
// 只消费协作方产出的 AudioTrack。
type Recorder interface {
	Record(durationS float64) (types.AudioTrack, error)
}

// Device 可用的采集设备
type Device struct {
	Index int
	Name  string
}

// MicRecorder 基于 miniaudio 的麦克风采集实现，
// 阻塞调用线程直至录满设定时长。
type MicRecorder struct {
	sampleRate    int
	preferredName string
	showProgress  bool
}

// NewMicRecorder 创建麦克风采集器
func NewMicRecorder(sampleRate int, preferredName string, showProgress bool) *MicRecorder {
	return &MicRecorder{
		sampleRate:    sampleRate,
		preferredName: preferredName,
		showProgress:  showProgress,
	}
}

// ListDevices 枚举全部采集设备
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("初始化音频后端失败: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("枚举采集设备失败: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{Index: i, Name: info.Name()}
	}
	return devices, nil
}

// Record 录制指定时长的单声道音频
func (r *MicRecorder) Record(durationS float64) (types.AudioTrack, error) {
	if durationS <= 0 {
		return types.AudioTrack{}, fmt.Errorf("录音时长非正: %v", durationS)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("初始化音频后端失败: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("枚举采集设备失败: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(r.sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	if idx := PickDeviceIndex(names, r.preferredName, os.Getenv(EnvInputIndex)); idx >= 0 {
		deviceConfig.Capture.DeviceID = infos[idx].ID.Pointer()
	}

	target := int(math.Round(durationS * float64(r.sampleRate)))
	var mu sync.Mutex
	samples := make([]float64, 0, target)

	onRecv := func(_, input []byte, frameCount uint32) {
		mu.Lock()
		defer mu.Unlock()
		for i := 0; i+4 <= len(input); i += 4 {
			bits := binary.LittleEndian.Uint32(input[i : i+4])
			samples = append(samples, float64(math.Float32frombits(bits)))
		}
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecv})
	if err != nil {
		return types.AudioTrack{}, fmt.Errorf("打开采集设备失败: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return types.AudioTrack{}, fmt.Errorf("启动采集失败: %w", err)
	}

	var bar *progressbar.ProgressBar
	if r.showProgress {
		bar = progressbar.NewOptions(int(durationS*10),
			progressbar.OptionSetDescription("录音中"),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
		)
	}

	// 录满为止，留 50% 余量防设备启动延迟
	deadline := time.Now().Add(time.Duration((durationS*1.5+1)*float64(time.Second)))
	for {
		time.Sleep(100 * time.Millisecond)
		if bar != nil {
			bar.Add(1)
		}
		mu.Lock()
		got := len(samples)
		mu.Unlock()
		if got >= target {
			break
		}
		if time.Now().After(deadline) {
			return types.AudioTrack{}, fmt.Errorf("采集超时: 需要 %d 个采样，仅得到 %d 个", target, got)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	mu.Lock()
	out := make([]float64, target)
	copy(out, samples[:target])
	mu.Unlock()

	return types.AudioTrack{Samples: out, SampleRate: r.sampleRate}, nil
}

// PickDeviceIndex 采集设备选择策略：环境变量序号优先，
// 其次按名称子串匹配首选设备，都不中则返回 -1 使用系统默认。
func PickDeviceIndex(names []string, preferredName, envOverride string) int {
	if envOverride != "" {
		if idx, err := strconv.Atoi(envOverride); err == nil && idx >= 0 && idx < len(names) {
			return idx
		}
	}
	if preferredName != "" {
		want := strings.ToLower(preferredName)
		for i, name := range names {
			if strings.Contains(strings.ToLower(name), want) {
				return i
			}
		}
	}
	return -1
}
