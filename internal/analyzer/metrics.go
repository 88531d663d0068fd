package analyzer

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"audiocinema/internal/types"
)

// 频谱偏差的对数钳位，频段一侧能量为零时的哨兵幅度
const maxBandDevDB = 60.0

// MetricsEngine 按分段计算声学指标。
// 所有指标都是分段采样的纯函数，不持有跨次调用的状态。
type MetricsEngine struct {
	sampleRate int
	frameLen   int
	bands      []Band
}

// NewMetricsEngine 创建指标计算器，帧长与检测器保持一致
func NewMetricsEngine(sampleRate int, d Detection, bands []Band) *MetricsEngine {
	frameLen := int(float64(sampleRate) * d.FrameMs / 1000.0)
	if frameLen < 1 {
		frameLen = 1
	}
	return &MetricsEngine{sampleRate: sampleRate, frameLen: frameLen, bands: bands}
}

// Compute 计算单个分段的全部指标。
// 静音分段退化为约定值（RMS=0、crest=0、P95=0、频段占比全零），不报错。
func (m *MetricsEngine) Compute(samples []float64) types.ChannelMetrics {
	rms := RMS(samples)

	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	crest := 0.0
	if rms > 0 {
		crest = peak / rms
	}

	return types.ChannelMetrics{
		RMS:   rms,
		Crest: crest,
		Bands: m.bandEnergies(samples),
		P95:   m.p95(samples),
	}
}

// RMS 均方根幅值
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// bandEnergies 各命名频段的能量占比，占比之和为 1（全静音时为全零）
func (m *MetricsEngine) bandEnergies(samples []float64) map[string]float64 {
	energies := make(map[string]float64, len(m.bands))
	for _, b := range m.bands {
		energies[b.Name] = 0
	}
	if len(samples) == 0 {
		return energies
	}

	spectrum := fft.FFTReal(samples)
	binHz := float64(m.sampleRate) / float64(len(samples))

	total := 0.0
	// 只取正频率一侧，FFT 的另一半是共轭镜像
	for i := 0; i <= len(samples)/2; i++ {
		freq := float64(i) * binHz
		power := cmplx.Abs(spectrum[i]) * cmplx.Abs(spectrum[i])
		for _, b := range m.bands {
			if freq >= b.LowHz && freq < b.HighHz {
				energies[b.Name] += power
				total += power
				break
			}
		}
	}

	if total > 0 {
		for name := range energies {
			energies[name] /= total
		}
	}
	return energies
}

// p95 逐帧 RMS 包络的 95 分位，对瞬态比峰值和均值更稳健
func (m *MetricsEngine) p95(samples []float64) float64 {
	envelope := FrameRMS(samples, m.frameLen)
	if len(envelope) == 0 {
		return 0
	}
	sort.Float64s(envelope)
	return stat.Quantile(0.95, stat.Empirical, envelope, nil)
}

// RelativeSpectrum 测试分段相对参考分段的频谱偏差：
// 逐频段计算 10*log10(test/ref)，取绝对值最大的频段的带符号偏差。
func RelativeSpectrum(test, ref map[string]float64) float64 {
	worst := 0.0
	for name, rf := range ref {
		tf := test[name]
		dev := bandDevDB(tf, rf)
		if math.Abs(dev) > math.Abs(worst) {
			worst = dev
		}
	}
	return worst
}

// bandDevDB 单频段占比偏差（dB），一侧为零时钳位到哨兵值
func bandDevDB(test, ref float64) float64 {
	switch {
	case test <= 0 && ref <= 0:
		return 0
	case ref <= 0:
		return maxBandDevDB
	case test <= 0:
		return -maxBandDevDB
	}
	dev := 10 * math.Log10(test/ref)
	if dev > maxBandDevDB {
		return maxBandDevDB
	}
	if dev < -maxBandDevDB {
		return -maxBandDevDB
	}
	return dev
}
