package analyzer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"audiocinema/internal/types"
)

// 数字静音的绝对基底下限，防止全零帧把阈值拉到零后到处触发
const minNoiseFloor = 1e-4

// OnsetDetector 标定音（beep）起点检测器。
// 固定帧长切分音轨，计算逐帧 RMS 能量，以最安静帧估计噪声基底，
// 能量超过 基底×K 且持续足够长的连续段落记为一次标定音。
// 检测是确定性的：同一输入永远得到同一标记序列。
type OnsetDetector struct {
	frameLen  int // 帧长（采样数）
	factor    float64
	minRun    int // 最短有效段落（帧数）
	minGapLen int // 相邻标记最小间隔（采样数）
}

// NewOnsetDetector 按检测参数和采样率创建检测器
func NewOnsetDetector(d Detection, sampleRate int) *OnsetDetector {
	frameLen := int(float64(sampleRate) * d.FrameMs / 1000.0)
	if frameLen < 1 {
		frameLen = 1
	}
	minRun := int(math.Round(d.MinToneMs / d.FrameMs))
	if minRun < 1 {
		minRun = 1
	}
	return &OnsetDetector{
		frameLen:  frameLen,
		factor:    d.Factor,
		minRun:    minRun,
		minGapLen: int(float64(sampleRate) * d.MinGapMs / 1000.0),
	}
}

// DetectMarkers 检测标定音起点，返回严格递增的采样索引序列
func (o *OnsetDetector) DetectMarkers(track types.AudioTrack) []int {
	envelope := FrameRMS(track.Samples, o.frameLen)
	if len(envelope) == 0 {
		return nil
	}

	threshold := o.noiseFloor(envelope) * o.factor

	var markers []int
	runStart := -1
	runLen := 0
	emitted := false
	for i, e := range envelope {
		if e > threshold {
			if runLen == 0 {
				runStart = i
				emitted = false
			}
			runLen++
			if runLen >= o.minRun && !emitted {
				markers = append(markers, runStart*o.frameLen)
				emitted = true
			}
		} else {
			runLen = 0
		}
	}

	return o.mergeClose(markers)
}

// noiseFloor 取逐帧能量的 20 分位作为噪声基底估计
func (o *OnsetDetector) noiseFloor(envelope []float64) float64 {
	sorted := make([]float64, len(envelope))
	copy(sorted, envelope)
	sort.Float64s(sorted)

	floor := stat.Quantile(0.20, stat.Empirical, sorted, nil)
	if floor < minNoiseFloor {
		floor = minNoiseFloor
	}
	return floor
}

// mergeClose 合并间隔过近的标记，只保留最早的起点，保证序列严格递增
func (o *OnsetDetector) mergeClose(markers []int) []int {
	var merged []int
	for _, m := range markers {
		if len(merged) > 0 && m-merged[len(merged)-1] < o.minGapLen {
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// FrameRMS 逐帧 RMS 能量包络，末尾不足一帧的部分按实际长度计算
func FrameRMS(samples []float64, frameLen int) []float64 {
	if len(samples) == 0 || frameLen < 1 {
		return nil
	}

	frames := (len(samples) + frameLen - 1) / frameLen
	envelope := make([]float64, frames)
	for f := 0; f < frames; f++ {
		start := f * frameLen
		end := start + frameLen
		if end > len(samples) {
			end = len(samples)
		}
		sum := 0.0
		for _, s := range samples[start:end] {
			sum += s * s
		}
		envelope[f] = math.Sqrt(sum / float64(end-start))
	}
	return envelope
}
