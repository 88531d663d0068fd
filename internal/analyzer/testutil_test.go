package analyzer

import (
	"math"

	"audiocinema/internal/types"
)

const testFS = 8000

// sine 合成正弦波采样
func sine(freq, amp, seconds float64, fs int) []float64 {
	n := int(seconds * float64(fs))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(fs))
	}
	return out
}

// silence 合成静音采样
func silence(seconds float64, fs int) []float64 {
	return make([]float64, int(seconds*float64(fs)))
}

// concat 拼接采样片段
func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// calibrationTrack 两通道标定音轨：
// 0.3s 静音 → 0.12s 1kHz 标定音(满幅) → 0.5s 400Hz 通道内容
// → 0.3s 静音 → 0.12s 标定音 → 0.5s 1.8kHz 通道内容 → 0.2s 静音。
// 标定音起点恰好落在 2400 和 9760 两个采样处（帧边界上）。
func calibrationTrack() types.AudioTrack {
	samples := concat(
		silence(0.3, testFS),
		sine(1000, 1.0, 0.12, testFS),
		sine(400, 0.5, 0.5, testFS),
		silence(0.3, testFS),
		sine(1000, 1.0, 0.12, testFS),
		sine(1800, 0.5, 0.5, testFS),
		silence(0.2, testFS),
	)
	return types.AudioTrack{Samples: samples, SampleRate: testFS}
}

// scaled 整体缩放音轨电平
func scaled(track types.AudioTrack, gain float64) types.AudioTrack {
	out := make([]float64, len(track.Samples))
	for i, s := range track.Samples {
		out[i] = s * gain
	}
	return types.AudioTrack{Samples: out, SampleRate: track.SampleRate}
}
