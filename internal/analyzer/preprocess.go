package analyzer

import (
	"math"

	"audiocinema/internal/types"
)

// Downmix 多声道交织采样按声道取均值混为单声道，单声道原样返回
func Downmix(track types.AudioTrack, channels int) types.AudioTrack {
	if channels <= 1 {
		return track
	}

	frames := len(track.Samples) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += track.Samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}

	return types.AudioTrack{Samples: mono, SampleRate: track.SampleRate}
}

// Normalize 幅度归一化，使最大绝对幅值恰为 1.0。
// 全零音轨原样返回，避免除零。
func Normalize(track types.AudioTrack) types.AudioTrack {
	peak := 0.0
	for _, s := range track.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return track
	}

	out := make([]float64, len(track.Samples))
	for i, s := range track.Samples {
		out[i] = s / peak
	}

	return types.AudioTrack{Samples: out, SampleRate: track.SampleRate}
}

// Resample 采样率换算。在归一化时间轴 [0,1] 上做线性插值，
// 输出 round(len * target / source) 个采样，首尾采样精确对应。
func Resample(track types.AudioTrack, targetRate int) types.AudioTrack {
	if track.SampleRate == targetRate || len(track.Samples) == 0 {
		return types.AudioTrack{Samples: track.Samples, SampleRate: targetRate}
	}

	n := len(track.Samples)
	m := int(math.Round(float64(n) * float64(targetRate) / float64(track.SampleRate)))
	if m <= 1 || n == 1 {
		out := make([]float64, max(m, 1))
		for i := range out {
			out[i] = track.Samples[0]
		}
		return types.AudioTrack{Samples: out, SampleRate: targetRate}
	}

	out := make([]float64, m)
	// 两条时间轴都覆盖 [0,1]，端点严格映射到首尾采样
	scale := float64(n-1) / float64(m-1)
	for i := 0; i < m; i++ {
		pos := float64(i) * scale
		lo := int(pos)
		if lo >= n-1 {
			out[i] = track.Samples[n-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = track.Samples[lo]*(1-frac) + track.Samples[lo+1]*frac
	}

	return types.AudioTrack{Samples: out, SampleRate: targetRate}
}
