package analyzer

import (
	"github.com/mjibson/go-dsp/fft"

	"audiocinema/internal/types"
)

// Bandpass 理想（砖墙式）频域带通滤波。
// 对音轨做实数 FFT，将中心频率落在 [lowHz, highHz] 之外的频点
// （含共轭镜像）全部清零，再逆变换回等长的时域信号。
// 带边的振铃是理想滤波的固有产物，属预期行为。
// 仅用于把新录制的参考音轨裁剪到目标通带，测试音轨不做此处理。
func Bandpass(track types.AudioTrack, lowHz, highHz float64) types.AudioTrack {
	n := len(track.Samples)
	if n == 0 {
		return track
	}

	spectrum := fft.FFTReal(track.Samples)
	binHz := float64(track.SampleRate) / float64(n)

	for i := range spectrum {
		// i > n/2 的频点是负频率镜像，中心频率为 (n-i)*binHz
		k := i
		if i > n/2 {
			k = n - i
		}
		freq := float64(k) * binHz
		if freq < lowHz || freq > highHz {
			spectrum[i] = 0
		}
	}

	inv := fft.IFFT(spectrum)
	out := make([]float64, n)
	for i, c := range inv {
		out[i] = real(c)
	}

	return types.AudioTrack{Samples: out, SampleRate: track.SampleRate}
}
