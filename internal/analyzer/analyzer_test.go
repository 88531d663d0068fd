package analyzer

import (
	"errors"
	"math"
	"testing"

	"audiocinema/internal/types"
)

func newTestAnalyzer(t *testing.T, level Strictness) *Analyzer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Strictness = level
	a, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

// 场景A：测试音轨与参考音轨逐位相同，任何严格级别都应整体通过，
// 且每个通道的相对频谱偏差约为 0 dB。
func TestVerifyPairIdentical(t *testing.T) {
	ref := calibrationTrack()
	cur := calibrationTrack()

	for _, level := range []Strictness{StrictnessLow, StrictnessMedium, StrictnessHigh} {
		payload, err := newTestAnalyzer(t, level).VerifyPair(ref, cur)
		if err != nil {
			t.Fatalf("%s: VerifyPair: %v", level, err)
		}
		if payload.Evaluation.Overall != types.StatusPassed {
			t.Errorf("%s: 期望整体 PASSED, 得到 %s", level, payload.Evaluation.Overall)
		}
		if len(payload.Evaluation.Channels) != 2 {
			t.Fatalf("%s: 通道数 = %d, 期望 2", level, len(payload.Evaluation.Channels))
		}
		for _, ch := range payload.Evaluation.Channels {
			if math.Abs(ch.Test.SpectrumDevDB) > 0.01 {
				t.Errorf("%s: 通道 %d 频谱偏差 = %v dB, 期望约 0", level, ch.Channel, ch.Test.SpectrumDevDB)
			}
		}
	}
}

// 场景B：测试音轨整体衰减。RMS 比值反映衰减量：
// 20 dB 衰减在 High 必然失败；4 dB 的轻微衰减在 Low 的宽容差内通过。
func TestVerifyPairAttenuated(t *testing.T) {
	ref := calibrationTrack()

	heavy := scaled(ref, math.Pow(10, -20.0/20))
	payload, err := newTestAnalyzer(t, StrictnessHigh).VerifyPair(ref, heavy)
	if err != nil {
		t.Fatalf("VerifyPair: %v", err)
	}
	if payload.Evaluation.Overall != types.StatusFailed {
		t.Errorf("High + 20dB 衰减: 期望 FAILED, 得到 %s", payload.Evaluation.Overall)
	}

	mild := scaled(ref, math.Pow(10, -4.0/20))
	payload, err = newTestAnalyzer(t, StrictnessLow).VerifyPair(ref, mild)
	if err != nil {
		t.Fatalf("VerifyPair: %v", err)
	}
	if payload.Evaluation.Overall != types.StatusPassed {
		t.Errorf("Low + 4dB 衰减: 期望 PASSED, 得到 %s", payload.Evaluation.Overall)
	}
	payload, err = newTestAnalyzer(t, StrictnessHigh).VerifyPair(ref, mild)
	if err != nil {
		t.Fatalf("VerifyPair: %v", err)
	}
	if payload.Evaluation.Overall != types.StatusFailed {
		t.Errorf("High + 4dB 衰减: 期望 FAILED, 得到 %s", payload.Evaluation.Overall)
	}
}

// 场景C：测试音轨比参考少一个标定音，
// 末尾通道报分段数不匹配并整体失败，匹配到的通道保持独立结论。
func TestVerifyPairMissingMarker(t *testing.T) {
	ref := calibrationTrack()
	// 截断到第二个标定音之前，测试音轨只剩通道1
	cur := types.AudioTrack{Samples: ref.Samples[:9760], SampleRate: ref.SampleRate}

	payload, err := newTestAnalyzer(t, StrictnessHigh).VerifyPair(ref, cur)
	if err != nil {
		t.Fatalf("VerifyPair: %v", err)
	}

	if len(payload.RefMarkers) != 2 || len(payload.CurMarkers) != 1 {
		t.Fatalf("标记数: 参考 %v 测试 %v", payload.RefMarkers, payload.CurMarkers)
	}
	if payload.Evaluation.Overall != types.StatusFailed {
		t.Errorf("期望整体 FAILED, 得到 %s", payload.Evaluation.Overall)
	}

	channels := payload.Evaluation.Channels
	if len(channels) != 2 {
		t.Fatalf("通道数 = %d, 期望 2", len(channels))
	}
	if channels[0].Status != types.StatusPassed {
		t.Errorf("通道1应独立通过: %s (%s)", channels[0].Status, channels[0].Cause)
	}
	if channels[1].Status != types.StatusFailed || channels[1].Cause != CauseSegmentMismatch {
		t.Errorf("通道2应报分段数不匹配: %s (%q)", channels[1].Status, channels[1].Cause)
	}
}

// 参考音轨采样率不同时重采样到测试采样率后照常校验
func TestVerifyPairResamples(t *testing.T) {
	ref := calibrationTrack()
	cur := calibrationTrack()
	highRateRef := Resample(ref, 16000)

	// 线性插值往返会轻微衰减高频分量，用宽容差级别校验
	payload, err := newTestAnalyzer(t, StrictnessLow).VerifyPair(highRateRef, cur)
	if err != nil {
		t.Fatalf("VerifyPair: %v", err)
	}
	if payload.FS != cur.SampleRate {
		t.Errorf("结果采样率 = %d, 期望 %d", payload.FS, cur.SampleRate)
	}
	if len(payload.RefMarkers) != 2 {
		t.Fatalf("重采样后的参考标记 = %v, 期望 2 个", payload.RefMarkers)
	}
	if payload.Evaluation.Overall != types.StatusPassed {
		t.Errorf("重采样后的同源音轨应通过: %s", payload.Evaluation.Overall)
	}
}

func TestVerifyPairMalformed(t *testing.T) {
	good := calibrationTrack()
	a := newTestAnalyzer(t, StrictnessMedium)

	tests := []struct {
		name      string
		ref, cur  types.AudioTrack
		wantTrack string
	}{
		{"参考为空", types.AudioTrack{SampleRate: testFS}, good, "reference"},
		{"测试为空", good, types.AudioTrack{SampleRate: testFS}, "capture"},
		{"采样率非正", good, types.AudioTrack{Samples: []float64{0.1}, SampleRate: 0}, "capture"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.VerifyPair(tt.ref, tt.cur)
			var malformed *types.MalformedAudioError
			if !errors.As(err, &malformed) {
				t.Fatalf("期望 MalformedAudioError, 得到 %v", err)
			}
			if malformed.Track != tt.wantTrack {
				t.Errorf("出错音轨 = %s, 期望 %s", malformed.Track, tt.wantTrack)
			}
		})
	}
}
