package analyzer

import (
	"math"
	"strings"
	"testing"

	"audiocinema/internal/types"
)

func mkMetrics(rms float64) types.ChannelMetrics {
	return types.ChannelMetrics{
		RMS:   rms,
		Crest: math.Sqrt2,
		Bands: map[string]float64{"low": 0.2, "mid": 0.6, "high": 0.2},
		P95:   rms,
	}
}

func evaluateAt(level Strictness, ref, test []types.ChannelMetrics) types.EvaluationResult {
	return NewEvaluator(level, DefaultTolerances()).Evaluate(ref, test)
}

func TestEvaluateIdentical(t *testing.T) {
	ref := []types.ChannelMetrics{mkMetrics(0.5), mkMetrics(0.3)}

	for _, level := range []Strictness{StrictnessLow, StrictnessMedium, StrictnessHigh} {
		result := evaluateAt(level, ref, ref)
		if result.Overall != types.StatusPassed {
			t.Errorf("%s: 完全一致的指标应整体通过，得到 %s", level, result.Overall)
		}
		for _, ch := range result.Channels {
			if ch.Status != types.StatusPassed {
				t.Errorf("%s: 通道 %d = %s, cause=%s", level, ch.Channel, ch.Status, ch.Cause)
			}
		}
	}
}

// TestEvaluateMonotonicity 容差逐级收窄：High 通过的通道在 Medium 和 Low 也必须通过
func TestEvaluateMonotonicity(t *testing.T) {
	ref := []types.ChannelMetrics{mkMetrics(0.5)}
	gains := []float64{1.0, 0.9, 0.7, 0.5, 0.1}

	for _, gain := range gains {
		test := []types.ChannelMetrics{mkMetrics(0.5 * gain)}
		high := evaluateAt(StrictnessHigh, ref, test).Overall
		medium := evaluateAt(StrictnessMedium, ref, test).Overall
		low := evaluateAt(StrictnessLow, ref, test).Overall

		if high == types.StatusPassed && (medium != types.StatusPassed || low != types.StatusPassed) {
			t.Errorf("gain=%v: High 通过但 Medium=%s Low=%s", gain, medium, low)
		}
		if medium == types.StatusPassed && low != types.StatusPassed {
			t.Errorf("gain=%v: Medium 通过但 Low=%s", gain, low)
		}
	}
}

func TestEvaluateRMSTolerance(t *testing.T) {
	ref := []types.ChannelMetrics{mkMetrics(0.5)}
	// -4 dB 的衰减：超出 High(±1.5) 和 Medium(±3)，在 Low(±6) 之内
	gain := math.Pow(10, -4.0/20)
	test := []types.ChannelMetrics{mkMetrics(0.5 * gain)}

	if got := evaluateAt(StrictnessHigh, ref, test).Overall; got != types.StatusFailed {
		t.Errorf("High: 期望 FAILED, 得到 %s", got)
	}
	if got := evaluateAt(StrictnessLow, ref, test).Overall; got != types.StatusPassed {
		t.Errorf("Low: 期望 PASSED, 得到 %s", got)
	}

	verdict := evaluateAt(StrictnessHigh, ref, test).Channels[0]
	if !strings.Contains(verdict.Cause, "RMS") {
		t.Errorf("失败原因应指明 RMS: %q", verdict.Cause)
	}
}

func TestEvaluateSegmentMismatch(t *testing.T) {
	ref := []types.ChannelMetrics{mkMetrics(0.5), mkMetrics(0.3)}
	test := []types.ChannelMetrics{mkMetrics(0.5)}

	result := evaluateAt(StrictnessMedium, ref, test)
	if result.Overall != types.StatusFailed {
		t.Fatalf("分段数不匹配应整体失败，得到 %s", result.Overall)
	}
	if len(result.Channels) != 2 {
		t.Fatalf("通道数 = %d, 期望 2", len(result.Channels))
	}
	if result.Channels[0].Status != types.StatusPassed {
		t.Errorf("匹配的通道应独立评估: %s (%s)", result.Channels[0].Status, result.Channels[0].Cause)
	}
	if result.Channels[1].Status != types.StatusFailed || result.Channels[1].Cause != CauseSegmentMismatch {
		t.Errorf("缺失通道应失败并标明原因: %s (%q)", result.Channels[1].Status, result.Channels[1].Cause)
	}
}

func TestEvaluateZeroChannels(t *testing.T) {
	result := evaluateAt(StrictnessLow, nil, nil)
	if result.Overall != types.StatusFailed {
		t.Errorf("零通道不应空洞地通过: %s", result.Overall)
	}
	if len(result.Channels) != 0 {
		t.Errorf("零通道结果不应有通道项: %v", result.Channels)
	}
}

func TestCrestDeviation(t *testing.T) {
	tests := []struct {
		name      string
		test, ref float64
		want      float64
	}{
		{"双静音无偏差", 0, 0, 0},
		{"正常相对偏差", 1.2, 1.5, 0.2},
		{"参考静音测试有声", 1.4, 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := crestDeviation(tt.test, tt.ref); math.Abs(got-tt.want) > 1e-9 && !(math.IsInf(got, 1) && math.IsInf(tt.want, 1)) {
				t.Errorf("crestDeviation(%v,%v) = %v, 期望 %v", tt.test, tt.ref, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认配置应有效: %v", err)
	}

	bad := DefaultConfig()
	tol := bad.Tolerances[StrictnessHigh]
	tol.RMSDB = 100 // High 比 Medium 还宽
	bad.Tolerances[StrictnessHigh] = tol
	if err := bad.Validate(); err == nil {
		t.Error("容差未逐级收窄时应校验失败")
	}

	noLevel := DefaultConfig()
	noLevel.Strictness = "Extreme"
	if err := noLevel.Validate(); err == nil {
		t.Error("未知严格级别应校验失败")
	}
}
