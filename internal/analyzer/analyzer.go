package analyzer

import (
	"fmt"
	"time"

	"audiocinema/internal/types"
)

// Analyzer 音频校验引擎：把参考音轨与测试音轨变成带指标的通过/失败结论。
// 单线程同步执行，一次校验不留任何跨次状态。
type Analyzer struct {
	cfg Config
}

// NewAnalyzer 创建校验引擎，配置非法时拒绝启动
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("引擎配置无效: %w", err)
	}
	return &Analyzer{cfg: cfg}, nil
}

// VerifyPair 完整校验流水线：
// 预处理参考音轨（重采样到测试采样率、幅度归一化）→ 双轨标定音检测
// → 分段 → 逐段指标 → 按严格级别评估 → 组装结果负载。
// 结构性错误（空音轨、非法采样率）立即终止并返回类型化错误；
// 通道级异常（分段数不匹配、退化信号）记录在结果里，正常完成。
func (a *Analyzer) VerifyPair(ref, cur types.AudioTrack) (*types.ResultPayload, error) {
	if err := validateTrack("reference", ref); err != nil {
		return nil, err
	}
	if err := validateTrack("capture", cur); err != nil {
		return nil, err
	}

	// 测试音轨保持原始电平，参考音轨归一化到满幅，
	// RMS/P95 比值因此能反映链路的真实衰减
	ref = Normalize(Resample(ref, cur.SampleRate))
	fs := cur.SampleRate

	detector := NewOnsetDetector(a.cfg.Detection, fs)
	refMarkers := detector.DetectMarkers(ref)
	curMarkers := detector.DetectMarkers(cur)

	refSegments := BuildSegments(ref, refMarkers)
	curSegments := BuildSegments(cur, curMarkers)

	engine := NewMetricsEngine(fs, a.cfg.Detection, a.cfg.Bands)
	refMetrics := segmentMetrics(engine, ref, refSegments)
	curMetrics := segmentMetrics(engine, cur, curSegments)

	evaluator := NewEvaluator(a.cfg.Strictness, a.cfg.Tolerances)
	evaluation := evaluator.Evaluate(refMetrics, curMetrics)

	return BuildPayload(fs, evaluation, refMarkers, curMarkers, refSegments, curSegments, time.Now()), nil
}

// segmentMetrics 逐分段计算指标
func segmentMetrics(engine *MetricsEngine, track types.AudioTrack, segments []types.Segment) []types.ChannelMetrics {
	metrics := make([]types.ChannelMetrics, len(segments))
	for i, seg := range segments {
		metrics[i] = engine.Compute(track.Samples[seg.Start:seg.End])
	}
	return metrics
}

// validateTrack 结构性校验：空音轨或非正采样率直接快速失败
func validateTrack(name string, track types.AudioTrack) error {
	if len(track.Samples) == 0 {
		return &types.MalformedAudioError{Track: name, Reason: "采样数据为空"}
	}
	if track.SampleRate <= 0 {
		return &types.MalformedAudioError{Track: name, Reason: fmt.Sprintf("采样率非正: %d", track.SampleRate)}
	}
	return nil
}
