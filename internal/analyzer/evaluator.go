package analyzer

import (
	"fmt"
	"math"
	"strings"

	"audiocinema/internal/types"
)

// CauseSegmentMismatch 参考与测试分段数不一致时的通道失败原因
const CauseSegmentMismatch = "通道分段数不匹配"

// ratioDB 两个非负电平的比值（dB），零值一侧钳位到哨兵
func ratioDB(test, ref float64) float64 {
	switch {
	case test <= 0 && ref <= 0:
		return 0
	case ref <= 0:
		return maxBandDevDB
	case test <= 0:
		return -maxBandDevDB
	}
	return 20 * math.Log10(test/ref)
}

// Evaluator 按配置的严格级别比对参考与测试通道指标。
// 每个通道从 PENDING 出发，终态为 PASSED 或 FAILED。
type Evaluator struct {
	level Strictness
	tol   Tolerance
}

// NewEvaluator 创建评估器，容差表需已通过 Config.Validate
func NewEvaluator(level Strictness, tolerances map[Strictness]Tolerance) *Evaluator {
	return &Evaluator{level: level, tol: tolerances[level]}
}

// Evaluate 逐通道比对指标并给出总结论。
// 只有参考与测试两侧在同一序数上都有分段时才做指标比对；
// 缺失对应分段的通道直接 FAILED 并标明分段数不匹配的原因，
// 绝不静默忽略。总结论是所有通道结论的与；零通道视为 FAILED。
func (e *Evaluator) Evaluate(ref, test []types.ChannelMetrics) types.EvaluationResult {
	count := len(ref)
	if len(test) > count {
		count = len(test)
	}

	result := types.EvaluationResult{Overall: types.StatusFailed}
	if count == 0 {
		return result
	}

	allPassed := true
	for i := 0; i < count; i++ {
		verdict := types.ChannelVerdict{Channel: i + 1, Status: types.StatusPending}
		if i < len(ref) {
			m := ref[i]
			verdict.Ref = &m
		}
		if i < len(test) {
			m := test[i]
			verdict.Test = &m
		}

		if verdict.Ref == nil || verdict.Test == nil {
			verdict.Status = types.StatusFailed
			verdict.Cause = CauseSegmentMismatch
		} else {
			e.judge(&verdict)
		}

		if verdict.Status != types.StatusPassed {
			allPassed = false
		}
		result.Channels = append(result.Channels, verdict)
	}

	if allPassed {
		result.Overall = types.StatusPassed
	}
	return result
}

// judge 单通道指标比对，所有指标都落在容差内才算通过
func (e *Evaluator) judge(v *types.ChannelVerdict) {
	var causes []string

	rmsDev := ratioDB(v.Test.RMS, v.Ref.RMS)
	if math.Abs(rmsDev) > e.tol.RMSDB {
		causes = append(causes, fmt.Sprintf("RMS 偏差 %+.1f dB 超出 ±%.1f dB", rmsDev, e.tol.RMSDB))
	}

	crestDev := crestDeviation(v.Test.Crest, v.Ref.Crest)
	if crestDev > e.tol.Crest {
		causes = append(causes, fmt.Sprintf("峰值因子偏差 %.0f%% 超出 %.0f%%", crestDev*100, e.tol.Crest*100))
	}

	specDev := RelativeSpectrum(v.Test.Bands, v.Ref.Bands)
	v.Test.SpectrumDevDB = specDev
	if math.Abs(specDev) > e.tol.SpectrumDB {
		causes = append(causes, fmt.Sprintf("频谱偏差 %+.1f dB 超出 ±%.1f dB", specDev, e.tol.SpectrumDB))
	}

	p95Dev := ratioDB(v.Test.P95, v.Ref.P95)
	if math.Abs(p95Dev) > e.tol.P95DB {
		causes = append(causes, fmt.Sprintf("P95 偏差 %+.1f dB 超出 ±%.1f dB", p95Dev, e.tol.P95DB))
	}

	if len(causes) > 0 {
		v.Status = types.StatusFailed
		v.Cause = strings.Join(causes, "；")
		return
	}
	v.Status = types.StatusPassed
}

// crestDeviation 峰值因子相对偏差。参考侧静音（crest=0）时，
// 测试侧也静音算无偏差，否则按最大偏差处理。
func crestDeviation(test, ref float64) float64 {
	if ref == 0 {
		if test == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(test-ref) / ref
}
