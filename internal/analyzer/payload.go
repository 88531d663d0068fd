package analyzer

import (
	"fmt"
	"time"

	"audiocinema/internal/types"
)

// BuildPayload 组装单次校验的完整结果负载
func BuildPayload(fs int, evaluation types.EvaluationResult,
	refMarkers, curMarkers []int,
	refSegments, curSegments []types.Segment, createdAt time.Time) *types.ResultPayload {

	// 空标记序列化成 [] 而不是 null，下游消费方好解析
	if refMarkers == nil {
		refMarkers = []int{}
	}
	if curMarkers == nil {
		curMarkers = []int{}
	}

	return &types.ResultPayload{
		FS:          fs,
		CreatedAt:   createdAt,
		Evaluation:  evaluation,
		RefMarkers:  refMarkers,
		CurMarkers:  curMarkers,
		RefSegments: refSegments,
		CurSegments: curSegments,
	}
}

// Flatten 导出逐通道状态的扁平视图，供解析不了嵌套结构的
// 简单消费方（如 ThingsBoard 看板组件）使用。
// 键名保持 canalN_estado 的历史线上格式，既有看板不用改。
// 该视图只是 EvaluationResult 的投影，绝不是第二份事实来源。
func Flatten(payload *types.ResultPayload) map[string]string {
	flat := make(map[string]string, len(payload.Evaluation.Channels))
	for _, ch := range payload.Evaluation.Channels {
		flat[fmt.Sprintf("canal%d_estado", ch.Channel)] = string(ch.Status)
	}
	return flat
}
