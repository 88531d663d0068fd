package analyzer

import "audiocinema/internal/types"

// BuildSegments 按标记把音轨切成连续的通道分段。
// 标记 m1 < m2 < ... < mn 产生分段 [m1,m2), [m2,m3), ..., [mn,len)；
// 无标记时整条音轨作为单一分段。首个分段向前延伸到 0，
// 吸收第一声标定音之前的引导段，保证全部分段恰好铺满 [0, len)。
// 通道号按分段序数从 1 起编，下游以此建立通道对应关系。
// 参考音轨与测试音轨各自独立分段，数量不一致由 Evaluator 上报。
func BuildSegments(track types.AudioTrack, markers []int) []types.Segment {
	n := len(track.Samples)
	if len(markers) == 0 {
		return []types.Segment{{Channel: 1, Start: 0, End: n}}
	}

	segments := make([]types.Segment, 0, len(markers))
	for i, m := range markers {
		start := m
		if i == 0 {
			start = 0
		}
		end := n
		if i+1 < len(markers) {
			end = markers[i+1]
		}
		segments = append(segments, types.Segment{Channel: i + 1, Start: start, End: end})
	}
	return segments
}
