package types

import "time"

// AudioTrack 一段完整的音频：采样序列加采样率。
// 流水线各阶段只读不改，任何变换都返回新的 AudioTrack。
type AudioTrack struct {
	Samples    []float64
	SampleRate int
}

// DurationSeconds 音轨时长（秒）
func (t AudioTrack) DurationSeconds() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(len(t.Samples)) / float64(t.SampleRate)
}

// Segment 半开区间 [Start, End) 的通道分段，Channel 从 1 开始编号
type Segment struct {
	Channel int `json:"channel"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// Len 分段包含的采样数
func (s Segment) Len() int {
	return s.End - s.Start
}

// ChannelStatus 通道校验状态
type ChannelStatus string

const (
	StatusPending ChannelStatus = "PENDING"
	StatusPassed  ChannelStatus = "PASSED"
	StatusFailed  ChannelStatus = "FAILED"
)

// ChannelMetrics 单个通道分段的声学指标
type ChannelMetrics struct {
	RMS           float64            `json:"rms"`
	Crest         float64            `json:"crest"` // 峰值因子，静音时为 0
	Bands         map[string]float64 `json:"bands"` // 频段能量占比，合计 1
	SpectrumDevDB float64            `json:"spectrum_dev_db"`
	P95           float64            `json:"p95"`
}

// ChannelVerdict 单个通道的校验结论
type ChannelVerdict struct {
	Channel int             `json:"channel"`
	Status  ChannelStatus   `json:"status"`
	Cause   string          `json:"cause,omitempty"`
	Ref     *ChannelMetrics `json:"ref,omitempty"`
	Test    *ChannelMetrics `json:"test,omitempty"`
}

// EvaluationResult 全部通道的校验结果，Overall 为所有通道结论的与
type EvaluationResult struct {
	Channels []ChannelVerdict `json:"channels"`
	Overall  ChannelStatus    `json:"overall"`
}

// ResultPayload 单次校验的完整结果，构建后不可变，仅用于导出和遥测
type ResultPayload struct {
	FS          int              `json:"fs"`
	CreatedAt   time.Time        `json:"created_at"`
	Evaluation  EvaluationResult `json:"evaluation"`
	RefMarkers  []int            `json:"ref_markers"`
	CurMarkers  []int            `json:"cur_markers"`
	RefSegments []Segment        `json:"ref_segments"`
	CurSegments []Segment        `json:"cur_segments"`
}

// AudioMetadata 音频元数据
type AudioMetadata struct {
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Year     string `json:"year,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// AudioFile 音频文件接口
type AudioFile interface {
	GetFormat() string
	GetSampleRate() int
	GetBitDepth() int
	GetChannels() int
	GetDuration() time.Duration
	GetSamples() ([]float64, error)
	GetMetadata() AudioMetadata
	Close() error
}
