package analyzer

import "fmt"

// Strictness 校验严格级别
type Strictness string

const (
	StrictnessLow    Strictness = "Low"
	StrictnessMedium Strictness = "Medium"
	StrictnessHigh   Strictness = "High"
)

// ParseStrictness 解析严格级别字符串
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(s) {
	case StrictnessLow, StrictnessMedium, StrictnessHigh:
		return Strictness(s), nil
	}
	return "", fmt.Errorf("未知的严格级别: %q（可选 Low/Medium/High）", s)
}

// Band 命名频段，区间 [LowHz, HighHz)
type Band struct {
	Name   string  `json:"name"`
	LowHz  float64 `json:"low_hz"`
	HighHz float64 `json:"high_hz"`
}

// Tolerance 单个严格级别下各项指标的容差
type Tolerance struct {
	RMSDB      float64 `json:"rms_db"`      // RMS 比值容差 (±dB)
	Crest      float64 `json:"crest"`       // 峰值因子相对偏差容差
	SpectrumDB float64 `json:"spectrum_db"` // 相对频谱偏差容差 (±dB)
	P95DB      float64 `json:"p95_db"`      // P95 比值容差 (±dB)
}

// Detection 标定音检测参数
type Detection struct {
	FrameMs   float64 `json:"frame_ms"`    // 分析帧长（毫秒）
	Factor    float64 `json:"factor"`      // 噪声基底倍数 K
	MinToneMs float64 `json:"min_tone_ms"` // 最短有效音长，低于视为杂音
	MinGapMs  float64 `json:"min_gap_ms"`  // 相邻标记最小间隔，过近则合并
}

// Config 校验引擎配置，进程启动时装配一次，按值传入引擎
type Config struct {
	Strictness Strictness
	Detection  Detection
	Bands      []Band
	Tolerances map[Strictness]Tolerance
}

// DefaultBands 默认频段划分，覆盖参考音轨的通带 30-8000 Hz
func DefaultBands() []Band {
	return []Band{
		{Name: "low", LowHz: 30, HighHz: 250},
		{Name: "mid", LowHz: 250, HighHz: 2000},
		{Name: "high", LowHz: 2000, HighHz: 8000},
	}
}

// DefaultTolerances 默认容差表，级别越高容差越窄
func DefaultTolerances() map[Strictness]Tolerance {
	return map[Strictness]Tolerance{
		StrictnessLow:    {RMSDB: 6.0, Crest: 0.50, SpectrumDB: 9.0, P95DB: 6.0},
		StrictnessMedium: {RMSDB: 3.0, Crest: 0.30, SpectrumDB: 6.0, P95DB: 3.0},
		StrictnessHigh:   {RMSDB: 1.5, Crest: 0.15, SpectrumDB: 3.0, P95DB: 1.5},
	}
}

// DefaultConfig 默认引擎配置
func DefaultConfig() Config {
	return Config{
		Strictness: StrictnessMedium,
		Detection: Detection{
			FrameMs:   20,
			Factor:    4.0,
			MinToneMs: 80,
			MinGapMs:  500,
		},
		Bands:      DefaultBands(),
		Tolerances: DefaultTolerances(),
	}
}

// Validate 配置校验：容差表必须逐级收窄（High ⊆ Medium ⊆ Low）
func (c Config) Validate() error {
	if _, err := ParseStrictness(string(c.Strictness)); err != nil {
		return err
	}
	if len(c.Bands) == 0 {
		return fmt.Errorf("频段划分不能为空")
	}
	if c.Detection.FrameMs <= 0 || c.Detection.Factor <= 0 {
		return fmt.Errorf("检测参数无效: frame_ms=%v factor=%v", c.Detection.FrameMs, c.Detection.Factor)
	}

	order := []Strictness{StrictnessLow, StrictnessMedium, StrictnessHigh}
	for _, level := range order {
		if _, ok := c.Tolerances[level]; !ok {
			return fmt.Errorf("缺少 %s 级别的容差配置", level)
		}
	}
	for i := 1; i < len(order); i++ {
		wide, narrow := c.Tolerances[order[i-1]], c.Tolerances[order[i]]
		if narrow.RMSDB > wide.RMSDB || narrow.Crest > wide.Crest ||
			narrow.SpectrumDB > wide.SpectrumDB || narrow.P95DB > wide.P95DB {
			return fmt.Errorf("容差未逐级收窄: %s 宽于 %s", order[i], order[i-1])
		}
	}
	return nil
}
