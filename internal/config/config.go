package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"audiocinema/internal/analyzer"
)

// AudioConfig 采集参数
type AudioConfig struct {
	FS                 int     `json:"fs"`
	DurationS          float64 `json:"duration_s"`
	PreferredInputName string  `json:"preferred_input_name"`
}

// ReferenceConfig 参考音轨参数
type ReferenceConfig struct {
	WAVPath      string  `json:"wav_path"`
	CutoffLowHz  float64 `json:"cutoff_low_hz"`
	CutoffHighHz float64 `json:"cutoff_high_hz"`
}

// EvaluationConfig 评估参数：严格级别、频段划分与逐级容差表
type EvaluationConfig struct {
	Level      string                        `json:"level"`
	Bands      []analyzer.Band               `json:"bands"`
	Tolerances map[string]analyzer.Tolerance `json:"tolerances"`
}

// ThingsBoardConfig 遥测参数
type ThingsBoardConfig struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	UseTLS bool   `json:"use_tls"`
	Token  string `json:"token"`
}

// PathsConfig 数据落盘位置
type PathsConfig struct {
	ReportsDir  string `json:"reports_dir"`
	CapturesDir string `json:"captures_dir"`
}

// Config 应用配置。启动时装载一次，之后以明确的值传给各组件，
// 引擎内部不做任何路径式的动态取值。
type Config struct {
	Audio       AudioConfig        `json:"audio"`
	Reference   ReferenceConfig    `json:"reference"`
	Detection   analyzer.Detection `json:"detection"`
	Evaluation  EvaluationConfig   `json:"evaluation"`
	ThingsBoard ThingsBoardConfig  `json:"thingsboard"`
	Paths       PathsConfig        `json:"paths"`
	OnCalendar  string             `json:"oncalendar"` // systemd 定时表达式
}

// Default 默认配置
func Default() *Config {
	engine := analyzer.DefaultConfig()
	tolerances := make(map[string]analyzer.Tolerance, len(engine.Tolerances))
	for level, tol := range engine.Tolerances {
		tolerances[string(level)] = tol
	}

	return &Config{
		Audio: AudioConfig{
			FS:        48000,
			DurationS: 10.0,
		},
		Reference: ReferenceConfig{
			WAVPath:      filepath.Join("assets", "reference_master.wav"),
			CutoffLowHz:  30,
			CutoffHighHz: 8000,
		},
		Detection: engine.Detection,
		Evaluation: EvaluationConfig{
			Level:      string(engine.Strictness),
			Bands:      engine.Bands,
			Tolerances: tolerances,
		},
		ThingsBoard: ThingsBoardConfig{
			Host: "thingsboard.cloud",
			Port: 1883,
		},
		Paths: PathsConfig{
			ReportsDir:  filepath.Join("data", "reports"),
			CapturesDir: filepath.Join("data", "captures"),
		},
		OnCalendar: "*-*-* 02:00:00",
	}
}

// Load 从 JSON 文件装载配置。文件不存在时返回默认配置，
// 文件损坏则报错而不是静默吞掉。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return cfg, nil
}

// Save 把配置写回 JSON 文件
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// EngineConfig 映射为引擎配置
func (c *Config) EngineConfig() analyzer.Config {
	tolerances := make(map[analyzer.Strictness]analyzer.Tolerance, len(c.Evaluation.Tolerances))
	for level, tol := range c.Evaluation.Tolerances {
		tolerances[analyzer.Strictness(level)] = tol
	}
	return analyzer.Config{
		Strictness: analyzer.Strictness(c.Evaluation.Level),
		Detection:  c.Detection,
		Bands:      c.Evaluation.Bands,
		Tolerances: tolerances,
	}
}
