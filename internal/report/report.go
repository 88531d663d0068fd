package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"audiocinema/internal/types"
)

// Writer 把校验结果写成报告目录下带时间戳的 JSON 文件，一次一份
type Writer struct {
	dir string
}

// NewWriter 创建报告写入器
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write 导出结果负载，返回写入的文件路径。
// 文件名带 UTC 时间戳，内容为两空格缩进的 UTF-8 JSON，方便人工比对。
func (w *Writer) Write(payload *types.ResultPayload) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化结果失败: %w", err)
	}

	name := fmt.Sprintf("analysis_%s.json", payload.CreatedAt.UTC().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入报告失败: %w", err)
	}
	return path, nil
}
