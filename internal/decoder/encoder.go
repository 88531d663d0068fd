package decoder

import (
	"fmt"
	"os"
	"path/filepath"

	"audiocinema/internal/types"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SaveWAV 把单声道音轨写成 16 位 PCM WAV 文件，
// 用于归档采集片段和保存新录制的参考音轨。
func SaveWAV(filePath string, track types.AudioTrack) error {
	if len(track.Samples) == 0 {
		return &types.MalformedAudioError{Track: filePath, Reason: "采样数据为空"}
	}
	if track.SampleRate <= 0 {
		return &types.MalformedAudioError{Track: filePath, Reason: fmt.Sprintf("采样率非正: %d", track.SampleRate)}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("创建WAV文件失败: %w", err)
	}

	data := make([]int, len(track.Samples))
	for i, s := range track.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	encoder := wav.NewEncoder(file, track.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: track.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("写入WAV采样失败: %w", err)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return fmt.Errorf("收尾WAV文件失败: %w", err)
	}
	return file.Close()
}
