package decoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audiocinema/internal/types"
)

// AudioDecoder 音频解码器接口
type AudioDecoder interface {
	Decode(filePath string) (types.AudioFile, error)
	SupportedFormats() []string
}

// DecoderRegistry 解码器注册表，按扩展名路由到对应解码器
type DecoderRegistry struct {
	decoders map[string]AudioDecoder
}

// NewDecoderRegistry 创建解码器注册表，参考音轨支持 WAV 和 FLAC
func NewDecoderRegistry() *DecoderRegistry {
	registry := &DecoderRegistry{
		decoders: make(map[string]AudioDecoder),
	}
	registry.Register(&WAVDecoder{})
	registry.Register(&FLACDecoder{})
	return registry
}

// Register 注册解码器
func (r *DecoderRegistry) Register(decoder AudioDecoder) {
	for _, format := range decoder.SupportedFormats() {
		r.decoders[strings.ToLower(format)] = decoder
	}
}

// GetDecoder 根据文件扩展名获取解码器
func (r *DecoderRegistry) GetDecoder(filePath string) (AudioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return nil, fmt.Errorf("无法确定文件格式: %s", filePath)
	}
	ext = ext[1:]

	decoder, exists := r.decoders[ext]
	if !exists {
		return nil, fmt.Errorf("不支持的音频格式: %s", ext)
	}
	return decoder, nil
}

// DecodeFile 解码音频文件
func (r *DecoderRegistry) DecodeFile(filePath string) (types.AudioFile, error) {
	decoder, err := r.GetDecoder(filePath)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(filePath)
}

// LoadTrack 从文件加载音轨：文件缺失按 ErrInputMissing 终止，
// 数据无效按 MalformedAudioError 终止并标明 label 指定的音轨。
// 多声道数据保持交织，由调用方混为单声道后再进入引擎。
func LoadTrack(filePath, label string) (track types.AudioTrack, channels int, err error) {
	if _, statErr := os.Stat(filePath); statErr != nil {
		return types.AudioTrack{}, 0, fmt.Errorf("%w: %s", types.ErrInputMissing, filePath)
	}

	registry := NewDecoderRegistry()
	file, err := registry.DecodeFile(filePath)
	if err != nil {
		return types.AudioTrack{}, 0, fmt.Errorf("%w: %v", types.ErrInputMissing, err)
	}
	defer file.Close()

	samples, err := file.GetSamples()
	if err != nil {
		return types.AudioTrack{}, 0, &types.MalformedAudioError{Track: label, Reason: err.Error()}
	}
	if len(samples) == 0 {
		return types.AudioTrack{}, 0, &types.MalformedAudioError{Track: label, Reason: "采样数据为空"}
	}
	if file.GetSampleRate() <= 0 {
		return types.AudioTrack{}, 0, &types.MalformedAudioError{Track: label, Reason: "采样率非正"}
	}

	return types.AudioTrack{Samples: samples, SampleRate: file.GetSampleRate()}, file.GetChannels(), nil
}

// LoadReference 加载参考音轨
func LoadReference(filePath string) (types.AudioTrack, int, error) {
	return LoadTrack(filePath, "reference")
}
