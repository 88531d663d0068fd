package types

import (
	"errors"
	"fmt"
)

// ErrInputMissing 参考音轨缺失或不可读，分析开始前即终止
var ErrInputMissing = errors.New("参考音轨缺失或不可读")

// MalformedAudioError 音轨数据无效：空采样、采样率非正等，
// 快速失败并标明出错的音轨。
type MalformedAudioError struct {
	Track  string // "reference" 或 "capture"
	Reason string
}

func (e *MalformedAudioError) Error() string {
	return fmt.Sprintf("音轨数据无效 (%s): %s", e.Track, e.Reason)
}
