package decoder

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"audiocinema/internal/types"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := 8000
	samples := make([]float64, fs/2)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(fs))
	}
	track := types.AudioTrack{Samples: samples, SampleRate: fs}

	path := filepath.Join(t.TempDir(), "captures", "clip.wav")
	if err := SaveWAV(path, track); err != nil {
		t.Fatalf("SaveWAV: %v", err)
	}

	loaded, channels, err := LoadTrack(path, "capture")
	if err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	if channels != 1 {
		t.Errorf("声道数 = %d, 期望 1", channels)
	}
	if loaded.SampleRate != fs {
		t.Errorf("采样率 = %d, 期望 %d", loaded.SampleRate, fs)
	}
	if len(loaded.Samples) != len(samples) {
		t.Fatalf("采样数 = %d, 期望 %d", len(loaded.Samples), len(samples))
	}
	// 16 位量化误差上界约 1/32767
	for i := range samples {
		if math.Abs(loaded.Samples[i]-samples[i]) > 1e-3 {
			t.Fatalf("采样 %d 偏差过大: %v vs %v", i, loaded.Samples[i], samples[i])
		}
	}
}

func TestLoadTrackMissing(t *testing.T) {
	_, _, err := LoadTrack(filepath.Join(t.TempDir(), "absent.wav"), "reference")
	if !errors.Is(err, types.ErrInputMissing) {
		t.Errorf("缺失文件应返回输入缺失错误, 得到 %v", err)
	}
}

func TestLoadTrackUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.ogg")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := LoadTrack(path, "reference")
	if !errors.Is(err, types.ErrInputMissing) {
		t.Errorf("不支持的格式应归为输入缺失, 得到 %v", err)
	}
}

func TestSaveWAVRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	var malformed *types.MalformedAudioError

	err := SaveWAV(filepath.Join(dir, "empty.wav"), types.AudioTrack{SampleRate: 8000})
	if !errors.As(err, &malformed) {
		t.Errorf("空采样应报数据无效, 得到 %v", err)
	}
	err = SaveWAV(filepath.Join(dir, "rate.wav"), types.AudioTrack{Samples: []float64{0.1}, SampleRate: 0})
	if !errors.As(err, &malformed) {
		t.Errorf("非正采样率应报数据无效, 得到 %v", err)
	}
}
