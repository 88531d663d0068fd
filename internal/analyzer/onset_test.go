package analyzer

import (
	"reflect"
	"testing"

	"audiocinema/internal/types"
)

func newTestDetector() *OnsetDetector {
	return NewOnsetDetector(DefaultConfig().Detection, testFS)
}

func TestDetectMarkers(t *testing.T) {
	track := calibrationTrack()
	markers := newTestDetector().DetectMarkers(track)

	want := []int{2400, 9760}
	if !reflect.DeepEqual(markers, want) {
		t.Fatalf("标记 = %v, 期望 %v", markers, want)
	}
}

func TestDetectMarkersDeterministic(t *testing.T) {
	track := calibrationTrack()
	detector := newTestDetector()

	first := detector.DetectMarkers(track)
	second := detector.DetectMarkers(track)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("相同输入得到不同标记: %v vs %v", first, second)
	}
	for i := 1; i < len(first); i++ {
		if first[i] <= first[i-1] {
			t.Errorf("标记未严格递增: %v", first)
		}
	}
}

func TestDetectMarkersRejectsClick(t *testing.T) {
	// 20ms 的杂音不足最短有效音长，只有 200ms 的音应产生标记
	samples := concat(
		silence(0.5, testFS),
		sine(1000, 0.8, 0.02, testFS),
		silence(0.5, testFS),
		sine(1000, 0.8, 0.2, testFS),
		silence(0.3, testFS),
	)
	track := types.AudioTrack{Samples: samples, SampleRate: testFS}

	markers := newTestDetector().DetectMarkers(track)
	want := []int{8160}
	if !reflect.DeepEqual(markers, want) {
		t.Fatalf("标记 = %v, 期望 %v（杂音应被拒绝）", markers, want)
	}
}

func TestDetectMarkersMergesClose(t *testing.T) {
	// 两个音只隔 100ms，小于最小间隔 500ms，应合并保留最早的
	samples := concat(
		silence(0.5, testFS),
		sine(1000, 0.8, 0.2, testFS),
		silence(0.1, testFS),
		sine(1000, 0.8, 0.2, testFS),
		silence(0.3, testFS),
	)
	track := types.AudioTrack{Samples: samples, SampleRate: testFS}

	markers := newTestDetector().DetectMarkers(track)
	want := []int{4000}
	if !reflect.DeepEqual(markers, want) {
		t.Fatalf("标记 = %v, 期望 %v（过近的检测应合并）", markers, want)
	}
}

func TestDetectMarkersSilence(t *testing.T) {
	track := types.AudioTrack{Samples: silence(1.0, testFS), SampleRate: testFS}
	if markers := newTestDetector().DetectMarkers(track); len(markers) != 0 {
		t.Fatalf("纯静音不应产生标记，得到 %v", markers)
	}
}
