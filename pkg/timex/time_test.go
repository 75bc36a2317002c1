package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}

	// Verify it's not returning time.Now() by waiting a bit
	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_MarshalJSON(t *testing.T) {
	tt := Time(time.Date(2024, 1, 1, 12, 30, 45, 0, time.Local))
	b, err := tt.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	if string(b) != `"2024-01-01 12:30:45"` {
		t.Errorf("MarshalJSON = %s, want %q", b, "2024-01-01 12:30:45")
	}

	// Zero time serializes as empty string
	// 零值时间序列化为空字符串
	var zero Time
	b, err = zero.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	if string(b) != `""` {
		t.Errorf("MarshalJSON zero = %s, want \"\"", b)
	}
}

func TestTime_UnmarshalJSON(t *testing.T) {
	var tt Time
	if err := tt.UnmarshalJSON([]byte(`"2024-01-01 12:30:45"`)); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	want := time.Date(2024, 1, 1, 12, 30, 45, 0, time.Local)
	if !tt.Time().Equal(want) {
		t.Errorf("UnmarshalJSON = %v, want %v", tt.Time(), want)
	}

	if err := tt.UnmarshalJSON([]byte(`""`)); err != nil {
		t.Fatalf("UnmarshalJSON empty error: %v", err)
	}
	if !tt.IsZero() {
		t.Errorf("UnmarshalJSON empty should yield zero time")
	}
}
