package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Duration 可以用 JSON 字符串表示的 time.Duration
//
// 接受 "300ms"、"1m30s" 这样的字符串，也接受纳秒整数；null 保持原值。
// 输出总是字符串。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Duration(n)
		return nil
	}

	return fmt.Errorf("duration must be a string (e.g. \"300ms\") or nanoseconds, got %s", data)
}

// MarshalJSON 实现 json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 实现 fmt.Stringer
func (d Duration) String() string {
	return time.Duration(d).String()
}
