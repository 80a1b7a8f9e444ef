package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNegativeDuration 时长为负
var ErrNegativeDuration = errors.New("config: negative duration")

// Duration 配置文件中的时长
//
// JSON 中写作 "30s"、"2m" 等字符串，或以秒为单位的数字（可带小数）。
// null 保留原值。负数在解析时即被拒绝。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var v time.Duration
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: invalid duration %q: %w", s, err)
		}
		v = parsed
	} else {
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("config: duration must be a string like \"30s\" or seconds: %s", data)
		}
		if secs > math.MaxInt64/float64(time.Second) {
			return fmt.Errorf("config: duration %v seconds out of range", secs)
		}
		v = time.Duration(secs * float64(time.Second))
	}

	if v < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDuration, v)
	}
	*d = Duration(v)
	return nil
}

// MarshalJSON 输出为 "2m0s" 形式的字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
