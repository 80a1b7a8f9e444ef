package types

import (
	"fmt"
	"sort"
	"strconv"
)

// 常用配置键
const (
	// ArgResolvedAddress 已解析的目标地址（host:port）
	ArgResolvedAddress = "cgconn.resolved_address"
	// ArgPeerAddress 实际连接到的对端地址
	ArgPeerAddress = "cgconn.peer_address"
	// ArgProtocol multistream 协商得到的协议
	ArgProtocol = "cgconn.protocol"
	// ArgSecurity 安全协议（"tls" 或 "insecure"）
	ArgSecurity = "cgconn.security"
	// ArgTLSVersion 协商得到的 TLS 版本
	ArgTLSVersion = "cgconn.tls_version"
	// ArgTLSServerName TLS ServerName
	ArgTLSServerName = "cgconn.tls_server_name"
)

// Args 不可变的通道配置
//
// Set 返回新的副本，原值不变，可以在多个 goroutine 间安全共享。
type Args struct {
	values map[string]any
}

// NewArgs 创建空配置
func NewArgs() Args {
	return Args{}
}

// Set 返回设置了 key 的新配置
func (a Args) Set(key string, value any) Args {
	values := make(map[string]any, len(a.values)+1)
	for k, v := range a.values {
		values[k] = v
	}
	values[key] = value
	return Args{values: values}
}

// Get 获取配置值
func (a Args) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// GetString 获取字符串配置值
func (a Args) GetString(key string) (string, bool) {
	v, ok := a.values[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	default:
		return "", false
	}
}

// StringOf 获取字符串配置值，不存在时返回空串
func (a Args) StringOf(key string) string {
	s, _ := a.GetString(key)
	return s
}

// GetInt 获取整数配置值
func (a Args) GetInt(key string) (int, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// GetBool 获取布尔配置值
func (a Args) GetBool(key string) (bool, bool) {
	v, ok := a.values[key].(bool)
	return v, ok
}

// Len 返回配置项数量
func (a Args) Len() int {
	return len(a.values)
}

// Keys 返回排序后的配置键
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String 返回配置的字符串表示
func (a Args) String() string {
	s := "{"
	for i, k := range a.Keys() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%v", k, a.values[k])
	}
	return s + "}"
}
