package tcp

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
)

// ============================================================================
//                              Address 实现
// ============================================================================

// Address TCP 地址
type Address struct {
	network string // "tcp4" 或 "tcp6"
	host    string // IP 地址
	port    int
}

// NewAddressFromNetAddr 从 net.Addr 创建地址
func NewAddressFromNetAddr(addr net.Addr) (*Address, error) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("%w: not a TCP address: %T", ErrInvalidAddress, addr)
	}
	network := "tcp6"
	if tcpAddr.IP.To4() != nil {
		network = "tcp4"
	}
	return &Address{network: network, host: tcpAddr.IP.String(), port: tcpAddr.Port}, nil
}

// 多地址格式
var (
	ip4TCPPattern = regexp.MustCompile(`^/ip4/([^/]+)/tcp/(\d+)$`)
	ip6TCPPattern = regexp.MustCompile(`^/ip6/([^/]+)/tcp/(\d+)$`)
	dnsTCPPattern = regexp.MustCompile(`^/dns[46]?/([^/]+)/tcp/(\d+)$`)
)

// ParseAddress 解析地址字符串
func ParseAddress(addr string) (*Address, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	var host, port string
	switch {
	case ip4TCPPattern.MatchString(addr):
		m := ip4TCPPattern.FindStringSubmatch(addr)
		host, port = m[1], m[2]
	case ip6TCPPattern.MatchString(addr):
		m := ip6TCPPattern.FindStringSubmatch(addr)
		host, port = m[1], m[2]
	case dnsTCPPattern.MatchString(addr):
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedAddress, addr)
	default:
		h, p, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, addr, err)
		}
		host, port = h, p
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedAddress, addr)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return nil, fmt.Errorf("%w: bad port in %s", ErrInvalidAddress, addr)
	}

	network := "tcp6"
	if ip.To4() != nil {
		network = "tcp4"
	}
	return &Address{network: network, host: ip.String(), port: n}, nil
}

// Network 返回网络类型
func (a *Address) Network() string {
	return a.network
}

// Host 返回 IP 地址
func (a *Address) Host() string {
	return a.host
}

// Port 返回端口号
func (a *Address) Port() int {
	return a.port
}

// String 返回多地址格式字符串
func (a *Address) String() string {
	if a.network == "tcp6" {
		return fmt.Sprintf("/ip6/%s/tcp/%d", a.host, a.port)
	}
	return fmt.Sprintf("/ip4/%s/tcp/%d", a.host, a.port)
}

// NetDialString 返回 net.Dial 使用的地址字符串
func (a *Address) NetDialString() string {
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

// IsLoopback 检查是否为回环地址
func (a *Address) IsLoopback() bool {
	ip := net.ParseIP(a.host)
	return ip != nil && ip.IsLoopback()
}
