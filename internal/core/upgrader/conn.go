package upgrader

import (
	"net"
	"time"
)

// aLongTimeAgo 用于让阻塞的 I/O 立即返回
var aLongTimeAgo = time.Unix(1, 0)

// prefixConn 先返回预读字节再读底层连接
type prefixConn struct {
	net.Conn
	buf []byte
}

// withPrefix 包装连接，buf 为空时原样返回
func withPrefix(conn net.Conn, buf []byte) net.Conn {
	if len(buf) == 0 {
		return conn
	}
	return &prefixConn{Conn: conn, buf: append([]byte(nil), buf...)}
}

// Read 实现 io.Reader
func (c *prefixConn) Read(p []byte) (int, error) {
	if len(c.buf) > 0 {
		n := copy(p, c.buf)
		c.buf = c.buf[n:]
		return n, nil
	}
	return c.Conn.Read(p)
}

// remaining 返回尚未消费的预读字节
func remaining(conn net.Conn) []byte {
	if pc, ok := conn.(*prefixConn); ok && len(pc.buf) > 0 {
		return pc.buf
	}
	return nil
}
