// Package cgserver 实现进程内的 Settings 服务端
//
// 用于测试和 CLI 的 serve 模式：接受 TCP 连接，按配置执行 multistream 协商和 TLS 握手，
// 然后回复 Settings 帧。控制连接回复中携带要求客户端建立的数据连接 ID。
// 可以配置异常行为（截断帧头、错误标签、不回复、拒绝指定数据连接）。
package cgserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/exchange"
	"github.com/dep2p/go-cgconn/internal/core/frame"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/internal/core/transport/tcp"
	"github.com/dep2p/go-cgconn/internal/core/upgrader"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
)

var logger = log.Logger("testutil/cgserver")

// Behavior 控制连接的回复方式
type Behavior int

const (
	// Normal 正常回复
	Normal Behavior = iota
	// TruncatedHeader 只写出半个帧头后关闭连接
	TruncatedHeader
	// WrongTag 回复的帧使用非零标签
	WrongTag
	// Silent 读取 Settings 后不回复
	Silent
	// MalformedPayload 回复无法解码的负载
	MalformedPayload
)

// Config 服务端配置
type Config struct {
	// Protocols multistream 协议列表，为空时不协商
	Protocols []string

	// TLS 服务端 TLS 配置，nil 时不加密
	TLS *tls.Config

	// Settings 控制连接回复的基础 Settings
	Settings settings.Settings

	// DataIDs 要求客户端建立的数据连接 ID
	DataIDs []string

	// RejectData 收到这些 ID 的数据连接时直接关闭
	RejectData []string

	// Behavior 控制连接回复方式
	Behavior Behavior

	// MaxPayloadSize 单帧负载上限，0 使用默认值
	MaxPayloadSize uint32
}

// Event 服务端收到的一次 Settings 交换
type Event struct {
	Tag    uint64
	Client settings.Settings
	Err    error
}

// Server Settings 服务端
type Server struct {
	cfg      Config
	tr       *tcp.Transport
	listener *tcp.Listener

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	data  map[string]*endpoint.Endpoint
}

// Start 在 addr 上启动服务端
func Start(addr string, cfg Config) (*Server, error) {
	if cfg.MaxPayloadSize == 0 {
		cfg.MaxPayloadSize = frame.DefaultMaxPayloadSize
	}
	tr := tcp.NewTransport(tcp.DefaultConfig())
	l, err := tr.Listen(addr)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		tr:       tr,
		listener: l,
		events:   make(chan Event, 64),
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[net.Conn]struct{}),
		data:     make(map[string]*endpoint.Endpoint),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr 返回监听地址（host:port）
func (s *Server) Addr() string {
	return s.listener.Addr().NetDialString()
}

// Events 返回 Settings 交换事件
func (s *Server) Events() <-chan Event {
	return s.events
}

// DataConnection 返回已建立的数据连接
func (s *Server) DataConnection(id string) (*endpoint.Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ep, ok := s.data[id]
	return ep, ok
}

// Close 关闭服务端和所有连接
func (s *Server) Close() error {
	s.cancel()
	err := s.tr.Close()
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && s.ctx.Err() == nil {
				logger.Debug("接受连接失败", "err", err)
			}
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	if len(s.cfg.Protocols) > 0 {
		if _, err := upgrader.NegotiateServer(conn, s.cfg.Protocols); err != nil {
			logger.Debug("multistream 协商失败", "err", err)
			_ = conn.Close()
			return
		}
	}
	if s.cfg.TLS != nil {
		tc := tls.Server(conn, s.cfg.TLS)
		if err := tc.HandshakeContext(s.ctx); err != nil {
			logger.Debug("TLS 握手失败", "err", err)
			_ = conn.Close()
			return
		}
		s.track(conn, tc)
		conn = tc
	}

	ep := endpoint.New(conn, nil)
	keep := false
	client, tag, err := exchange.Respond(s.ctx, ep, s.cfg.MaxPayloadSize, func(client settings.Settings, tag uint64) (settings.Settings, error) {
		if tag == frame.ControlTag {
			return s.controlReply(ep, client)
		}
		return s.dataReply(client)
	})
	s.emit(Event{Tag: tag, Client: client, Err: err})

	if err == nil && tag != frame.ControlTag && len(client.ConnectionIDs) == 1 {
		s.mu.Lock()
		s.data[client.ConnectionIDs[0]] = ep
		s.mu.Unlock()
		keep = true
	}
	if errors.Is(err, errSilent) {
		<-s.ctx.Done()
	}
	if err == nil && tag == frame.ControlTag {
		keep = true
	}
	if !keep {
		_ = ep.Close()
	}
}

var (
	errSilent   = errors.New("cgserver: silent")
	errRejected = errors.New("cgserver: data connection rejected")
	errInjected = errors.New("cgserver: injected reply")
)

func (s *Server) controlReply(ep *endpoint.Endpoint, client settings.Settings) (settings.Settings, error) {
	reply := s.cfg.Settings.Clone()
	reply.DataChannel = false
	reply.ConnectionIDs = append([]string(nil), s.cfg.DataIDs...)

	switch s.cfg.Behavior {
	case Silent:
		return settings.Settings{}, errSilent
	case TruncatedHeader:
		f := frame.SettingsFrame{Settings: reply}
		buf, err := f.Serialize(frame.ControlTag)
		if err != nil {
			return settings.Settings{}, err
		}
		_ = ep.Write(s.ctx, buf[:frame.HeaderSize/2])
		return settings.Settings{}, errInjected
	case WrongTag:
		f := frame.SettingsFrame{Settings: reply}
		buf, err := f.Serialize(7)
		if err != nil {
			return settings.Settings{}, err
		}
		_ = ep.Write(s.ctx, buf)
		return settings.Settings{}, errInjected
	case MalformedPayload:
		h := frame.TcpFrameHeader{
			Header: frame.Header{Type: frame.TypeSettings, PayloadLength: 2},
		}
		buf, err := h.Serialize()
		if err != nil {
			return settings.Settings{}, err
		}
		_ = ep.Write(s.ctx, append(buf, 0xff, 0xff))
		return settings.Settings{}, errInjected
	}
	return reply, nil
}

func (s *Server) dataReply(client settings.Settings) (settings.Settings, error) {
	if !client.DataChannel || len(client.ConnectionIDs) != 1 {
		return settings.Settings{}, errRejected
	}
	id := client.ConnectionIDs[0]
	for _, r := range s.cfg.RejectData {
		if r == id {
			return settings.Settings{}, errRejected
		}
	}
	return settings.Settings{DataChannel: true, ConnectionIDs: []string{id}}, nil
}

func (s *Server) track(old, conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, old)
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
