package negotiation

import (
	"fmt"
	"slices"

	"github.com/dep2p/go-cgconn/internal/core/frametransport"
	"github.com/dep2p/go-cgconn/internal/core/pending"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/negotiation")

// DataConnector 数据连接建立者
type DataConnector interface {
	// Connect 为 id 发起数据连接，立即返回待建立句柄
	Connect(id string) *pending.PendingConnection
}

// ClientConfig 客户端协商状态
type ClientConfig struct {
	cfg Config

	received        bool
	encodeAlignment uint32
	chunkSize       uint32
	inlined         uint32
	features        []settings.Feature
	pendings        []*pending.PendingConnection
}

// NewClientConfig 创建客户端协商状态
func NewClientConfig(cfg Config) *ClientConfig {
	return &ClientConfig{cfg: cfg}
}

// PrepareClientOutgoingSettings 填充控制连接的本端 Settings
func (c *ClientConfig) PrepareClientOutgoingSettings(s *settings.Settings) {
	s.DataChannel = false
	s.Alignment = c.cfg.Alignment
	s.MaxChunkSize = c.cfg.MaxChunkSize
	s.InlinedPayloadSizeThreshold = c.cfg.InlinedPayloadSizeThreshold
	s.SupportedFeatures = slices.Clone(c.cfg.Features)
}

// ReceiveServerIncomingSettings 校验服务端 Settings 并发起数据连接
//
// 校验失败时不会发起任何数据连接。
func (c *ClientConfig) ReceiveServerIncomingSettings(s settings.Settings, dc DataConnector) error {
	if c.received {
		return ErrAlreadyReceived
	}
	if err := c.validate(&s); err != nil {
		return err
	}
	c.received = true

	c.encodeAlignment = max(s.Alignment, 1)
	c.features = intersect(c.cfg.Features, s.SupportedFeatures)
	if slices.Contains(c.features, settings.FeatureChunking) {
		c.chunkSize = minNonZero(c.cfg.MaxChunkSize, s.MaxChunkSize)
	}
	c.inlined = minNonZero(c.cfg.InlinedPayloadSizeThreshold, s.InlinedPayloadSizeThreshold)

	for _, id := range s.ConnectionIDs {
		c.pendings = append(c.pendings, dc.Connect(id))
	}
	logger.Debug("服务端 Settings 协商完成",
		"dataConnections", len(s.ConnectionIDs),
		"encodeAlignment", c.encodeAlignment,
		"chunkSize", c.chunkSize,
		"features", c.features)
	return nil
}

func (c *ClientConfig) validate(s *settings.Settings) error {
	if s.DataChannel {
		return types.NewError(types.ErrIncompatibleSettings, "server declared data channel on control connection")
	}
	if a := s.Alignment; a != 0 && a&(a-1) != 0 {
		return types.NewError(types.ErrIncompatibleSettings, fmt.Sprintf("alignment %d is not a power of two", a))
	}
	if n := len(s.ConnectionIDs); n > c.cfg.MaxDataConnections {
		return types.NewError(types.ErrIncompatibleSettings,
			fmt.Sprintf("server requested %d data connections, limit is %d", n, c.cfg.MaxDataConnections))
	}
	seen := make(map[string]struct{}, len(s.ConnectionIDs))
	for _, id := range s.ConnectionIDs {
		if id == "" {
			return types.NewError(types.ErrIncompatibleSettings, "empty data connection id")
		}
		if _, dup := seen[id]; dup {
			return types.NewError(types.ErrIncompatibleSettings, fmt.Sprintf("duplicate data connection id %q", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Features 返回协商后的特性
func (c *ClientConfig) Features() []settings.Feature {
	return slices.Clone(c.features)
}

// TakePendingDataEndpoints 取走待建立的数据连接
func (c *ClientConfig) TakePendingDataEndpoints() []*pending.PendingConnection {
	p := c.pendings
	c.pendings = nil
	return p
}

// MakeFrameTransportOptions 生成帧传输选项
func (c *ClientConfig) MakeFrameTransportOptions() (frametransport.Options, error) {
	if !c.received {
		return frametransport.Options{}, ErrNotReceived
	}
	return frametransport.Options{
		EncodeAlignment:             c.encodeAlignment,
		DecodeAlignment:             max(c.cfg.Alignment, 1),
		InlinedPayloadSizeThreshold: c.inlined,
	}, nil
}

// MakeMessageChunker 生成分块参数
func (c *ClientConfig) MakeMessageChunker() (frametransport.MessageChunker, error) {
	if !c.received {
		return frametransport.MessageChunker{}, ErrNotReceived
	}
	return frametransport.MessageChunker{
		MaxChunkSize: c.chunkSize,
		Alignment:    c.encodeAlignment,
	}, nil
}

func intersect(a, b []settings.Feature) []settings.Feature {
	var out []settings.Feature
	for _, f := range a {
		if slices.Contains(b, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func minNonZero(a, b uint32) uint32 {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	default:
		return min(a, b)
	}
}
