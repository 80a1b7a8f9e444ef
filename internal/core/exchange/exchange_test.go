package exchange

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/frame"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

func pipe(t *testing.T) (*endpoint.Endpoint, net.Conn) {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() {
		c1.Close()
		c2.Close()
	})
	return endpoint.New(c1, nil), c2
}

// readClientFrame 在对端读出客户端写出的 Settings 帧
func readClientFrame(t *testing.T, conn net.Conn) frame.TcpFrameHeader {
	t.Helper()
	buf := make([]byte, frame.HeaderSize)
	_, err := io.ReadFull(conn, buf)
	require.NoError(t, err)
	h, err := frame.Parse(buf, 0)
	require.NoError(t, err)
	_, err = io.ReadFull(conn, make([]byte, h.PayloadLength))
	require.NoError(t, err)
	return h
}

func writeFrame(t *testing.T, conn net.Conn, tag uint64, s settings.Settings) {
	t.Helper()
	f := frame.SettingsFrame{Settings: s}
	buf, err := f.Serialize(tag)
	require.NoError(t, err)
	_, err = conn.Write(buf)
	require.NoError(t, err)
}

// TestClient_Success 测试交换成功
func TestClient_Success(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)
	assert.Equal(t, StateSendSettings, c.State())

	go func() {
		h := readClientFrame(t, peer)
		writeFrame(t, peer, h.PayloadTag, settings.Settings{ConnectionIDs: []string{"a"}})
	}()

	got, err := c.Run(context.Background(), settings.Settings{Alignment: 64})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.ConnectionIDs)
	assert.Equal(t, StateDone, c.State())

	_, err = c.Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrProtocol)
}

// TestClient_WrongTag 测试标签不匹配
func TestClient_WrongTag(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)

	go func() {
		readClientFrame(t, peer)
		writeFrame(t, peer, 9, settings.Settings{})
	}()

	_, err := c.Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrProtocol)
	assert.Equal(t, "unexpected connection id in frame", err.Error())
	assert.Equal(t, StateFailed, c.State())
}

// TestClient_TruncatedHeader 测试截断的帧头
func TestClient_TruncatedHeader(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)

	go func() {
		readClientFrame(t, peer)
		_, _ = peer.Write([]byte{0, 0, 0, 0, 0})
		peer.Close()
	}()

	_, err := c.Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrFrameParse)
}

// TestClient_MalformedHeader 测试格式错误的帧头
func TestClient_MalformedHeader(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)

	go func() {
		readClientFrame(t, peer)
		bad := make([]byte, frame.HeaderSize)
		bad[0] = 0x33
		_, _ = peer.Write(bad)
	}()

	_, err := c.Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrFrameParse)
}

// TestClient_MalformedPayload 测试格式错误的负载
func TestClient_MalformedPayload(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)

	go func() {
		readClientFrame(t, peer)
		h := frame.TcpFrameHeader{Header: frame.Header{Type: frame.TypeSettings, PayloadLength: 2}}
		buf, _ := h.Serialize()
		_, _ = peer.Write(append(buf, 0x08, 0x80))
	}()

	_, err := c.Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrFrameParse)
	assert.Equal(t, StateFailed, c.State())
}

// TestClient_NotSettings 测试非 Settings 帧
func TestClient_NotSettings(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)

	go func() {
		readClientFrame(t, peer)
		h := frame.TcpFrameHeader{Header: frame.Header{Type: frame.TypeMessage, StreamID: 1}}
		buf, _ := h.Serialize()
		_, _ = peer.Write(buf)
	}()

	_, err := c.Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrProtocol)
}

// TestClient_WriteFailure 测试写入失败
func TestClient_WriteFailure(t *testing.T) {
	ep, peer := pipe(t)
	peer.Close()

	_, err := NewClient(ep, frame.ControlTag, 0).Run(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, types.ErrWrite)
}

// TestClient_Cancelled 测试无响应时取消
func TestClient_Cancelled(t *testing.T) {
	ep, peer := pipe(t)
	c := NewClient(ep, frame.ControlTag, 0)
	go readClientFrame(t, peer)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for c.State() != StateAwaitHeader {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := c.Run(ctx, settings.Settings{})
	assert.ErrorIs(t, err, types.ErrCancelled)
}

// TestRespond 测试服务端交换
func TestRespond(t *testing.T) {
	clientEP, serverConn := pipe(t)
	serverEP := endpoint.New(serverConn, nil)

	done := make(chan error, 1)
	go func() {
		got, tag, err := Respond(context.Background(), serverEP, 0, func(client settings.Settings, tag uint64) (settings.Settings, error) {
			return settings.Settings{DataChannel: client.DataChannel, ConnectionIDs: client.ConnectionIDs}, nil
		})
		if err == nil && (tag != 3 || !got.DataChannel) {
			err = errors.New("unexpected client settings")
		}
		done <- err
	}()

	peer, err := NewClient(clientEP, 3, 0).Run(context.Background(), settings.Settings{
		DataChannel:   true,
		ConnectionIDs: []string{"x"},
	})
	require.NoError(t, err)
	assert.True(t, peer.DataChannel)
	assert.Equal(t, []string{"x"}, peer.ConnectionIDs)
	require.NoError(t, <-done)
}

// TestRespond_Reject 测试服务端拒绝
func TestRespond_Reject(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go writeFrame(t, clientConn, 0, settings.Settings{})

	reject := errors.New("reject")
	_, _, err := Respond(context.Background(), endpoint.New(serverConn, nil), 0,
		func(settings.Settings, uint64) (settings.Settings, error) {
			return settings.Settings{}, reject
		})
	assert.ErrorIs(t, err, reject)
}

// TestState_String 测试状态名称
func TestState_String(t *testing.T) {
	assert.Equal(t, "AwaitPayload", StateAwaitPayload.String())
	assert.Equal(t, "State(9)", State(9).String())
}
