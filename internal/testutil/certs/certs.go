// Package certs 生成测试和 serve 模式使用的自签名证书
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// Pair 自签名证书及其信任池
type Pair struct {
	Certificate tls.Certificate
	Pool        *x509.CertPool
}

// ServerConfig 返回服务端 TLS 配置
func (p *Pair) ServerConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{p.Certificate},
		MinVersion:   tls.VersionTLS12,
	}
}

// ClientConfig 返回信任该证书的客户端 TLS 配置
func (p *Pair) ClientConfig(serverName string) *tls.Config {
	return &tls.Config{
		RootCAs:    p.Pool,
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}
}

// SelfSigned 为 hosts 生成自签名证书
//
// hosts 中的 IP 写入 IPAddresses，其它写入 DNSNames。
// 未指定时使用 localhost 和 127.0.0.1。
func SelfSigned(hosts ...string) (*Pair, error) {
	if len(hosts) == 0 {
		hosts = []string{"localhost", "127.0.0.1"}
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成密钥失败: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject: pkix.Name{
			Organization: []string{"cgconn"},
			CommonName:   hosts[0],
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("创建证书失败: %w", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("解析证书失败: %w", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	return &Pair{
		Certificate: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  key,
			Leaf:        leaf,
		},
		Pool: pool,
	}, nil
}
