package ftpfx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/jlaffaye/ftp"
)

// Dialer opens FTP control connections with a fixed configuration.
type Dialer struct {
	cfg       Config
	tlsConfig *tls.Config
}

// NewDialer creates a new Dialer with the given configuration.
func NewDialer(cfg Config) (*Dialer, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.TLS.Mode == "" {
		cfg.TLS.Mode = TLSNone
	}

	d := &Dialer{cfg: cfg}

	switch cfg.TLS.Mode {
	case TLSNone:
	case TLSExplicit, TLSImplicit:
		tlsConfig, err := newTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		d.tlsConfig = tlsConfig
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidTLSConfig, cfg.TLS.Mode)
	}

	return d, nil
}

func (d *Dialer) Config() Config {
	return d.cfg
}

// Dial connects to addr (host:port). Login is left to the caller.
func (d *Dialer) Dial(ctx context.Context, addr string) (*Conn, error) {
	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(d.cfg.Timeout),
		ftp.DialWithDisabledEPSV(d.cfg.DisableEPSV),
	}

	if d.tlsConfig != nil {
		tlsConfig := d.tlsConfig.Clone()
		if tlsConfig.ServerName == "" {
			if host, _, err := net.SplitHostPort(addr); err == nil {
				tlsConfig.ServerName = host
			}
		}

		if d.cfg.TLS.Mode == TLSImplicit {
			opts = append(opts, ftp.DialWithTLS(tlsConfig))
		} else {
			opts = append(opts, ftp.DialWithExplicitTLS(tlsConfig))
		}
	}

	sc, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDialFailed, err)
	}

	return &Conn{ServerConn: sc}, nil
}

// Conn wraps ftp.ServerConn so downloads surface as a plain io.ReadCloser.
type Conn struct {
	*ftp.ServerConn
}

func (c *Conn) Retr(path string) (io.ReadCloser, error) {
	resp, err := c.ServerConn.Retr(path)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func newTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec //opt-in for self-signed hosts
	}

	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CA certificate: %w", ErrInvalidTLSConfig, err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("%w: failed to parse CA certificate", ErrInvalidTLSConfig)
		}
		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}
