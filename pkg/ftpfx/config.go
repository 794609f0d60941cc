package ftpfx

import (
	"time"
)

type TLSMode string

const (
	// TLSNone uses a plain-text control and data connection.
	TLSNone TLSMode = "none"
	// TLSExplicit upgrades the connection with AUTH TLS (FTPES).
	TLSExplicit TLSMode = "explicit"
	// TLSImplicit speaks TLS from the first byte (FTPS, usually port 990).
	TLSImplicit TLSMode = "implicit"
)

// Config holds the configuration for FTP connections.
//
// Example:
//
//	cfg := ftpfx.Config{
//	    Timeout: 30 * time.Second,
//	    TLS:     ftpfx.TLSConfig{Mode: ftpfx.TLSExplicit},
//	}
//
//	dialer, err := ftpfx.NewDialer(cfg)
type Config struct {
	// Timeout bounds dialing and every command round trip.
	// Defaults to 30 seconds if zero.
	Timeout time.Duration

	// DisableEPSV falls back to PASV for servers that reject EPSV.
	DisableEPSV bool

	TLS TLSConfig
}

type TLSConfig struct {
	Mode TLSMode

	// CAFile is a PEM bundle used instead of the system roots.
	CAFile string

	// ServerName overrides the name checked against the server certificate.
	ServerName string

	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool
}

func DefaultConfig() Config {
	//nolint:mnd //default values
	return Config{
		Timeout: 30 * time.Second,
		TLS: TLSConfig{
			Mode: TLSNone,
		},
	}
}

// Scheme returns the URL scheme matching the TLS mode.
func (c Config) Scheme() string {
	switch c.TLS.Mode {
	case TLSExplicit:
		return "ftpes"
	case TLSImplicit:
		return "ftps"
	default:
		return "ftp"
	}
}
