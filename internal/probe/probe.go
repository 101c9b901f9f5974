package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/metrics"
	"github.com/metal-toolbox/gcesync/internal/model"
)

// Method is the remote access method a host was found to accept connections on.
type Method string

const (
	MethodSSH   Method = "ssh"
	MethodWinRM Method = "winrm"
	MethodNone  Method = "none"
)

var (
	ErrProxy = errors.New("error in probe proxy configuration")
)

//go:generate mockgen -source probe.go -destination=../fixtures/mock_probe.go -package=fixtures

// Classifier determines the remote access method of a host.
type Classifier interface {
	Classify(ctx context.Context, host string) Method
}

// Prober checks the remote access ports of a host with a TCP connect.
type Prober struct {
	dialer    proxy.ContextDialer
	timeout   time.Duration
	sshPort   int
	winrmPort int
	logger    *logrus.Logger
}

// New returns a Prober for the configured ports, dialing through the SOCKS5 proxy when one is configured.
func New(probeOpts *app.ProbeOptions, importOpts *app.ImportOptions, logger *logrus.Logger) (*Prober, error) {
	var dialer proxy.ContextDialer = &net.Dialer{Timeout: probeOpts.Timeout}

	if probeOpts.SocksProxy != "" {
		d, err := proxy.SOCKS5("tcp", probeOpts.SocksProxy, nil, &net.Dialer{Timeout: probeOpts.Timeout})
		if err != nil {
			return nil, errors.Wrap(ErrProxy, err.Error())
		}

		ctxDialer, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, errors.Wrap(ErrProxy, "SOCKS5 dialer does not support contexts")
		}

		dialer = ctxDialer
	}

	return &Prober{
		dialer:    dialer,
		timeout:   probeOpts.Timeout,
		sshPort:   importOpts.SSHPort,
		winrmPort: importOpts.WinRMPort,
		logger:    logger,
	}, nil
}

// PortOpen returns true when a TCP connection to host:port succeeds within the probe timeout.
//
// Any dial error is treated as the port being closed.
func (p *Prober) PortOpen(ctx context.Context, host string, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	address := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := p.dialer.DialContext(ctx, "tcp", address)

	open := err == nil
	metrics.ProbeCounter.WithLabelValues(strconv.Itoa(port), strconv.FormatBool(open)).Inc()

	if !open {
		p.logger.WithFields(logrus.Fields{"address": address, "err": err}).Trace("port closed")
		return false
	}

	conn.Close()

	return true
}

// Classify returns MethodSSH when the SSH port is open, else MethodWinRM when the WinRM port is open,
// else MethodNone.
func (p *Prober) Classify(ctx context.Context, host string) Method {
	if p.PortOpen(ctx, host, p.sshPort) {
		return MethodSSH
	}

	if p.PortOpen(ctx, host, p.winrmPort) {
		return MethodWinRM
	}

	return MethodNone
}

// AccessType returns the remote access type for the method.
func (m Method) AccessType() (model.AccessType, bool) {
	switch m {
	case MethodSSH:
		return model.AccessTypeSSHWithKey, true
	case MethodWinRM:
		return model.AccessTypeWinRMNegotiate, true
	default:
		return "", false
	}
}
