package vyos

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// DefaultSSHPort is used when SSHConfig.Port is zero.
const DefaultSSHPort = 22

// SSHConfig holds the router login.
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// SSHShell runs commands on the router over one SSH connection, one session
// per command.
type SSHShell struct {
	addr   string
	client *ssh.Client
}

// DialSSH connects to the router with password authentication.
func DialSSH(cfg SSHConfig) (*SSHShell, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultSSHPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	config := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		// TODO: verify against a known_hosts file once the routers publish stable host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.Timeout,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	util.Logger.Warnf("SSH to %s: host key verification disabled (InsecureIgnoreHostKey)", addr)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, util.NewBackendError("ssh", fmt.Errorf("dial %s@%s: %w", cfg.User, addr, err))
	}
	return &SSHShell{addr: addr, client: client}, nil
}

// DialRouter connects over SSH and returns the Executor together with the
// shell, which the caller closes.
func DialRouter(cfg SSHConfig) (*Router, *SSHShell, error) {
	sh, err := DialSSH(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewRouter(sh), sh, nil
}

// Addr returns host:port of the router.
func (s *SSHShell) Addr() string { return s.addr }

// Close closes the SSH connection.
func (s *SSHShell) Close() error {
	return s.client.Close()
}

// Run executes cmd in a new session. If ctx is cancelled the session is
// killed and the partial output is returned with the context error.
func (s *SSHShell) Run(ctx context.Context, cmd string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", util.NewBackendError("ssh", fmt.Errorf("session: %w", err))
	}
	defer session.Close()

	var outputBuf bytes.Buffer
	session.Stdout = &outputBuf
	session.Stderr = &outputBuf

	if err := session.Start(cmd); err != nil {
		return "", util.NewBackendError("ssh", fmt.Errorf("start: %w", err))
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		session.Close()
		<-done
		return outputBuf.String(), util.NewBackendError("ssh", ctx.Err())
	case err := <-done:
		if err != nil {
			return outputBuf.String(), util.NewBackendError("ssh", err)
		}
		return outputBuf.String(), nil
	}
}
