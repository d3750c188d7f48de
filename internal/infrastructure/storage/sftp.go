package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/csvflow/backend/internal/config"
	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

var (
	ErrSFTPConnection     = errors.New("sftp: connection failed")
	ErrSFTPAuthentication = errors.New("sftp: authentication failed")
)

// SFTPStore keeps dataset blobs on a remote host over SFTP. Each
// operation dials a fresh session; blobs are small enough that reads
// are buffered in memory rather than streamed across the connection
// lifetime.
type SFTPStore struct {
	cfg config.SFTPConfig
	log *logger.Logger
}

func NewSFTPStore(cfg config.SFTPConfig, log *logger.Logger) *SFTPStore {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SFTPStore{cfg: cfg, log: log}
}

func (s *SFTPStore) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if s.cfg.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(s.cfg.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key", ErrSFTPAuthentication)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if s.cfg.Password != "" {
		methods = append(methods, ssh.Password(s.cfg.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no credentials provided", ErrSFTPAuthentication)
	}
	return methods, nil
}

func (s *SFTPStore) connect() (*ssh.Client, *sftp.Client, error) {
	methods, err := s.authMethods()
	if err != nil {
		return nil, nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            s.cfg.User,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         s.cfg.Timeout,
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	conn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		s.log.Errorw("sftp_dial_failed", "addr", addr, "error", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrSFTPConnection, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrSFTPConnection, err)
	}
	return conn, client, nil
}

func (s *SFTPStore) fullPath(p string) string {
	return path.Join(s.cfg.BaseDir, p)
}

func (s *SFTPStore) Open(_ context.Context, p string) (io.ReadCloser, error) {
	conn, client, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	defer client.Close()

	f, err := client.Open(s.fullPath(p))
	if err != nil {
		s.log.Warnw("sftp_open_failed", "path", p, "error", err)
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SFTPStore) Write(_ context.Context, p string, r io.Reader) (int64, error) {
	conn, client, err := s.connect()
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	defer client.Close()

	full := s.fullPath(p)
	if err := client.MkdirAll(path.Dir(full)); err != nil {
		return 0, err
	}
	f, err := client.Create(full)
	if err != nil {
		s.log.Errorw("sftp_write_failed", "path", p, "error", err)
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		s.log.Errorw("sftp_write_failed", "path", p, "error", err)
		return n, err
	}
	s.log.Infow("sftp_write_ok", "path", p, "bytes", n)
	return n, nil
}

func (s *SFTPStore) Size(_ context.Context, p string) (int64, error) {
	conn, client, err := s.connect()
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	defer client.Close()

	info, err := client.Stat(s.fullPath(p))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

var _ ports.DatasetStore = (*SFTPStore)(nil)
