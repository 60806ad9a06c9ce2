package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTP stores objects on a remote host via SFTP. It cannot issue
// signed URLs; the streaming endpoint serves its bytes by proxying
// ranged reads directly.
type SFTP struct {
	host     string // host:port
	user     string
	password string
	baseDir  string
}

// NewSFTP creates an SFTP-backed store. Connections are dialed per
// operation; object store traffic is dominated by bulk transfers, not
// round trips.
func NewSFTP(host, user, password, baseDir string) *SFTP {
	return &SFTP{host: host, user: user, password: password, baseDir: baseDir}
}

func (s *SFTP) connect() (*sftp.Client, *ssh.Client, error) {
	cfg := &ssh.ClientConfig{
		User:            s.user,
		Auth:            []ssh.AuthMethod{ssh.Password(s.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}
	conn, err := ssh.Dial("tcp", s.host, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("ssh dial %s: %w", s.host, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("sftp client: %w", err)
	}
	return client, conn, nil
}

func (s *SFTP) remotePath(key string) string {
	return path.Join(s.baseDir, key)
}

func (s *SFTP) Upload(ctx context.Context, localPath, key string) error {
	client, conn, err := s.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	remote := s.remotePath(key)
	if err := client.MkdirAll(path.Dir(remote)); err != nil {
		return fmt.Errorf("mkdir %s: %w", path.Dir(remote), err)
	}
	dst, err := client.Create(remote)
	if err != nil {
		return fmt.Errorf("create %s: %w", remote, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	return nil
}

func (s *SFTP) Download(ctx context.Context, key, localPath string) error {
	client, conn, err := s.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	src, err := client.Open(s.remotePath(key))
	if err != nil {
		return mapSFTPErr(err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	return nil
}

func (s *SFTP) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SFTP) Stat(ctx context.Context, key string) (Info, error) {
	client, conn, err := s.connect()
	if err != nil {
		return Info{}, err
	}
	defer conn.Close()
	defer client.Close()

	fi, err := client.Stat(s.remotePath(key))
	if err != nil {
		return Info{}, mapSFTPErr(err)
	}
	return Info{Size: fi.Size(), ContentType: contentTypeFor(key)}, nil
}

func (s *SFTP) Delete(ctx context.Context, key string) error {
	client, conn, err := s.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	if err := client.Remove(s.remotePath(key)); err != nil {
		return mapSFTPErr(err)
	}
	return nil
}

func (s *SFTP) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrSignedURLUnsupported
}

func (s *SFTP) RangedRead(ctx context.Context, key string, start, end int64) (io.ReadCloser, error) {
	client, conn, err := s.connect()
	if err != nil {
		return nil, err
	}

	file, err := client.Open(s.remotePath(key))
	if err != nil {
		client.Close()
		conn.Close()
		return nil, mapSFTPErr(err)
	}
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		file.Close()
		client.Close()
		conn.Close()
		return nil, fmt.Errorf("seek %d: %w", start, err)
	}
	return &sftpRangeReader{
		Reader: io.LimitReader(file, end-start+1),
		file:   file,
		client: client,
		conn:   conn,
	}, nil
}

// sftpRangeReader keeps the connection alive for the duration of the
// read and tears everything down on Close.
type sftpRangeReader struct {
	io.Reader
	file   *sftp.File
	client *sftp.Client
	conn   *ssh.Client
}

func (r *sftpRangeReader) Close() error {
	r.file.Close()
	r.client.Close()
	return r.conn.Close()
}

func mapSFTPErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
