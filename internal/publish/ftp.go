// Package publish uploads rendered charts to an FTP server.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrNotConfigured = errors.New("ftp address not configured")
	ErrInvalidName   = errors.New("invalid file name")
)

// File is one named upload.
type File struct {
	Name string
	Data []byte
}

type conn interface {
	Login(user, password string) error
	ChangeDir(dir string) error
	Stor(name string, r io.Reader) error
	Quit() error
}

// FTP uploads files into Dir on the server at Addr. An empty User logs in
// anonymously.
type FTP struct {
	Addr     string
	User     string
	Password string
	Dir      string
	Timeout  time.Duration

	dial func(ctx context.Context, addr string, timeout time.Duration) (conn, error)
}

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (conn, error) {
	return ftp.Dial(addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
}

func (f *FTP) Upload(ctx context.Context, name string, data []byte) error {
	return f.UploadAll(ctx, []File{{Name: name, Data: data}})
}

// UploadAll stores every file over a single connection, stopping at the
// first failure.
func (f *FTP) UploadAll(ctx context.Context, files []File) error {
	if f.Addr == "" {
		return ErrNotConfigured
	}
	for _, file := range files {
		if err := checkName(file.Name); err != nil {
			return err
		}
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	dial := f.dial
	if dial == nil {
		dial = dialFTP
	}

	c, err := dial(ctx, f.Addr, timeout)
	if err != nil {
		return fmt.Errorf("ftp dial: %w", err)
	}
	defer c.Quit()

	user, password := f.User, f.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err := c.Login(user, password); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}
	if f.Dir != "" {
		if err := c.ChangeDir(f.Dir); err != nil {
			return fmt.Errorf("ftp cwd %s: %w", f.Dir, err)
		}
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Stor(file.Name, bytes.NewReader(file.Data)); err != nil {
			return fmt.Errorf("ftp stor %s: %w", file.Name, err)
		}
		log.Printf("publish: stored %s (%d bytes) on %s", path.Join(f.Dir, file.Name), len(file.Data), f.Addr)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\\r\n") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
