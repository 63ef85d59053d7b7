package deploy

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// RemoteScheme prefixes deploy paths that live on an SFTP server.
const RemoteScheme = "sftp://"

// SSHOptions authenticates an SFTP target.
type SSHOptions struct {
	// KeyFile is a private key path. When neither KeyFile nor Password is
	// set, the usual ~/.ssh keys are tried.
	KeyFile  string
	Password string
	// KnownHostsFile verifies the host key. Empty accepts any key.
	KnownHostsFile string
	Timeout        time.Duration
}

// Remote is a parsed sftp://user@host[:port]/path deploy location.
type Remote struct {
	User string
	Addr string
	Path string
}

// IsRemote reports whether deployPath names an SFTP target.
func IsRemote(deployPath string) bool {
	return strings.HasPrefix(deployPath, RemoteScheme)
}

// ParseRemote parses an sftp:// deploy path. The port defaults to 22 and
// the user to $USER.
func ParseRemote(raw string) (Remote, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Remote{}, fmt.Errorf("parsing deploy target: %w", err)
	}
	if u.Scheme != "sftp" {
		return Remote{}, fmt.Errorf("deploy target %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Hostname() == "" {
		return Remote{}, fmt.Errorf("deploy target %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		return Remote{}, fmt.Errorf("deploy target %q: missing directory", raw)
	}

	port := u.Port()
	if port == "" {
		port = "22"
	}
	user := u.User.Username()
	if user == "" {
		user = os.Getenv("USER")
	}
	return Remote{
		User: user,
		Addr: net.JoinHostPort(u.Hostname(), port),
		Path: path.Clean(u.Path),
	}, nil
}

// SFTPTarget deploys onto an SFTP server.
type SFTPTarget struct {
	client *sftp.Client
	conn   *ssh.Client
}

// newSFTPTarget wraps an established SFTP session. Close closes client
// and conn, when set.
func newSFTPTarget(client *sftp.Client, conn *ssh.Client) *SFTPTarget {
	return &SFTPTarget{client: client, conn: conn}
}

// DialSFTP connects to r over SSH and opens an SFTP session.
func DialSFTP(ctx context.Context, r Remote, opts SSHOptions) (*SFTPTarget, error) {
	auth, err := authMethods(opts)
	if err != nil {
		return nil, err
	}
	hostKey, err := hostKeyCallback(opts.KnownHostsFile)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	config := &ssh.ClientConfig{
		User:            r.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}

	d := net.Dialer{Timeout: timeout}
	nc, err := d.DialContext(ctx, "tcp", r.Addr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", r.Addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(nc, r.Addr, config)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", r.Addr, err)
	}
	conn := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("starting sftp session: %w", err)
	}
	return newSFTPTarget(client, conn), nil
}

func (t *SFTPTarget) MkdirAll(dir string) error { return t.client.MkdirAll(dir) }

func (t *SFTPTarget) Create(name string, perm os.FileMode) (io.WriteCloser, error) {
	f, err := t.client.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return nil, err
	}
	return &remoteFile{File: f, client: t.client, perm: perm}, nil
}

func (t *SFTPTarget) Join(elem ...string) string { return path.Join(elem...) }

func (t *SFTPTarget) Close() error {
	err := t.client.Close()
	if t.conn != nil {
		if cerr := t.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type remoteFile struct {
	*sftp.File
	client *sftp.Client
	perm   os.FileMode
}

func (f *remoteFile) Close() error {
	if err := f.File.Close(); err != nil {
		return err
	}
	return f.client.Chmod(f.Name(), f.perm)
}

func authMethods(opts SSHOptions) ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 2)
	if opts.KeyFile != "" {
		data, err := os.ReadFile(expandHome(opts.KeyFile))
		if err != nil {
			return nil, fmt.Errorf("reading ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("parsing ssh key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if opts.Password != "" {
		methods = append(methods, ssh.Password(opts.Password))
	}
	if len(methods) > 0 {
		return methods, nil
	}

	signer, err := defaultSigner()
	if err != nil {
		return nil, fmt.Errorf("no ssh authentication method: %w", err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

func defaultSigner() (ssh.Signer, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		data, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		if signer, err := ssh.ParsePrivateKey(data); err == nil {
			return signer, nil
		}
	}
	return nil, fmt.Errorf("no default private key found")
}

func hostKeyCallback(knownHostsFile string) (ssh.HostKeyCallback, error) {
	if knownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(expandHome(knownHostsFile))
	if err != nil {
		return nil, fmt.Errorf("loading known hosts: %w", err)
	}
	return cb, nil
}

func expandHome(p string) string {
	if expanded, err := homedir.Expand(p); err == nil {
		return expanded
	}
	return p
}
