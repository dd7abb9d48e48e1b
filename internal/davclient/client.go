// Package davclient talks to NextCloud's public WebDAV share endpoint.
package davclient

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"

	"ncdownloader/internal/models"
	"ncdownloader/internal/share"
)

// Public shares are served below this prefix, authenticated with the
// share token as username and the share password as password.
const publicWebDAVPrefix = "/public.php/webdav"

type Client struct {
	dav   *gowebdav.Client
	token string
}

func New(sh *share.Share, password string, timeout time.Duration) *Client {
	dav := gowebdav.NewClient(sh.BaseURL+publicWebDAVPrefix, sh.Token, password)
	if timeout > 0 {
		dav.SetTimeout(timeout)
	}
	return &Client{
		dav:   dav,
		token: sh.Token,
	}
}

// Connect verifies that the share is reachable with the given credentials.
func (c *Client) Connect() error {
	if err := c.dav.Connect(); err != nil {
		return c.wrapErr("connect to share", "/", err)
	}
	return nil
}

// List returns the immediate children of dir. Entry paths are relative
// to the share root, without a leading slash.
func (c *Client) List(dir string) ([]models.RemoteEntry, error) {
	infos, err := c.dav.ReadDir(dir)
	if err != nil {
		return nil, c.wrapErr("list", dir, err)
	}

	entries := make([]models.RemoteEntry, 0, len(infos))
	for _, fi := range infos {
		e := models.RemoteEntry{
			Path:    path.Join(strings.TrimPrefix(dir, "/"), fi.Name()),
			IsDir:   fi.IsDir(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		if f, ok := fi.(gowebdav.File); ok {
			e.ContentType = f.ContentType()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Walk lists dir recursively, depth first, and returns every file entry
// of the subtree sorted by path. Any listing failure aborts the walk.
func (c *Client) Walk(dir string) ([]models.RemoteEntry, error) {
	files, err := c.walk(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func (c *Client) walk(dir string) ([]models.RemoteEntry, error) {
	entries, err := c.List(dir)
	if err != nil {
		return nil, err
	}

	var files []models.RemoteEntry
	for _, e := range entries {
		if e.IsDir {
			sub, err := c.walk("/" + e.Path)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		} else {
			files = append(files, e)
		}
	}
	return files, nil
}

// Open returns a stream of the file's content.
func (c *Client) Open(remotePath string) (io.ReadCloser, error) {
	rc, err := c.dav.ReadStream(absPath(remotePath))
	if err != nil {
		return nil, c.wrapErr("download", remotePath, err)
	}
	return rc, nil
}

// OpenRange returns a stream of the file's content starting at offset,
// used to continue a partially downloaded file.
func (c *Client) OpenRange(remotePath string, offset int64) (io.ReadCloser, error) {
	rc, err := c.dav.ReadStreamRange(absPath(remotePath), offset, 0)
	if err != nil {
		return nil, c.wrapErr("download range", remotePath, err)
	}
	return rc, nil
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) wrapErr(op, remotePath string, err error) error {
	if gowebdav.IsErrCode(err, http.StatusUnauthorized) || gowebdav.IsErrCode(err, http.StatusForbidden) {
		return fmt.Errorf("authentication failed for share %s: wrong or missing password: %w", c.token, err)
	}
	return fmt.Errorf("%s %s on share %s: %w", op, remotePath, c.token, err)
}

func absPath(p string) string {
	return "/" + strings.TrimPrefix(p, "/")
}
