package share

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Share identifies the remote root of a NextCloud public share link.
type Share struct {
	BaseURL string // scheme://host[/prefix], without /index.php or /s/<token>
	Token   string // public share token, used as the basic auth username
	Path    string // sub-path inside the share selected via ?path=, "/" for the root
}

// Parse extracts the server base URL, share token and optional sub-path
// from a public share link. Accepted forms:
//
//	https://cloud.example.com/s/TOKEN
//	https://cloud.example.com/index.php/s/TOKEN
//	https://cloud.example.com/s/TOKEN?path=%2Fsub%2Fdir
func Parse(raw string) (*Share, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid share URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid share URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid share URL %q: missing host", raw)
	}

	idx := strings.Index(u.Path, "/s/")
	if idx < 0 {
		return nil, fmt.Errorf("invalid share URL %q: missing /s/<token> segment", raw)
	}

	token := strings.Trim(u.Path[idx+len("/s/"):], "/")
	// some share links carry a trailing /download segment
	if i := strings.IndexByte(token, '/'); i >= 0 {
		token = token[:i]
	}
	if token == "" {
		return nil, fmt.Errorf("invalid share URL %q: empty share token", raw)
	}

	base := strings.TrimSuffix(u.Path[:idx], "/index.php")

	sub := u.Query().Get("path")
	if sub == "" {
		sub = "/"
	}
	if !strings.HasPrefix(sub, "/") {
		sub = "/" + sub
	}
	sub = path.Clean(sub)

	return &Share{
		BaseURL: u.Scheme + "://" + u.Host + base,
		Token:   token,
		Path:    sub,
	}, nil
}
