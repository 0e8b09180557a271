package canon

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidBaseURL is returned for base URLs that are not host[:port].
var ErrInvalidBaseURL = errors.New("base URL must be hostname[:port]")

// NormalizeBaseURL trims whitespace, a scheme or "//" prefix and trailing
// slashes from raw and checks that what remains is hostname[:port].
// An empty input is valid and means no override.
func NormalizeBaseURL(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://", "http://", "//"} {
		if strings.HasPrefix(strings.ToLower(host), prefix) {
			host = host[len(prefix):]
			break
		}
	}
	host = strings.TrimRight(host, "/")
	if host == "" {
		return "", nil
	}

	u, err := url.Parse("//" + host)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidBaseURL, raw, err)
	}
	if u.Host != host || u.User != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return host, nil
}
