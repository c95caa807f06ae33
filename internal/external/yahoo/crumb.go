package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/warroom/pkg/httputil"
)

const crumbPath = "/v1/test/getcrumb"

// sessionCrumb returns the cached crumb, running the cookie + crumb
// handshake on first use. Callers wait on one handshake at a time.
func (c *Client) sessionCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The cookie host answers with an error status but still sets the cookie
	if _, _, err := c.httpClient.GetBytes(ctx, c.cookieURL); err != nil {
		var statusErr *httputil.StatusError
		if !errors.As(err, &statusErr) {
			return "", fmt.Errorf("yahoo session cookie: %w", err)
		}
	}

	body, _, err := c.httpClient.GetBytes(ctx, c.baseURL+crumbPath)
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{ \n") {
		return "", fmt.Errorf("yahoo crumb: unexpected response %q", truncateBody(crumb))
	}

	c.crumb = crumb
	c.logger.Debug("Yahoo session crumb acquired")
	return crumb, nil
}

// dropCrumb forgets crumb unless another caller already replaced it
func (c *Client) dropCrumb(crumb string) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumb == crumb {
		c.crumb = ""
	}
}

// getSignedJSON is getJSON with the session crumb attached.
// A 401 renews the crumb once.
func (c *Client) getSignedJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	for attempt := 0; ; attempt++ {
		crumb, err := c.sessionCrumb(ctx)
		if err != nil {
			return err
		}

		signed := make(url.Values, len(params)+1)
		for k, v := range params {
			signed[k] = v
		}
		signed.Set("crumb", crumb)

		err = c.getJSON(ctx, path, signed, dest)
		if attempt == 0 && isUnauthorized(err) {
			c.logger.WithField("path", path).Debug("Yahoo crumb rejected, renewing")
			c.dropCrumb(crumb)
			continue
		}
		return err
	}
}

func isUnauthorized(err error) bool {
	var statusErr *httputil.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}

func truncateBody(s string) string {
	if len(s) > 40 {
		return s[:40]
	}
	return s
}
