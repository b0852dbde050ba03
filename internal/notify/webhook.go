package notify

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Mavwarf/reveil/internal/httputil"
)

// Webhook posts alarm notifications to a URL as text/plain. Custom
// headers are applied after the default Content-Type, so callers can
// override it. Header values are expanded with os.ExpandEnv to support
// $VAR secrets.
type Webhook struct {
	URL     string
	Headers map[string]string
}

func (w Webhook) Name() string { return "webhook" }

func (w Webhook) Notify(message string) error {
	req, err := http.NewRequest("POST", w.URL, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("webhook: new request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	for k, v := range w.Headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := httputil.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "webhook")
}
