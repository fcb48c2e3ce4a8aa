package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"igmenu/pkg/config"
	errs "igmenu/pkg/errors"
	"igmenu/pkg/logger"
)

// FileSink receives downloaded media
type FileSink interface {
	SaveFile(dir, name string, r io.Reader) (int64, error)
}

// Client represents an Instagram web client. After a successful Login it
// is the authenticated session every other call runs under.
type Client struct {
	httpClient *http.Client
	jar        http.CookieJar
	headers    map[string]string
	baseURL    string
	sink       FileSink
	logger     logger.Logger
	now        func() time.Time

	username string
}

// NewClient creates a new Instagram client writing media to sink
func NewClient(cfg *config.InstagramConfig, sink FileSink, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		jar: jar,
		headers: map[string]string{
			"User-Agent":       cfg.UserAgent,
			"Accept":           "*/*",
			"Accept-Language":  "en-US,en;q=0.9",
			"X-IG-App-ID":      cfg.AppID,
			"X-Requested-With": "XMLHttpRequest",
		},
		sink:   sink,
		logger: log,
		now:    time.Now,
	}
	if err := c.SetBaseURL(BaseURL); err != nil {
		return nil, err
	}

	return c, nil
}

// SetBaseURL points the client at another host and seeds a device id
// cookie for it
func (c *Client) SetBaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	c.baseURL = strings.TrimRight(base, "/")
	c.headers["Referer"] = c.baseURL + "/"

	c.jar.SetCookies(u, []*http.Cookie{{
		Name:  "ig_did",
		Value: strings.ToUpper(uuid.NewString()),
		Path:  "/",
	}})
	return nil
}

// Username returns the logged-in account name, empty before Login
func (c *Client) Username() string {
	return c.username
}

// cookie returns the value of the named cookie for the base URL
func (c *Client) cookie(name string) string {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return ""
	}
	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if token := c.cookie("csrftoken"); token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "%s %s", req.Method, req.URL.Path)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// get performs a GET request to the specified URL
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	return c.doRequest(req)
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, target)
}

// decodeResponse checks the status code and decodes the JSON body
func (c *Client) decodeResponse(resp *http.Response, target interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          resp.Request.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return nil
}

// checkResponseStatus maps HTTP failures, and API bodies reporting
// "login_required", to typed errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	var status apiStatus
	_ = json.Unmarshal(body, &status)

	if status.Message == "login_required" || status.Message == "checkpoint_required" {
		c.logger.WarnWithFields("session rejected", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": status.Message,
		})
		return errs.New(errs.ErrorTypeLoginRequired, resp.StatusCode, "%s", status.Message)
	}

	if resp.StatusCode < 400 {
		return nil
	}

	errorType := errs.FromStatusCode(resp.StatusCode)
	message := status.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
		"type":   string(errorType),
	}
	if errorType == errs.ErrorTypeServerError {
		c.logger.ErrorWithFields("server error", fields)
	} else {
		c.logger.WarnWithFields("request rejected", fields)
	}

	return errs.New(errorType, resp.StatusCode, "%s", message)
}

// fetchMedia opens the body of a media URL. Any HTTP failure is a
// network error; a missing file never reads as a missing profile.
func (c *Client) fetchMedia(ctx context.Context, mediaURL string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, mediaURL)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, errs.New(errs.ErrorTypeNetwork, resp.StatusCode,
			"failed to download %s", mediaURL)
	}

	return resp.Body, nil
}

// saveMedia downloads item into dir/base<ext>
func (c *Client) saveMedia(ctx context.Context, dir, base string, item MediaItem) (string, int64, error) {
	if item.URL() == "" {
		return "", 0, errs.New(errs.ErrorTypeParsing, 0, "no media URL for %s", base)
	}

	body, err := c.fetchMedia(ctx, item.URL())
	if err != nil {
		return "", 0, err
	}
	defer body.Close()

	name := base + item.Extension()
	written, err := c.sink.SaveFile(dir, name, body)
	if err != nil {
		return "", written, errs.Wrap(errs.ErrorTypeStorage, err, "failed to save %s", name)
	}

	c.logger.DebugWithFields("media saved", map[string]interface{}{
		"dir":  dir,
		"file": name,
		"size": written,
	})

	return name, written, nil
}
