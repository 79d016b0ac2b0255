package artifact

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/valyala/fastjson"

	"github.com/yildizm/runlens/internal/logger"
)

const maxResponseSize = 64 << 20

// Artifact is a downloaded run artifact
type Artifact struct {
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
	Size        int64  `json:"size"`
	Base64      bool   `json:"base64"`
}

// Bytes returns the decoded content
func (a *Artifact) Bytes() ([]byte, error) {
	if !a.Base64 {
		return []byte(a.Data), nil
	}
	b, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 artifact data: %w", err)
	}
	return b, nil
}

// Text returns the content as text, decoding base64 when needed
func (a *Artifact) Text() (string, error) {
	b, err := a.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsJSON reports whether the artifact declares a JSON content type
func (a *Artifact) IsJSON() bool {
	return isJSONType(a.ContentType)
}

// Downloader fetches artifacts for a run
type Downloader interface {
	Download(ctx context.Context, runID, path string) (*Artifact, error)
}

// Client downloads artifacts from the dashboard API
type Client struct {
	baseURL *url.URL
	client  *http.Client
	log     *logger.Logger
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

// Download fetches GET /api/runs/{runID}/artifacts?path={path}
func (c *Client) Download(ctx context.Context, runID, path string) (*Artifact, error) {
	endpoint := c.baseURL.JoinPath("api", "runs", runID, "artifacts")
	query := endpoint.Query()
	query.Set("path", path)
	endpoint.RawQuery = query.Encode()

	fail := func(kind ErrorKind, status int, msg string, cause error) error {
		err := &DownloadError{Kind: kind, RunID: runID, Path: path, StatusCode: status, Message: msg, Cause: cause}
		c.log.WarnWithFields("artifact download failed", []logger.Field{
			logger.F("run", runID),
			logger.Path(path),
			logger.F("kind", kind),
		})
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, fail(KindRequest, 0, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fail(KindNetwork, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fail(KindNetwork, resp.StatusCode, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fail(KindNotFound, resp.StatusCode, errorMessage(body), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, fail(KindServer, resp.StatusCode, errorMessage(body), nil)
	}

	a, err := parseArtifact(body)
	if err != nil {
		return nil, fail(KindDecode, resp.StatusCode, "failed to decode response", err)
	}

	c.log.DebugWithFields("artifact downloaded", []logger.Field{
		logger.F("run", runID),
		logger.Path(path),
		logger.F("size", a.Size),
		logger.Duration(time.Since(start)),
	})
	return a, nil
}

func parseArtifact(body []byte) (*Artifact, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, err
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("expected object, got %s", v.Type())
	}
	if !v.Exists("data") {
		return nil, fmt.Errorf("missing data field")
	}

	a := &Artifact{
		ContentType: string(v.GetStringBytes("contentType")),
		Data:        string(v.GetStringBytes("data")),
		Size:        v.GetInt64("size"),
		Base64:      v.GetBool("base64"),
	}
	if a.Size == 0 && !a.Base64 {
		a.Size = int64(len(a.Data))
	}
	return a, nil
}

// errorMessage extracts {"error": "..."} from an error body, if present
func errorMessage(body []byte) string {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return ""
	}
	return string(v.GetStringBytes("error"))
}
