package hub

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/opencontainers/go-digest"

	"github.com/rlzoo/zoo-hub/internal/config"
)

const userAgent = "zoo-hub"

// Client talks to the hub's REST API. All calls block; there are no
// retries, errors surface to the caller unchanged.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		HTTP:    http.DefaultClient,
		BaseURL: strings.TrimSuffix(cfg.HubURL, "/"),
		Token:   cfg.Token,
	}, nil
}

// CreateRepo creates a repository, reusing it when it already exists.
func (c *Client) CreateRepo(ctx context.Context, repoID string, private bool) (*RepoInfo, error) {
	req := CreateRepoRequest{RepoID: repoID, Private: private, ExistOK: true}

	info := &RepoInfo{}
	_, err := c.request(ctx, http.MethodPost, "/api/repos/create", nil, req, info)
	if err != nil {
		var apierr ErrorInfo
		// An existing repo is fine: create is idempotent.
		if ok := asErrorInfo(err, &apierr); ok && apierr.HTTPStatus == http.StatusConflict {
			return &RepoInfo{RepoID: repoID, URL: c.BaseURL + "/" + repoID}, nil
		}
		return nil, err
	}
	if info.URL == "" {
		info.URL = c.BaseURL + "/" + repoID
	}
	if info.RepoID == "" {
		info.RepoID = repoID
	}
	return info, nil
}

// GetManifest fetches the file listing of the repository head. A
// repository with no commits yet yields an empty manifest.
func (c *Client) GetManifest(ctx context.Context, repoID string) (*Manifest, error) {
	manifest := &Manifest{}
	_, err := c.request(ctx, http.MethodGet, "/api/models/"+repoID+"/manifest", nil, nil, manifest)
	if err != nil {
		var apierr ErrorInfo
		if ok := asErrorInfo(err, &apierr); ok && apierr.HTTPStatus == http.StatusNotFound {
			return &Manifest{}, nil
		}
		return nil, err
	}
	return manifest, nil
}

// Commit publishes a new head for the repository.
func (c *Client) Commit(ctx context.Context, repoID string, commit CommitRequest) error {
	header := map[string]string{"Content-Type": "application/json"}
	resp, err := c.request(ctx, http.MethodPut, "/api/models/"+repoID+"/manifest", header, commit, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// HeadBlob reports whether the hub already stores a blob.
func (c *Client) HeadBlob(ctx context.Context, repoID string, dgst digest.Digest) (bool, error) {
	resp, err := c.request(ctx, http.MethodHead, "/api/models/"+repoID+"/blobs/"+dgst.String(), nil, nil, nil)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, ErrorInfo{HTTPStatus: resp.StatusCode, Message: "blob check failed"}
	}
}

// UploadBlob streams one content-addressed blob to the hub.
func (c *Client) UploadBlob(ctx context.Context, repoID string, desc Descriptor, content io.Reader) error {
	header := map[string]string{"Content-Type": "application/octet-stream"}
	resp, err := c.request(ctx, http.MethodPut, "/api/models/"+repoID+"/blobs/"+desc.Digest.String(), header, content, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DownloadBlob copies a blob's content into the writer.
func (c *Client) DownloadBlob(ctx context.Context, repoID string, dgst digest.Digest, into io.Writer) error {
	resp, err := c.request(ctx, http.MethodGet, "/api/models/"+repoID+"/blobs/"+dgst.String(), nil, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(into, resp.Body)
	return err
}

func (c *Client) request(ctx context.Context, method, path string, header map[string]string, body any, into any) (*http.Response, error) {
	var reqbody io.Reader
	switch val := body.(type) {
	case io.Reader:
		reqbody = val
	case nil:
		reqbody = nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		reqbody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqbody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 && method != http.MethodHead {
		defer resp.Body.Close()
		apierr := ErrorInfo{HTTPStatus: resp.StatusCode}
		if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(resp.Body).Decode(&apierr); err != nil {
				return nil, err
			}
			apierr.HTTPStatus = resp.StatusCode
		} else {
			bodystr, _ := io.ReadAll(resp.Body)
			apierr.Message = string(bodystr)
		}
		return nil, apierr
	}
	if into != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func asErrorInfo(err error, into *ErrorInfo) bool {
	apierr, ok := err.(ErrorInfo)
	if ok {
		*into = apierr
	}
	return ok
}
