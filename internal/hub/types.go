package hub

import (
	"fmt"

	"github.com/opencontainers/go-digest"
)

// Descriptor identifies one file of a repository revision.
type Descriptor struct {
	Path   string        `json:"path"`
	Digest digest.Digest `json:"digest"`
	Size   int64         `json:"size"`
}

// Manifest is the file listing of a repository head.
type Manifest struct {
	Files []Descriptor `json:"files"`
}

// CommitRequest publishes a new repository head.
type CommitRequest struct {
	Message string       `json:"message"`
	Files   []Descriptor `json:"files"`
}

// CreateRepoRequest asks the hub to create a repository.
type CreateRepoRequest struct {
	RepoID  string `json:"repo_id"`
	Private bool   `json:"private"`
	ExistOK bool   `json:"exist_ok"`
}

// RepoInfo describes a hub repository.
type RepoInfo struct {
	RepoID string `json:"repo_id"`
	URL    string `json:"url"`
}

// ErrorInfo is the hub's error response body.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	HTTPStatus int `json:"-"`
}

func (e ErrorInfo) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("hub error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("hub error (status %d): %s", e.HTTPStatus, e.Message)
}
