package domain

import (
	"path/filepath"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// RequestID uniquely identifies one build run and names its workspace.
type RequestID string

// NewRequestID returns a time-ordered random identifier.
func NewRequestID() (RequestID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", zerr.Wrap(err, ErrWorkspaceCreateFailed.Error())
	}
	return RequestID(id.String()), nil
}

// String returns the identifier as a string.
func (id RequestID) String() string {
	return string(id)
}

// Workspace is the exclusive temporary directory of one build.
type Workspace struct {
	ID  RequestID
	Dir string
}

// NewWorkspace returns the workspace of id under root. It does not touch the filesystem.
func NewWorkspace(root string, id RequestID) Workspace {
	return Workspace{ID: id, Dir: filepath.Join(root, id.String())}
}

// Path returns the path of a file inside the workspace.
func (w Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}
