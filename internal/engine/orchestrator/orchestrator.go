// Package orchestrator runs the merge engine over a populated workspace and collects
// the archives it produced.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

// Combined archive entry names for mode both.
const (
	primaryEntry   = "primary.zip"
	secondaryEntry = "secondary.zip"
)

// Orchestrator drives one merge per build.
type Orchestrator struct {
	engine ports.MergeEngine
	logger ports.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(engine ports.MergeEngine, logger ports.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, logger: logger}
}

// Merge runs the engine over ws and returns the archives required by mode.
// Any stderr output or a non-zero exit fails the merge.
func (o *Orchestrator) Merge(
	ctx context.Context,
	ws domain.Workspace,
	mode domain.Mode,
	platform string,
) (*domain.MergeResult, error) {
	exit, err := o.engine.Run(ctx, domain.MergeInvocation{
		Workspace:       ws,
		Mode:            mode,
		PlatformVersion: platform,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMergeFailed.Error()), "request_id", ws.ID.String())
	}

	if exit.ExitCode != 0 || strings.TrimSpace(exit.Stderr) != "" {
		err := zerr.Wrap(domain.ErrMergeFailed, "merge tool reported a failure")
		err = zerr.With(err, "exit_code", exit.ExitCode)
		if stderr := strings.TrimSpace(exit.Stderr); stderr != "" {
			err = zerr.With(err, "stderr", stderr)
		}
		return nil, err
	}

	result := &domain.MergeResult{}
	for _, kind := range mode.Kinds() {
		data, err := readOutput(ws, kind)
		if err != nil {
			return nil, err
		}
		if data == nil && mode != domain.ModeBoth {
			return nil, zerr.With(domain.ErrMergeOutputMissing, "file", kind.MergedFile())
		}
		switch kind {
		case domain.KindPrimary:
			result.Primary = data
		case domain.KindSecondary:
			result.Secondary = data
		}
	}

	if mode == domain.ModeBoth {
		if result.Primary == nil && result.Secondary == nil {
			return nil, zerr.With(domain.ErrMergeOutputMissing, "file", domain.MergedCombinedFile)
		}
		combined, err := combine(result)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(ws.Path(domain.MergedCombinedFile), combined, domain.FilePerm); err != nil {
			return nil, zerr.Wrap(err, domain.ErrArchiveWriteFailed.Error())
		}
		result.Combined = combined
	}

	o.logger.Info(fmt.Sprintf("merged %s archive for %s", mode, ws.ID))
	return result, nil
}

// readOutput returns the merged archive of kind, or nil when the tool did not write one.
func readOutput(ws domain.Workspace, kind domain.ArtifactKind) ([]byte, error) {
	data, err := os.ReadFile(ws.Path(kind.MergedFile()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMergeFailed.Error()), "file", kind.MergedFile())
	}
	return data, nil
}

// combine writes an archive holding the merged archives as stored entries.
func combine(result *domain.MergeResult) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data []byte
	}{
		{primaryEntry, result.Primary},
		{secondaryEntry, result.Secondary},
	}
	for _, e := range entries {
		if e.data == nil {
			continue
		}
		f, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Store})
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrArchiveWriteFailed.Error())
		}
		if _, err := f.Write(e.data); err != nil {
			return nil, zerr.Wrap(err, domain.ErrArchiveWriteFailed.Error())
		}
	}

	if err := w.Close(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrArchiveWriteFailed.Error())
	}
	return buf.Bytes(), nil
}
