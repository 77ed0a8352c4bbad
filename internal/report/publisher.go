package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/steveyegge/flaxsim/internal/blob"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

// Artifact names written under runs/<run-id>/
const (
	SnapshotsArtifact = "snapshots.csv"
	SummaryArtifact   = "summary.json"
)

// Artifact is an extra document published next to the snapshots and summary
type Artifact struct {
	Name   string
	Render func() ([]byte, error)
}

// Publisher uploads the run artifacts to a blob store when the run finishes
type Publisher struct {
	store     blob.Store
	history   *History
	extras    []Artifact
	logger    *slog.Logger
	published []blob.Info
}

var (
	_ simulation.Sink     = (*Publisher)(nil)
	_ simulation.Finisher = (*Publisher)(nil)
)

// NewPublisher publishes the contents of history to store
func NewPublisher(store blob.Store, history *History, logger *slog.Logger, extras ...Artifact) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, history: history, extras: extras, logger: logger}
}

// OnSnapshot does nothing; artifacts are rendered from the history on Finish
func (p *Publisher) OnSnapshot(context.Context, types.DailySnapshot) error {
	return nil
}

// RunPrefix returns the blob prefix of a run
func RunPrefix(runID string) string {
	return path.Join("runs", runID) + "/"
}

// Finish renders and uploads every artifact
func (p *Publisher) Finish(ctx context.Context, info simulation.RunInfo) error {
	csvData, err := p.history.CSV()
	if err != nil {
		return err
	}
	summary, err := MarshalSummary(p.history.Summary())
	if err != nil {
		return err
	}

	artifacts := []struct {
		name string
		data []byte
	}{
		{SnapshotsArtifact, csvData},
		{SummaryArtifact, summary},
	}
	for _, extra := range p.extras {
		data, err := extra.Render()
		if err != nil {
			return fmt.Errorf("failed to render artifact %s: %w", extra.Name, err)
		}
		artifacts = append(artifacts, struct {
			name string
			data []byte
		}{extra.Name, data})
	}

	prefix := RunPrefix(info.ID)
	for _, a := range artifacts {
		key := prefix + a.name
		bi, err := p.store.Put(ctx, key, bytes.NewReader(a.data), blob.PutOptions{
			ContentType: blob.ContentTypeFor(a.name),
			Metadata:    map[string]string{"run-id": info.ID, "seed": fmt.Sprint(info.Seed)},
		})
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", key, err)
		}
		p.published = append(p.published, bi)
		p.logger.Debug("artifact published", "key", bi.Key, "size", bi.Size, "driver", p.store.Driver())
	}
	return nil
}

// Published returns what the last Finish uploaded
func (p *Publisher) Published() []blob.Info {
	return append([]blob.Info(nil), p.published...)
}
