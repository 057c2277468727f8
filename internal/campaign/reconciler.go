package campaign

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
	"github.com/dmitrymomot/mergeflow/pkg/sheet"
)

// Partition splits the files of one artifact location into those a
// recipient references and those nobody does.
type Partition struct {
	Track     Track   `json:"track"`
	Orphans   []File  `json:"orphans"`
	Protected []File  `json:"protected"`
	Ratio     float64 `json:"ratio"`
	// Suspicious is set when Ratio exceeds the configured threshold,
	// which usually means a wrong location or lost recipient ids.
	Suspicious bool `json:"suspicious"`
}

// FindOrphans partitions present by membership in referenced.
// Every file lands in exactly one of the two lists, in input order.
func FindOrphans(referenced map[string]struct{}, present []File) Partition {
	p := Partition{
		Orphans:   []File{},
		Protected: []File{},
	}
	for _, f := range present {
		if _, ok := referenced[f.ID]; ok {
			p.Protected = append(p.Protected, f)
		} else {
			p.Orphans = append(p.Orphans, f)
		}
	}
	if len(present) > 0 {
		p.Ratio = float64(len(p.Orphans)) / float64(len(present))
	}
	return p
}

// Reconciler previews and soft-deletes orphaned artifacts.
type Reconciler struct {
	recipients sheet.Store
	artifacts  ArtifactStore
	opts       *options
	cfg        Config
}

// NewReconciler returns a reconciler over the recipient table and artifact store.
func NewReconciler(cfg Config, recipients sheet.Store, artifacts ArtifactStore, opts ...Option) *Reconciler {
	return &Reconciler{
		recipients: recipients,
		artifacts:  artifacts,
		opts:       newOptions(opts),
		cfg:        cfg.WithDefaults(),
	}
}

// Preview computes the partition for track without changing anything.
func (r *Reconciler) Preview(ctx context.Context, track Track) (*Partition, error) {
	ctx, b := r.opts.begin(ctx, OpPreviewOrphans)

	p, err := r.partition(ctx, track)
	if err != nil {
		b.finish(ctx, err)
		return nil, err
	}
	b.run.Total = len(p.Orphans) + len(p.Protected)
	b.run.Skipped = len(p.Orphans)
	b.run.Succeeded = len(p.Protected)
	b.finish(ctx, nil)
	return p, nil
}

// Delete moves every orphan of track to the trash. A suspicious partition
// is returned untouched with ErrSuspiciousOrphanRatio unless force is set.
func (r *Reconciler) Delete(ctx context.Context, track Track, force bool) (*Partition, *Run, error) {
	ctx, b := r.opts.begin(ctx, OpDeleteOrphans)

	p, err := r.partition(ctx, track)
	if err != nil {
		b.finish(ctx, err)
		return nil, b.run, err
	}
	if p.Suspicious && !force {
		b.finish(ctx, ErrSuspiciousOrphanRatio)
		return p, b.run, ErrSuspiciousOrphanRatio
	}

	log := r.opts.logger.With(slog.String("track", string(track)))
	for _, f := range p.Orphans {
		if err := ctx.Err(); err != nil {
			b.finish(ctx, err)
			return p, b.run, err
		}
		b.run.Total++
		if err := r.artifacts.Trash(ctx, f.ID); err != nil {
			b.run.Failed++
			b.run.Errors = append(b.run.Errors, RecipientError{
				Recipient: f.Name,
				Message:   err.Error(),
				Err:       errors.Join(ErrArtifactStore, err),
			})
			log.WarnContext(ctx, "failed to trash orphan", slog.String("id", f.ID), slog.Any("error", err))
			b.appendEntry(ctx, activity.Entry{Outcome: activity.OutcomeFailed, Message: "trash " + f.ID + ": " + err.Error()})
			continue
		}
		b.run.Succeeded++
		log.InfoContext(ctx, "orphan trashed", slog.String("id", f.ID), slog.String("name", f.Name))
		b.appendEntry(ctx, activity.Entry{Outcome: activity.OutcomeSucceeded, Message: "trashed " + f.ID})
	}

	b.finish(ctx, nil)
	return p, b.run, nil
}

func (r *Reconciler) partition(ctx context.Context, track Track) (*Partition, error) {
	if track != TrackDocuments && track != TrackPDFs {
		return nil, ErrUnknownTrack
	}

	table, err := r.recipients.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrRecipientsRead, err)
	}
	present, err := r.artifacts.List(ctx, track.location(r.cfg))
	if err != nil {
		return nil, errors.Join(ErrArtifactStore, err)
	}

	// Any artifact id on any row protects the file, whichever track listed
	// it. Rows without an email still protect their artifacts.
	referenced := make(map[string]struct{}, 2*len(table.Records))
	for _, rec := range table.Records {
		for _, field := range []string{recipient.FieldDocID, recipient.FieldPdfID} {
			if id := strings.TrimSpace(rec.Get(field)); id != "" {
				referenced[id] = struct{}{}
			}
		}
	}

	p := FindOrphans(referenced, present)
	p.Track = track
	p.Suspicious = p.Ratio > r.cfg.OrphanThreshold
	return &p, nil
}
