package facegroup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/faceapi"
	"github.com/kozaktomas/face-groups/internal/logging"
)

// ProvisionRequest describes the group to create and where its images live.
type ProvisionRequest struct {
	GroupID    string
	Name       string
	Root       string
	Extensions []string

	// Progress, when set, is called once per layout discovery and then after
	// every processed image.
	Progress func(ProgressEvent)
}

// ProgressEvent reports provisioning progress.
type ProgressEvent struct {
	Person string
	Blob   string
	Done   int
	Total  int
	Err    error
}

// ImageFailure records an image or person that could not be enrolled.
type ImageFailure struct {
	Person string
	Blob   string
	Err    error
}

// ProvisionReport summarizes a provisioning run.
type ProvisionReport struct {
	Existed    bool
	Created    bool
	Persons    int
	FacesAdded int
	Failures   []ImageFailure
}

// Provision makes sure a person group exists. An existing group is left
// untouched. A new group is populated from the blob layout under req.Root,
// one person per folder. Per-image failures are recorded in the report and
// skipped; failing to create the group aborts.
func (s *Service) Provision(ctx context.Context, store BlobStore, req ProvisionRequest) (*ProvisionReport, error) {
	log := s.logger.With(zap.String("group", req.GroupID))
	report := &ProvisionReport{}

	_, err := s.face.GetPersonGroup(ctx, req.GroupID)
	if err == nil {
		log.Info("person group already exists")
		report.Existed = true
		return report, nil
	}
	if !faceapi.IsNotFound(err) {
		return nil, logging.NewOperationError("group.get", s.runID, err)
	}
	log.Info("person group not found, creating it")

	name := req.Name
	if name == "" {
		name = req.GroupID
	}
	if err := s.face.CreatePersonGroup(ctx, req.GroupID, name); err != nil {
		return nil, logging.NewOperationError("group.create", s.runID, err)
	}
	report.Created = true

	names, err := store.List(ctx, req.Root+"/")
	if err != nil {
		return report, logging.NewOperationError("blobs.list", s.runID, err)
	}
	persons := ParseLayout(names, req.Root, req.Extensions)

	total := 0
	for _, p := range persons {
		total += len(p.Images)
	}
	log.Info("enrollment layout", zap.Int("persons", len(persons)), zap.Int("images", total))
	notify := func(ev ProgressEvent) {
		if req.Progress != nil {
			ev.Total = total
			req.Progress(ev)
		}
	}
	notify(ProgressEvent{})

	done := 0
	for _, p := range persons {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		personID, err := s.face.CreatePerson(ctx, req.GroupID, p.Name)
		if err != nil {
			log.Warn("could not create person", zap.String("person", p.Name), zap.Error(err))
			report.Failures = append(report.Failures, ImageFailure{Person: p.Name, Err: err})
			done += len(p.Images)
			notify(ProgressEvent{Person: p.Name, Done: done, Err: err})
			continue
		}
		report.Persons++

		for _, blob := range p.Images {
			err := s.addFace(ctx, store, req.GroupID, personID, blob)
			done++
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				log.Warn("could not add face", zap.String("person", p.Name), zap.String("blob", blob), zap.Error(err))
				report.Failures = append(report.Failures, ImageFailure{Person: p.Name, Blob: blob, Err: err})
			} else {
				report.FacesAdded++
			}
			notify(ProgressEvent{Person: p.Name, Blob: blob, Done: done, Err: err})
		}
		log.Debug("added faces for person", zap.String("person", p.Name), zap.Int("images", len(p.Images)))
	}

	return report, nil
}

func (s *Service) addFace(ctx context.Context, store BlobStore, groupID, personID, blob string) error {
	data, err := store.Download(ctx, blob)
	if err != nil {
		return err
	}
	if _, err := s.face.AddPersonFace(ctx, groupID, personID, data); err != nil {
		return err
	}
	return nil
}

// FailureSummary formats the failures of a report, one per line.
func (r *ProvisionReport) FailureSummary() string {
	var b strings.Builder
	for _, f := range r.Failures {
		subject := f.Blob
		if subject == "" {
			subject = f.Person
		}
		fmt.Fprintf(&b, "  %s: %v\n", subject, f.Err)
	}
	return b.String()
}
