package facegroup

import "context"

// EnrollRequest provisions a group and trains it.
type EnrollRequest struct {
	ProvisionRequest
	Training TrainOptions

	// Retrain forces training of a group that already existed.
	Retrain bool
}

// EnrollResult is the outcome of Enroll.
type EnrollResult struct {
	*ProvisionReport
	Trained bool
}

// Enroll provisions the person group and trains it when it was just created
// or when a retrain is requested. An existing group is otherwise used as is.
// When provisioning fails after the group was created, the partial result is
// returned with the error.
func (s *Service) Enroll(ctx context.Context, store BlobStore, req EnrollRequest) (*EnrollResult, error) {
	report, err := s.Provision(ctx, store, req.ProvisionRequest)
	if err != nil {
		if report == nil {
			return nil, err
		}
		return &EnrollResult{ProvisionReport: report}, err
	}
	result := &EnrollResult{ProvisionReport: report}

	if !report.Created && !req.Retrain {
		return result, nil
	}
	if err := s.Train(ctx, req.GroupID, req.Training); err != nil {
		return result, err
	}
	result.Trained = true
	return result, nil
}
