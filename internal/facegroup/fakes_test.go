package facegroup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kozaktomas/face-groups/internal/faceapi"
)

var errGroupNotFound = &faceapi.APIError{StatusCode: 404, Code: faceapi.CodePersonGroupNotFound, Message: "not found"}

// fakeFace is an in-memory FaceService that records every call.
type fakeFace struct {
	mu sync.Mutex

	groupExists bool
	getGroupErr error
	createErr   error
	personErr   map[string]error // by person name
	addFaceErr  map[string]error // by image content

	statuses  []faceapi.TrainingState
	statusMsg string
	trainErr  error

	faces        map[string][]faceapi.DetectedFace // by image content
	detectErr    error
	candidates   map[string][]faceapi.Candidate // by face id
	personNames  map[string]string              // by person id
	verifyResult faceapi.VerifyResult

	calls          []string
	createdPersons []string
	addedFaces     map[string]int // by person id
	identifyBatch  [][]string
	statusPolls    int
	getPersonCalls int
	verifyPairs    [][2]string
}

func newFakeFace() *fakeFace {
	return &fakeFace{
		personErr:   map[string]error{},
		addFaceErr:  map[string]error{},
		faces:       map[string][]faceapi.DetectedFace{},
		candidates:  map[string][]faceapi.Candidate{},
		personNames: map[string]string{},
		addedFaces:  map[string]int{},
	}
}

func (f *fakeFace) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFace) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeFace) GetPersonGroup(_ context.Context, groupID string) (*faceapi.PersonGroup, error) {
	f.record("GetPersonGroup")
	if f.getGroupErr != nil {
		return nil, f.getGroupErr
	}
	if !f.groupExists {
		return nil, fmt.Errorf("could not get person group %s: %w", groupID, errGroupNotFound)
	}
	return &faceapi.PersonGroup{PersonGroupID: groupID, Name: groupID}, nil
}

func (f *fakeFace) CreatePersonGroup(_ context.Context, _, _ string) error {
	f.record("CreatePersonGroup")
	if f.createErr != nil {
		return f.createErr
	}
	f.groupExists = true
	return nil
}

func (f *fakeFace) CreatePerson(_ context.Context, _, name string) (string, error) {
	f.record("CreatePerson")
	if err := f.personErr[name]; err != nil {
		return "", err
	}
	f.createdPersons = append(f.createdPersons, name)
	return "pid-" + name, nil
}

func (f *fakeFace) GetPerson(_ context.Context, _, personID string) (*faceapi.Person, error) {
	f.record("GetPerson")
	f.getPersonCalls++
	name, ok := f.personNames[personID]
	if !ok {
		return nil, &faceapi.APIError{StatusCode: 404, Code: faceapi.CodePersonNotFound}
	}
	return &faceapi.Person{PersonID: personID, Name: name}, nil
}

func (f *fakeFace) AddPersonFace(_ context.Context, _, personID string, image []byte) (string, error) {
	f.record("AddPersonFace")
	if err := f.addFaceErr[string(image)]; err != nil {
		return "", err
	}
	f.addedFaces[personID]++
	return "persisted-" + string(image), nil
}

func (f *fakeFace) TrainPersonGroup(_ context.Context, _ string) error {
	f.record("TrainPersonGroup")
	return f.trainErr
}

func (f *fakeFace) GetTrainingStatus(_ context.Context, _ string) (*faceapi.TrainingStatus, error) {
	f.record("GetTrainingStatus")
	if f.statusPolls >= len(f.statuses) {
		return nil, errors.New("no more statuses")
	}
	state := f.statuses[f.statusPolls]
	f.statusPolls++
	status := &faceapi.TrainingStatus{Status: state}
	if state == faceapi.TrainingFailed {
		status.Message = f.statusMsg
	}
	return status, nil
}

func (f *fakeFace) Detect(_ context.Context, image []byte) ([]faceapi.DetectedFace, error) {
	f.record("Detect")
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	return f.faces[string(image)], nil
}

func (f *fakeFace) Identify(_ context.Context, _ string, faceIDs []string, _ int) ([]faceapi.IdentifyResult, error) {
	f.record("Identify")
	f.identifyBatch = append(f.identifyBatch, faceIDs)
	results := make([]faceapi.IdentifyResult, 0, len(faceIDs))
	// reverse order: results must be matched by face id, not position
	for i := len(faceIDs) - 1; i >= 0; i-- {
		results = append(results, faceapi.IdentifyResult{FaceID: faceIDs[i], Candidates: f.candidates[faceIDs[i]]})
	}
	return results, nil
}

func (f *fakeFace) VerifyFaceToFace(_ context.Context, id1, id2 string) (*faceapi.VerifyResult, error) {
	f.record("VerifyFaceToFace")
	f.verifyPairs = append(f.verifyPairs, [2]string{id1, id2})
	res := f.verifyResult
	return &res, nil
}

// fakeStore is an in-memory BlobStore. Blob content defaults to its name.
type fakeStore struct {
	names       []string
	content     map[string]string
	downloadErr map[string]error
	listErr     error

	listPrefixes []string
	downloads    []string
}

func (s *fakeStore) List(_ context.Context, prefix string) ([]string, error) {
	s.listPrefixes = append(s.listPrefixes, prefix)
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []string
	for _, n := range s.names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) Download(_ context.Context, name string) ([]byte, error) {
	s.downloads = append(s.downloads, name)
	if err := s.downloadErr[name]; err != nil {
		return nil, err
	}
	if c, ok := s.content[name]; ok {
		return []byte(c), nil
	}
	return []byte(name), nil
}
