package faceapi

// PersonGroup represents a Face API person group
type PersonGroup struct {
	PersonGroupID    string `json:"personGroupId"`
	Name             string `json:"name"`
	UserData         string `json:"userData,omitempty"`
	RecognitionModel string `json:"recognitionModel,omitempty"`
}

// Person represents a person within a person group
type Person struct {
	PersonID         string   `json:"personId"`
	Name             string   `json:"name"`
	UserData         string   `json:"userData,omitempty"`
	PersistedFaceIDs []string `json:"persistedFaceIds,omitempty"`
}

// FaceRectangle is a face bounding box in image pixel coordinates,
// origin at the top-left corner.
type FaceRectangle struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectedFace is one face returned by Detect. FaceID is transient and
// expires on the service side after 24 hours.
type DetectedFace struct {
	FaceID        string        `json:"faceId"`
	FaceRectangle FaceRectangle `json:"faceRectangle"`
}

// Candidate is a possible identity for a query face.
type Candidate struct {
	PersonID   string  `json:"personId"`
	Confidence float64 `json:"confidence"`
}

// IdentifyResult holds the candidates for one query face, best first.
type IdentifyResult struct {
	FaceID     string      `json:"faceId"`
	Candidates []Candidate `json:"candidates"`
}

// TrainingState is the lifecycle state of a person group training run.
type TrainingState string

const (
	TrainingNotStarted TrainingState = "notstarted"
	TrainingRunning    TrainingState = "running"
	TrainingSucceeded  TrainingState = "succeeded"
	TrainingFailed     TrainingState = "failed"
)

// Terminal reports whether no further state change is expected.
func (s TrainingState) Terminal() bool {
	return s == TrainingSucceeded || s == TrainingFailed
}

// TrainingStatus is the response of the training status endpoint
type TrainingStatus struct {
	Status             TrainingState `json:"status"`
	CreatedDateTime    string        `json:"createdDateTime"`
	LastActionDateTime string        `json:"lastActionDateTime,omitempty"`
	Message            string        `json:"message,omitempty"`
}

// VerifyResult is the response of a face-to-face verification.
type VerifyResult struct {
	IsIdentical bool    `json:"isIdentical"`
	Confidence  float64 `json:"confidence"`
}

type createPersonGroupRequest struct {
	Name             string `json:"name"`
	RecognitionModel string `json:"recognitionModel,omitempty"`
}

type createPersonRequest struct {
	Name string `json:"name"`
}

type createPersonResponse struct {
	PersonID string `json:"personId"`
}

type addFaceResponse struct {
	PersistedFaceID string `json:"persistedFaceId"`
}

type identifyRequest struct {
	PersonGroupID              string   `json:"personGroupId"`
	FaceIDs                    []string `json:"faceIds"`
	MaxNumOfCandidatesReturned int      `json:"maxNumOfCandidatesReturned"`
}

type verifyRequest struct {
	FaceID1 string `json:"faceId1"`
	FaceID2 string `json:"faceId2"`
}
