package facegroup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/face-groups/internal/constants"
	"github.com/kozaktomas/face-groups/internal/faceapi"
)

func detected(ids ...string) []faceapi.DetectedFace {
	faces := make([]faceapi.DetectedFace, 0, len(ids))
	for i, id := range ids {
		faces = append(faces, faceapi.DetectedFace{
			FaceID:        id,
			FaceRectangle: faceapi.FaceRectangle{Left: 10 * i, Top: 20, Width: 30, Height: 40},
		})
	}
	return faces
}

func TestIdentify_NoFaces(t *testing.T) {
	face := newFakeFace()
	svc := NewService(face, nil)

	got, err := svc.Identify(context.Background(), "g", []byte("empty"))
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
	if face.count("Identify") != 0 {
		t.Error("expected no identify call without faces")
	}
}

func TestIdentify_UnknownFace(t *testing.T) {
	face := newFakeFace()
	face.faces["img"] = detected("f1")
	svc := NewService(face, nil)

	got, err := svc.Identify(context.Background(), "g", []byte("img"))
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	want := []Identification{{FaceID: "f1", Rectangle: faceapi.FaceRectangle{Top: 20, Width: 30, Height: 40}, Name: constants.UnknownPersonName}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if got[0].Known() {
		t.Error("expected unknown face")
	}
	if face.getPersonCalls != 0 {
		t.Errorf("expected no person lookup, got %d", face.getPersonCalls)
	}
}

func TestIdentify_KnownFace(t *testing.T) {
	face := newFakeFace()
	face.faces["img"] = detected("f1")
	face.candidates["f1"] = []faceapi.Candidate{{PersonID: "p-ada", Confidence: 0.91}, {PersonID: "p-bob", Confidence: 0.6}}
	face.personNames["p-ada"] = "Ada"
	svc := NewService(face, nil)

	got, err := svc.Identify(context.Background(), "g", []byte("img"))
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Name != "Ada" || got[0].PersonID != "p-ada" || got[0].Confidence != 0.91 {
		t.Errorf("unexpected identification %+v", got[0])
	}
}

func TestIdentify_BatchesAndCachesNames(t *testing.T) {
	face := newFakeFace()
	var ids []string
	for i := range 12 {
		id := fmt.Sprintf("f%02d", i)
		ids = append(ids, id)
		if i%2 == 0 {
			face.candidates[id] = []faceapi.Candidate{{PersonID: "p-ada", Confidence: 0.8}}
		}
	}
	face.faces["crowd"] = detected(ids...)
	face.personNames["p-ada"] = "Ada"
	svc := NewService(face, nil)

	got, err := svc.Identify(context.Background(), "g", []byte("crowd"))
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}

	if len(face.identifyBatch) != 2 {
		t.Fatalf("expected 2 identify calls, got %d", len(face.identifyBatch))
	}
	if len(face.identifyBatch[0]) != constants.MaxIdentifyBatch || len(face.identifyBatch[1]) != 2 {
		t.Errorf("unexpected batch sizes %d and %d", len(face.identifyBatch[0]), len(face.identifyBatch[1]))
	}
	if face.getPersonCalls != 1 {
		t.Errorf("expected person name to be looked up once, got %d", face.getPersonCalls)
	}

	for i, id := range got {
		if id.FaceID != ids[i] {
			t.Errorf("result %d: expected face %s, got %s", i, ids[i], id.FaceID)
		}
		wantName := constants.UnknownPersonName
		if i%2 == 0 {
			wantName = "Ada"
		}
		if id.Name != wantName {
			t.Errorf("result %d: expected %s, got %s", i, wantName, id.Name)
		}
	}
}

func TestIdentify_Errors(t *testing.T) {
	t.Run("detect", func(t *testing.T) {
		face := newFakeFace()
		face.detectErr = errors.New("invalid image")
		if _, err := NewService(face, nil).Identify(context.Background(), "g", []byte("x")); err == nil {
			t.Fatal("expected detect error to be returned")
		}
	})

	t.Run("person lookup", func(t *testing.T) {
		face := newFakeFace()
		face.faces["img"] = detected("f1")
		face.candidates["f1"] = []faceapi.Candidate{{PersonID: "p-gone"}}
		if _, err := NewService(face, nil).Identify(context.Background(), "g", []byte("img")); !faceapi.IsNotFound(err) {
			t.Fatalf("expected person not found error, got %v", err)
		}
	})
}

func TestWithMaxCandidates(t *testing.T) {
	svc := NewService(newFakeFace(), nil)
	if svc.maxCandidates() != constants.DefaultMaxCandidates {
		t.Errorf("expected default candidates, got %d", svc.maxCandidates())
	}
	if got := svc.WithMaxCandidates(3).maxCandidates(); got != 3 {
		t.Errorf("expected 3 candidates, got %d", got)
	}
}

func TestFetchImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc("/big.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	})
	mux.HandleFunc("/empty.jpg", func(w http.ResponseWriter, r *http.Request) {})
	server := httptest.NewServer(mux)
	defer server.Close()

	tests := []struct {
		name    string
		path    string
		max     int64
		want    string
		wantErr string
	}{
		{"ok", "/ok.jpg", 0, "jpeg-bytes", ""},
		{"too large", "/big.jpg", 32, "", "exceeds 32 bytes"},
		{"exact limit", "/big.jpg", 64, strings.Repeat("x", 64), ""},
		{"not found", "/missing.jpg", 0, "", "status 404"},
		{"empty", "/empty.jpg", 0, "", "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := FetchImage(context.Background(), server.Client(), server.URL+tt.path, tt.max)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchImage failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("unexpected data %q", data)
			}
		})
	}
}
