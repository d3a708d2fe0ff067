package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/turtacn/dockrmsd/pkg/types/common"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

const scorePath = "/api/v1/score"

// Structure is one MOL2 document to upload. Name is reported back as the
// file name in errors and in the response.
type Structure struct {
	Name    string
	Content io.Reader
}

// ScoreRequest pairs a reference pose with a candidate pose.
type ScoreRequest struct {
	Reference Structure
	Candidate Structure
	// Mapping asks for the atom correspondence in the response.
	Mapping bool
}

// Score uploads both structures and returns the server's result. Scoring
// failures come back as *APIError with an RMSD_* code.
func (c *Client) Score(ctx context.Context, req ScoreRequest) (*scoringtypes.ScoreResponse, error) {
	body, contentType, err := encodeScoreForm(req)
	if err != nil {
		return nil, err
	}
	if c.scoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.scoreTimeout)
		defer cancel()
	}

	path := scorePath
	if req.Mapping || c.mapping {
		path += "?mapping=true"
	}

	var resp common.APIResponse[scoringtypes.ScoreResponse]
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: body, contentType: contentType}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ScoreFiles is Score for two files on disk.
func (c *Client) ScoreFiles(ctx context.Context, referencePath, candidatePath string, mapping bool) (*scoringtypes.ScoreResponse, error) {
	ref, err := os.Open(referencePath)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer ref.Close()

	cand, err := os.Open(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("open candidate: %w", err)
	}
	defer cand.Close()

	return c.Score(ctx, ScoreRequest{
		Reference: Structure{Name: filepath.Base(referencePath), Content: ref},
		Candidate: Structure{Name: filepath.Base(candidatePath), Content: cand},
		Mapping:   mapping,
	})
}

func encodeScoreForm(req ScoreRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	parts := []struct {
		field string
		s     Structure
	}{
		{"reference", req.Reference},
		{"candidate", req.Candidate},
	}
	for _, p := range parts {
		if p.s.Content == nil {
			return nil, "", fmt.Errorf("%s structure is required", p.field)
		}
		name := p.s.Name
		if name == "" {
			name = p.field + ".mol2"
		}
		fw, err := mw.CreateFormFile(p.field, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, p.s.Content); err != nil {
			return nil, "", fmt.Errorf("read %s structure: %w", p.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// Health is the liveness report of GET /healthz.
type Health struct {
	Status  common.HealthStatus `json:"status"`
	Version string              `json:"version"`
	Uptime  string              `json:"uptime"`
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/healthz", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

//Personal.AI order the ending
