// Package scorer is the HTTP client for the external OCR/matching service
// that scores submitted certificates against form fields.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/achievo/achievement-portal/internal/models"
)

type FieldMatch struct {
	Field      string  `json:"field"`
	FormValue  string  `json:"formValue"`
	Confidence float64 `json:"confidence"`
	Weightage  float64 `json:"weightage"`
}

type FieldMismatch struct {
	Field      string  `json:"field"`
	FormValue  string  `json:"formValue"`
	Suggestion string  `json:"suggestion"`
	Weightage  float64 `json:"weightage"`
}

// Result is the scorer's verdict for one achievement.
type Result struct {
	OverallScore       int                       `json:"overallScore"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
	Matches            []FieldMatch              `json:"matches"`
	Mismatches         []FieldMismatch           `json:"mismatches"`
}

type Client struct {
	base string
	hc   *http.Client

	// fallback thresholds for scorers that return only a bare score
	verifiedAt int
	partialAt  int
}

func New(baseURL string, verifiedAt, partialAt int) *Client {
	return &Client{
		base:       strings.TrimRight(baseURL, "/"),
		hc:         &http.Client{Timeout: 90 * time.Second},
		verifiedAt: verifiedAt,
		partialAt:  partialAt,
	}
}

type scoreRequest struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Details         json.RawMessage `json:"details"`
	CertificatePath *string         `json:"certificatePath,omitempty"`
}

// Score submits the achievement to the scoring service and returns its
// verdict. A missing status in the response is derived from the score via
// the configured thresholds.
func (c *Client) Score(ctx context.Context, a *models.Achievement) (*Result, error) {
	details, err := models.MarshalDetails(a.Details)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	body, err := json.Marshal(scoreRequest{
		ID:              a.ID.String(),
		Type:            string(a.Type),
		Category:        a.Category,
		Details:         details,
		CertificatePath: a.CertificatePath,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("scorer: http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("scorer: decode response: %w", err)
	}
	if res.OverallScore < 0 || res.OverallScore > 100 {
		return nil, fmt.Errorf("scorer: score %d out of range", res.OverallScore)
	}
	if res.VerificationStatus == "" {
		res.VerificationStatus = c.statusFor(res.OverallScore)
	}
	return &res, nil
}

func (c *Client) statusFor(score int) models.VerificationStatus {
	switch {
	case score >= c.verifiedAt:
		return models.StatusVerified
	case score >= c.partialAt:
		return models.StatusPartial
	default:
		return models.StatusFailed
	}
}
