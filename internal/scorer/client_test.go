package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/achievo/achievement-portal/internal/models"
)

func testAchievement() *models.Achievement {
	return &models.Achievement{
		ID:       uuid.New(),
		Type:     models.TypeCoCurricular,
		Category: "Hackathon",
		Details: models.CompetitionDetails{
			EventName: "Smart India Hackathon",
			Position:  models.PositionWinner,
		},
	}
}

func TestScoreUsesServerVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/score" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["category"] != "Hackathon" {
			t.Errorf("category = %v", req["category"])
		}
		_ = json.NewEncoder(w).Encode(Result{
			OverallScore:       91,
			VerificationStatus: models.StatusVerified,
			Matches:            []FieldMatch{{Field: "name", Confidence: 0.97}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 80, 50)
	res, err := c.Score(context.Background(), testAchievement())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.OverallScore != 91 || res.VerificationStatus != models.StatusVerified {
		t.Fatalf("got %d/%s", res.OverallScore, res.VerificationStatus)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("matches = %d", len(res.Matches))
	}
}

func TestScoreDerivesStatusFromThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  models.VerificationStatus
	}{
		{95, models.StatusVerified},
		{80, models.StatusVerified},
		{79, models.StatusPartial},
		{50, models.StatusPartial},
		{49, models.StatusFailed},
		{0, models.StatusFailed},
	}
	for _, tc := range cases {
		score := tc.score
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"overallScore": score})
		}))
		c := New(srv.URL, 80, 50)
		res, err := c.Score(context.Background(), testAchievement())
		srv.Close()
		if err != nil {
			t.Fatalf("score %d: %v", tc.score, err)
		}
		if res.VerificationStatus != tc.want {
			t.Errorf("score %d: status = %s, want %s", tc.score, res.VerificationStatus, tc.want)
		}
	}
}

func TestScoreRejectsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"overallScore": 140})
	}))
	defer srv.Close()

	c := New(srv.URL, 80, 50)
	if _, err := c.Score(context.Background(), testAchievement()); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestScoreSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "certificate unreadable", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 80, 50)
	if _, err := c.Score(context.Background(), testAchievement()); err == nil {
		t.Fatal("expected http error")
	}
}
