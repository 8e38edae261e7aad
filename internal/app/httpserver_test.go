package app

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/report"
	"github.com/achievo/achievement-portal/internal/verify"
)

func TestErrorStatusMapping(t *testing.T) {
	a := &api{Deps: Deps{Log: zap.NewNop()}}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"verify validation", &verify.ValidationError{Reason: "bad decision"}, http.StatusBadRequest},
		{"report validation", &report.ValidationError{Reason: "no fields"}, http.StatusBadRequest},
		{"score too low", &verify.ScoreTooLowError{Score: 40, Threshold: 50}, http.StatusUnprocessableEntity},
		{"not scored", &verify.NotScoredError{}, http.StatusUnprocessableEntity},
		{"already decided", verify.ErrAlreadyDecided, http.StatusConflict},
		{"not found", verify.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", verify.ErrNotFound), http.StatusNotFound},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.writeErr(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Fatalf("content type = %q", ct)
			}
		})
	}
}

func TestEncoderForFormats(t *testing.T) {
	for _, format := range []string{"csv", "pdf", "docx", "xlsx"} {
		enc, ct, ok := encoderFor(format)
		if !ok || enc == nil || ct == "" {
			t.Fatalf("format %q not resolved", format)
		}
	}
	if _, _, ok := encoderFor("html"); ok {
		t.Fatal("html should not resolve to an encoder")
	}
}

func TestDecideLimiterSerializesSameID(t *testing.T) {
	l := NewDecideLimiter()
	id := uuid.New()

	var inCritical, maxSeen int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(id)
			mu.Lock()
			inCritical++
			if inCritical > maxSeen {
				maxSeen = inCritical
			}
			mu.Unlock()

			mu.Lock()
			inCritical--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("critical section overlap: %d", maxSeen)
	}
}
