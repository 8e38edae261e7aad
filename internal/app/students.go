package app

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/verify"
)

type createStudentRequest struct {
	UCE        string  `json:"uce"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	Semester   int     `json:"semester"`
	PhotoRef   *string `json:"photoRef"`
}

func (a *api) createStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}
	if req.UCE == "" || req.Name == "" || req.Email == "" {
		a.writeErr(w, &verify.ValidationError{Reason: "uce, name and email are required"})
		return
	}
	st := &models.Student{
		UCE:        req.UCE,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Semester:   req.Semester,
		PhotoRef:   req.PhotoRef,
	}
	if err := a.Store.CreateStudent(r.Context(), st); err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": st.ID})
}

// getStudent accepts either the student uuid or the enrollment number.
func (a *api) getStudent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("id")
	var st *models.Student
	var err error
	if id, perr := uuid.Parse(key); perr == nil {
		st, err = a.Store.GetStudent(r.Context(), id)
	} else {
		st, err = a.Store.GetStudentByUCE(r.Context(), key)
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type updateStudentRequest struct {
	Department string  `json:"department"`
	Semester   int     `json:"semester"`
	PhotoRef   *string `json:"photoRef"`
}

func (a *api) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	var req updateStudentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}
	if err := a.Store.UpdateStudentProfile(r.Context(), id, req.Department, req.Semester, req.PhotoRef); err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if err := a.Store.DeleteStudent(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) studentAchievements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	list, err := a.Store.ListByStudent(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type academicRecordRequest struct {
	ExamType     string  `json:"examType"`
	Semester     int     `json:"semester"`
	Subject      string  `json:"subject"`
	MaxMarks     int     `json:"maxMarks"`
	ScoredMarks  int     `json:"scoredMarks"`
	MarksheetRef *string `json:"marksheetRef"`
}

func (a *api) addAcademicRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	var req academicRecordRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		a.writeErr(w, &verify.ValidationError{Reason: err.Error()})
		return
	}
	if req.MaxMarks <= 0 || req.ScoredMarks < 0 || req.ScoredMarks > req.MaxMarks {
		a.writeErr(w, &verify.ValidationError{Reason: "scored marks must be between 0 and max marks"})
		return
	}
	rec := &models.AcademicRecord{
		StudentID:    id,
		ExamType:     req.ExamType,
		Semester:     req.Semester,
		Subject:      req.Subject,
		MaxMarks:     req.MaxMarks,
		ScoredMarks:  req.ScoredMarks,
		MarksheetRef: req.MarksheetRef,
	}
	if err := a.Store.AddAcademicRecord(r.Context(), rec); err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": rec.ID})
}

func (a *api) listAcademicRecords(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	recs, err := a.Store.ListAcademicRecords(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
