package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/usecase"
	"github.com/seion-lab/kintai/pkg/utils/errutil"
	"github.com/seion-lab/kintai/pkg/utils/safe"
)

type scanRequest struct {
	CardUID string `json:"card_uid"`
}

type registerRequest struct {
	Name       string `json:"name"`
	CardUID    string `json:"card_uid"`
	Department string `json:"department"`
}

type recordResponse struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Date      string `json:"date"`
	TimeInAM  string `json:"timeInAM,omitempty"`
	TimeOutAM string `json:"timeOutAM,omitempty"`
	TimeInPM  string `json:"timeInPM,omitempty"`
	TimeOutPM string `json:"timeOutPM,omitempty"`
}

func toRecordResponse(record *model.TimeRecord) recordResponse {
	return recordResponse{
		UserID:    string(record.UserID),
		UserName:  record.UserName,
		Date:      string(record.Date),
		TimeInAM:  record.TimeInAM,
		TimeOutAM: record.TimeOutAM,
		TimeInPM:  record.TimeInPM,
		TimeOutPM: record.TimeOutPM,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(r.Context(), w, data)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid scan request"), http.StatusBadRequest)
		return
	}

	result := s.uc.Scan(r.Context(), types.CardID(req.CardUID))
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid registration request"), http.StatusBadRequest)
		return
	}

	result := s.uc.Register(r.Context(), req.Name, types.CardID(req.CardUID), req.Department)

	statusCode := http.StatusOK
	if !result.Success {
		switch result.Failure {
		case model.RegistrationFailureInvalid:
			statusCode = http.StatusBadRequest
		case model.RegistrationFailureConflict:
			statusCode = http.StatusConflict
		default:
			statusCode = http.StatusInternalServerError
		}
	}
	writeJSON(w, r, statusCode, result)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.ListRecords(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	resp := make([]recordResponse, len(records))
	for i, record := range records {
		resp[i] = toRecordResponse(record)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.ClearRecords(r.Context()); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRegenerateRecords(w http.ResponseWriter, r *http.Request) {
	count, err := s.uc.RegenerateRecords(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrDemoDisabled) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusForbidden)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"processed_count": count})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.ResetAll(r.Context()); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
