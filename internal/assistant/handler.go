package assistant

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type Request struct {
	Message string `json:"message"`
}

// Response segue o formato do frontend: response em caso de sucesso, error caso contrário.
type Response struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Handler struct {
	Generator Generator
	Resume    ResumeSource
	Logger    *zap.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var req Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeJSON(w, http.StatusBadRequest, Response{Error: "message is required"})
		return
	}

	var resume []byte
	if h.Resume != nil {
		var err error
		resume, err = h.Resume.Resume(r.Context())
		if err != nil {
			log.Error("resume unavailable", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Response{Error: err.Error()})
			return
		}
	}

	answer, err := h.Generator.Generate(r.Context(), msg, resume)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			log.Debug("client went away during generation", zap.Error(err))
		} else {
			log.Error("generation failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, Response{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Response: answer})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
