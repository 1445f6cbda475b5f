package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/skyhook-labs/cloudgate/pkg/gateway"
)

//go:embed openapi.json
var openAPIDocument []byte

// maxBodyBytes bounds request bodies; a command line has no business being
// bigger than this.
const maxBodyBytes = 1 << 20

type runRequest struct {
	Command string `json:"command"`
}

type errorBody struct {
	Error string `json:"error"`
}

type textBody struct {
	Text string `json:"text"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleRun serves POST /run-<provider>.
func (s *Server) handleRun(p gateway.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gw, ok := s.gateways[p]
		if !ok {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "failed to read body"})
			return
		}
		var req runRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}
		if req.Command == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing command"})
			return
		}

		resp, err := gw.Run(r.Context(), req.Command)
		if err != nil {
			var rejection *gateway.RejectionError
			if errors.As(err, &rejection) {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: rejection.Reason})
				return
			}
			s.logger.Error("gateway failure", "provider", p, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			return
		}

		if resp.Status != gateway.StatusSuccess {
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleUsersWithoutMFA serves the canned IAM posture report.
func (s *Server) handleUsersWithoutMFA(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.gateways[gateway.ProviderAWS]
	if !ok {
		writeJSON(w, http.StatusInternalServerError, textBody{Text: "AWS gateway not configured"})
		return
	}

	text, err := gw.UsersWithoutMFA(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, textBody{Text: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, textBody{Text: text})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(openAPIDocument)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
