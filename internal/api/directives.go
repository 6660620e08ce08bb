package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
	"github.com/barrymcandrews/aurora-home-skill/internal/gateway"
)

// handleDirective accepts one directive and returns its response envelope.
//
//	200  response envelope
//	204  directive not supported; nothing to send back
//	400  malformed request or unsupported payload version
//	500  response failed validation or local misconfiguration
//	502  the channel API failed
func (s *Server) handleDirective(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	req, err := directive.ParseRequest(body)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	outcome, err := s.directives.Handle(r.Context(), req)
	if err != nil {
		s.writeDirectiveError(w, r, req, err)
		return
	}

	if !outcome.Handled {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, outcome.Envelope)
}

func (s *Server) writeDirectiveError(w http.ResponseWriter, r *http.Request, req *directive.Request, err error) {
	status, code := classifyDirectiveError(err)

	log := s.logger.Warn
	if status >= http.StatusInternalServerError {
		log = s.logger.Error
	}
	log("directive failed",
		"name", req.Name(),
		"endpoint", req.EndpointID(),
		"status", status,
		"error", err,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)

	writeError(w, status, code, err.Error())
}

func classifyDirectiveError(err error) (int, string) {
	switch {
	case errors.Is(err, directive.ErrUnsupportedVersion):
		return http.StatusBadRequest, ErrCodeUnsupportedVersion
	case errors.Is(err, directive.ErrInvalidRequest),
		errors.Is(err, directive.ErrMissingEndpoint),
		errors.Is(err, directive.ErrInvalidPayload):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, directive.ErrInvalidResponse):
		return http.StatusInternalServerError, ErrCodeInvalidResponse
	case errors.Is(err, gateway.ErrNoColorPresets):
		return http.StatusInternalServerError, ErrCodeInternal
	default:
		return http.StatusBadGateway, ErrCodeUpstream
	}
}
