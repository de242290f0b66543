// Package httptransport is the thin HTTP layer over the conversation
// engine. It owns the gateway envelope and error translation and nothing
// else.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"sikaloan/internal/menu"
	"sikaloan/internal/platform/middleware"
	"sikaloan/pkg/domainerrors"
)

//go:generate mockgen -source=handler.go -destination=mocks/engine_mocks.go -package=mocks Engine

// Engine is the conversation engine the handler delegates to.
type Engine interface {
	Handle(ctx context.Context, msisdn, input string) (menu.Response, error)
}

// msgServiceError is the only text a subscriber ever sees for an internal
// fault; details stay in the logs.
const msgServiceError = "An error occurred. Please try again later."

// Handler serves the USSD callback endpoint.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

func NewHandler(engine Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// HandleUSSD processes one gateway callback.
func (h *Handler) HandleUSSD(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ussdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, ussdResponse{Msg: "Malformed request", MsgType: false})
		return
	}
	if req.MSISDN == "" {
		writeEnvelope(w, http.StatusBadRequest, ussdResponse{Msg: "Missing MSISDN", MsgType: false})
		return
	}

	resp, err := h.engine.Handle(ctx, req.MSISDN, req.UserData)
	if err != nil {
		code := domainerrors.CodeOf(err)
		if code == domainerrors.CodeBadRequest {
			writeEnvelope(w, http.StatusBadRequest, ussdResponse{
				MSISDN: req.MSISDN, Msg: "Invalid MSISDN", MsgType: false,
			})
			return
		}
		// Session state was left untouched, so the gateway can retry.
		h.logger.ErrorContext(ctx, "ussd request failed",
			"error", err,
			"msisdn", req.MSISDN,
			"request_id", middleware.GetRequestID(ctx),
		)
		writeEnvelope(w, domainerrors.ToHTTPStatus(code), ussdResponse{
			MSISDN: req.MSISDN, Msg: msgServiceError, MsgType: false,
		})
		return
	}

	writeEnvelope(w, http.StatusOK, ussdResponse{
		UserID:  "USER-" + req.MSISDN,
		MSISDN:  req.MSISDN,
		Msg:     resp.Message,
		MsgType: resp.Continue,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp ussdResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
