// Package httpapi serves single-turn bot replies over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vthunder/parley/internal/conversation"
	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/logging"
)

// Bot pairs a definition with its responder
type Bot struct {
	Def       *corpus.Bot
	Responder conversation.Responder
}

// RespondRequest is the body of POST /v1/bots/{bot}/respond
type RespondRequest struct {
	Utterance string `json:"utterance"`
}

// RespondResponse answers one utterance. Exit is set when the utterance
// contained an exit word; Response is then the farewell.
type RespondResponse struct {
	RequestID string `json:"request_id"`
	Bot       string `json:"bot"`
	Response  string `json:"response"`
	Exit      bool   `json:"exit"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// NewRouter builds the routes for the given bots, keyed by name
func NewRouter(bots map[string]Bot) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Get("/v1/bots", func(w http.ResponseWriter, _ *http.Request) {
		names := make([]string, 0, len(bots))
		for name := range bots {
			names = append(names, name)
		}
		sort.Strings(names)
		writeJSON(w, http.StatusOK, map[string]any{"bots": names})
	})
	r.Post("/v1/bots/{bot}/respond", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "bot")
		bot, ok := bots[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown bot " + name})
			return
		}

		var body RespondRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if strings.TrimSpace(body.Utterance) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "utterance is required"})
			return
		}

		writeJSON(w, http.StatusOK, respond(req, name, bot, body.Utterance))
	})
	return r
}

func respond(req *http.Request, name string, bot Bot, utterance string) RespondResponse {
	resp := RespondResponse{RequestID: uuid.NewString(), Bot: name}
	if conversation.IsExit(utterance, bot.Def.ExitWords) {
		resp.Exit = true
		resp.Response = bot.Def.Farewell
		return resp
	}

	text, err := bot.Responder.Respond(req.Context(), utterance)
	if err != nil {
		logging.Info("httpapi", "%s %s failed, using fallback: %v", resp.RequestID, name, err)
	}
	if err != nil || strings.TrimSpace(text) == "" {
		resp.Fallback = true
		text = bot.Def.Fallback
	}
	resp.Response = text
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
