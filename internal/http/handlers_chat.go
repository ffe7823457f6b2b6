package http

import (
	"errors"
	"net/http"

	"spendlog/internal/assistant"
	applog "spendlog/internal/log"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply    assistant.Message   `json:"reply"`
	Messages []assistant.Message `json:"messages"`
}

func (s *Server) handleChatTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"messages": s.chat.Messages()})
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	reply, err := s.chat.Send(r.Context(), sanitizeInput(req.Message))
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, assistant.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeServerError(w, r, err.Error())
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Chat reply sent",
		applog.FieldOperation, applog.OpChat,
		"reply_length", len(reply.Content))
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Messages: s.chat.Messages()})
}
