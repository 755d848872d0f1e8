package room

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func (s *Server) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.rdb == nil {
		return
	}

	body := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("marshal event")
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}
