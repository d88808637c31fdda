package services

import (
	"encoding/json"

	"go.uber.org/zap"
)

// SyncResult acknowledges an offline sync batch
type SyncResult struct {
	Status        string `json:"status"`
	ReceivedItems int    `json:"received_items"`
}

// AcknowledgeSync accepts a batch from an offline client without writing
// anything. received_items counts the top-level keys of the payload.
func AcknowledgeSync(userID string, payload map[string]json.RawMessage) SyncResult {
	fields := []zap.Field{zap.String("user_id", userID), zap.Int("keys", len(payload))}
	for _, key := range []string{"appointments", "clients"} {
		var items []json.RawMessage
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &items) == nil {
			fields = append(fields, zap.Int(key, len(items)))
		}
	}
	zap.L().Info("sync batch received", fields...)

	return SyncResult{Status: "sync completed", ReceivedItems: len(payload)}
}
