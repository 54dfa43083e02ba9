package services

import (
	"context"
	"encoding/json"
	"fmt"

	"streetkitchen/db"
)

const outboundRole = "system/outbound"

// SaveOutboundMessage logs a message the service sent to a chat, so a card
// can be traced back to the order event that produced it.
func SaveOutboundMessage(ctx context.Context, chatID int64, content string, meta map[string]interface{}) error {
	metaJSON := "{}"
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		metaJSON = string(b)
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO messages (chat_id, role, content, meta)
		VALUES ($1, $2, $3, $4::jsonb)`,
		chatID, outboundRole, content, metaJSON,
	)
	return err
}
