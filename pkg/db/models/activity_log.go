package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rattapoomjame/Sort/pkg/enums"
)

// ActivityLog is the best-effort admin audit feed. Writes never fail the
// operation that produced them.
type ActivityLog struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type       enums.ActivityType `gorm:"column:type;type:text;not null;index"`
	ActorPhone *string            `gorm:"column:actor_phone"`
	Message    string             `gorm:"column:message;not null"`
	Metadata   json.RawMessage    `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
