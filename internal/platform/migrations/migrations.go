package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the customization context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&generationRecord{},
		&idempotencyKeyRecord{},
	)
}

// Generation schema mirrors the customization Postgres generation log.
type generationRecord struct {
	ID               string         `gorm:"primaryKey;column:id;size:64"`
	SessionID        string         `gorm:"column:session_id;size:64;index"`
	OriginalImageID  string         `gorm:"column:original_image_id;size:128;index"`
	BreedID          string         `gorm:"column:breed_id;size:64"`
	CoatID           string         `gorm:"column:coat_id;size:64"`
	OutfitID         string         `gorm:"column:outfit_id;size:64"`
	MultiAnimal      bool           `gorm:"column:multi_animal"`
	CreditsCharged   int            `gorm:"column:credits_charged"`
	CreditsRemaining *int           `gorm:"column:credits_remaining"`
	VariationIDs     pq.StringArray `gorm:"column:variation_ids;type:text[]"`
	Description      string         `gorm:"column:description;type:text"`
	CreatedAt        time.Time      `gorm:"column:created_at;index"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (generationRecord) TableName() string { return "portrait_generations" }

// Idempotency schema mirrors the customization Postgres idempotency store.
type idempotencyKeyRecord struct {
	Key          string    `gorm:"primaryKey;column:key;size:320"`
	RequestHash  string    `gorm:"column:request_hash;size:128"`
	GenerationID string    `gorm:"column:generation_id;size:64"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (idempotencyKeyRecord) TableName() string { return "generation_idempotency_keys" }
