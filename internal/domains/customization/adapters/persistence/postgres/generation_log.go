package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
	"github.com/Apurer/portrait-customizer/internal/shared/projection"
)

var _ ports.GenerationLog = (*GenerationLog)(nil)

// GenerationLog persists generation records in PostgreSQL.
type GenerationLog struct {
	db *gorm.DB
}

// NewGenerationLog wires a PostgreSQL-backed generation log.
func NewGenerationLog(db *gorm.DB) *GenerationLog {
	return &GenerationLog{db: db}
}

// Save upserts the record, keeping the original creation time.
func (l *GenerationLog) Save(ctx context.Context, record *domain.GenerationRecord) (*custtypes.GenerationProjection, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("cannot save nil generation")
	}
	if record.ID == "" {
		return nil, domain.ErrEmptyGenerationID
	}
	row := toGenerationRow(record)
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"breed_id", "coat_id", "outfit_id", "multi_animal", "credits_charged",
			"credits_remaining", "variation_ids", "description", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return l.GetByID(ctx, record.ID)
}

// GetByID loads a record.
func (l *GenerationLog) GetByID(ctx context.Context, id string) (*custtypes.GenerationProjection, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var row generationRow
	if err := l.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrGenerationNotFound
		}
		return nil, err
	}
	return row.toProjection(), nil
}

// ListByImage returns every record for the image, newest first.
func (l *GenerationLog) ListByImage(ctx context.Context, imageID string) ([]*custtypes.GenerationProjection, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var rows []generationRow
	if err := l.db.WithContext(ctx).
		Where("original_image_id = ?", imageID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*custtypes.GenerationProjection, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toProjection())
	}
	return result, nil
}

// SetDescription stores the enrichment description.
func (l *GenerationLog) SetDescription(ctx context.Context, id, description string) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Model(&generationRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"description": strings.TrimSpace(description), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrGenerationNotFound
	}
	return nil
}

func (l *GenerationLog) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres generation log not configured")
	}
	return nil
}

type generationRow struct {
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

func (generationRow) TableName() string { return "portrait_generations" }

func toGenerationRow(rec *domain.GenerationRecord) generationRow {
	return generationRow{
		ID:               rec.ID,
		SessionID:        rec.SessionID,
		OriginalImageID:  rec.OriginalImageID,
		BreedID:          rec.BreedID,
		CoatID:           rec.CoatID,
		OutfitID:         rec.OutfitID,
		MultiAnimal:      rec.MultiAnimal,
		CreditsCharged:   rec.CreditsCharged,
		CreditsRemaining: rec.CreditsRemaining,
		VariationIDs:     pq.StringArray(append([]string(nil), rec.VariationIDs...)),
		Description:      rec.Description,
	}
}

func (r *generationRow) toProjection() *custtypes.GenerationProjection {
	return projection.Of(&domain.GenerationRecord{
		ID:               r.ID,
		SessionID:        r.SessionID,
		OriginalImageID:  r.OriginalImageID,
		BreedID:          r.BreedID,
		CoatID:           r.CoatID,
		OutfitID:         r.OutfitID,
		MultiAnimal:      r.MultiAnimal,
		CreditsCharged:   r.CreditsCharged,
		CreditsRemaining: r.CreditsRemaining,
		VariationIDs:     append([]string(nil), r.VariationIDs...),
		Description:      r.Description,
	}, projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt})
}
