package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
)

type EntityRepository interface {
	SaveEntity(entity *models.ExtractedEntity) error
	GetEntitiesByMessage(messageID int64) ([]*models.ExtractedEntity, error)
	CountEntitiesForMessage(messageID int64) (int, error)
	DeleteEntitiesForMessage(messageID int64) error
}

type entityRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewEntityRepository(db *sqlx.DB, logger *zap.Logger) EntityRepository {
	return &entityRepository{db: db, logger: logger}
}

func (r *entityRepository) SaveEntity(entity *models.ExtractedEntity) error {
	query := `INSERT INTO extracted_entities (message_id, category, value, context)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query, entity.MessageID, entity.Category, entity.Value, entity.Context).
		Scan(&entity.ID, &entity.CreatedAt)
}

func (r *entityRepository) GetEntitiesByMessage(messageID int64) ([]*models.ExtractedEntity, error) {
	var entities []*models.ExtractedEntity
	query := `SELECT * FROM extracted_entities WHERE message_id = $1 ORDER BY id`
	if err := r.db.Select(&entities, query, messageID); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *entityRepository) CountEntitiesForMessage(messageID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM extracted_entities WHERE message_id = $1`
	if err := r.db.Get(&count, query, messageID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *entityRepository) DeleteEntitiesForMessage(messageID int64) error {
	_, err := r.db.Exec(`DELETE FROM extracted_entities WHERE message_id = $1`, messageID)
	return err
}
