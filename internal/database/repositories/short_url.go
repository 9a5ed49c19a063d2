package repositories

import (
	"linklift/internal/database/models"

	"gorm.io/gorm"
)

type ShortURLRepository interface {
	Create(url *models.ShortURL) error
	FindByCode(code string) (*models.ShortURL, error)
	ListByTeam(teamID uint, limit int, offset int) ([]*models.ShortURL, error)
	IncrementClickCount(id uint) error
	Delete(id uint) error
}

type shortURLRepo struct {
	db *gorm.DB
}

func NewShortURLRepository(db *gorm.DB) ShortURLRepository {
	return &shortURLRepo{db: db}
}

func (r *shortURLRepo) Create(url *models.ShortURL) error {
	return r.db.Create(url).Error
}

func (r *shortURLRepo) FindByCode(code string) (*models.ShortURL, error) {
	var url models.ShortURL
	err := r.db.Where("code = ?", code).First(&url).Error
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (r *shortURLRepo) ListByTeam(teamID uint, limit int, offset int) ([]*models.ShortURL, error) {
	var urls []*models.ShortURL
	err := r.db.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&urls).Error
	return urls, err
}

// IncrementClickCount bumps the denormalized counter atomically in SQL
// so concurrent clicks on the same URL never lose updates.
func (r *shortURLRepo) IncrementClickCount(id uint) error {
	return r.db.Exec(
		"UPDATE short_urls SET click_count = click_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	).Error
}

func (r *shortURLRepo) Delete(id uint) error {
	return r.db.Delete(&models.ShortURL{}, id).Error
}
