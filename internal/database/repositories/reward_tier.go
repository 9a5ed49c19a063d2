package repositories

import (
	"linklift/internal/database/models"

	"gorm.io/gorm"
)

type RewardTierRepository interface {
	FindByTeam(teamID uint) ([]*models.RewardTier, error)
	ReplaceForTeam(teamID uint, tiers []*models.RewardTier) error
}

type rewardTierRepo struct {
	db *gorm.DB
}

func NewRewardTierRepository(db *gorm.DB) RewardTierRepository {
	return &rewardTierRepo{db: db}
}

func (r *rewardTierRepo) FindByTeam(teamID uint) ([]*models.RewardTier, error) {
	var tiers []*models.RewardTier
	err := r.db.Where("team_id = ?", teamID).
		Order("click_threshold DESC").
		Find(&tiers).Error
	return tiers, err
}

// ReplaceForTeam swaps a team's whole schedule in one transaction so a
// reader never observes a half-replaced tier list.
func (r *rewardTierRepo) ReplaceForTeam(teamID uint, tiers []*models.RewardTier) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.RewardTier{}).Error; err != nil {
			return err
		}
		for _, tier := range tiers {
			tier.TeamID = teamID
			if err := tx.Create(tier).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
