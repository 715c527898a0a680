package storage

import (
	"tg-aimod/internal/models"

	"gorm.io/gorm"
)

// RuleRepository handles database operations for Rule
type RuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// MigrateTable ensures the Rule table exists
func (r *RuleRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Rule{})
}

// Append adds a rule to the end of the group's rule list
func (r *RuleRepository) Append(groupID int64, text string) error {
	return r.db.Create(&models.Rule{GroupID: groupID, Text: text}).Error
}

// ListByGroup returns the group's rules in insertion order
func (r *RuleRepository) ListByGroup(groupID int64) ([]string, error) {
	var rules []models.Rule
	result := r.db.Where("group_id = ?", groupID).Order("id ASC").Find(&rules)
	if result.Error != nil {
		return nil, result.Error
	}

	texts := make([]string, 0, len(rules))
	for _, rule := range rules {
		texts = append(texts, rule.Text)
	}
	return texts, nil
}
