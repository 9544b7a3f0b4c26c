package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// tagService handles tag-related business logic. Tags carry no balance, so
// deleting one involves no counter work, only clearing the join rows.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

// CreateTag creates a new tag.
func (s *tagService) CreateTag(teamID, name, color string) (*models.Tag, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}

	tag := &models.Tag{
		TeamID: teamID,
		Name:   name,
		Color:  color,
	}

	if err := s.db.Create(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// GetTeamTags retrieves a paginated list of tags for a team.
func (s *tagService) GetTeamTags(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Tag{}).Where("team_id = ?", teamID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var tags []models.Tag
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(tags, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTagByID retrieves a tag by ID for a specific team.
func (s *tagService) GetTagByID(teamID, tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.Where("id = ? AND team_id = ?", tagID, teamID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

// DeleteTag removes a tag and its transaction associations.
func (s *tagService) DeleteTag(teamID, tagID string) error {
	tag, err := s.GetTagByID(teamID, tagID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tag).Association("Transactions").Clear(); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(tag).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
