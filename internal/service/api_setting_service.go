package service

import (
	"context"
	"strings"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// APISettingService manages the Broadband.is call templates.
type APISettingService struct {
	repo *repository.APISettingRepository
}

func NewAPISettingService(repo *repository.APISettingRepository) *APISettingService {
	return &APISettingService{repo: repo}
}

type APISettingRequest struct {
	Name           string `json:"name" binding:"required"`
	MasterCategory string `json:"masterCategory" binding:"required"`
	Method         string `json:"method" binding:"required"`
	EndpointPath   string `json:"endpointPath" binding:"required"`
	Description    string `json:"description"`
}

func (r *APISettingRequest) toModel(id int) *models.APISetting {
	return &models.APISetting{
		ID:             id,
		Name:           strings.TrimSpace(r.Name),
		MasterCategory: models.MasterCategory(r.MasterCategory),
		Method:         strings.ToUpper(strings.TrimSpace(r.Method)),
		EndpointPath:   strings.TrimSpace(r.EndpointPath),
		Description:    r.Description,
	}
}

func (s *APISettingService) List(ctx context.Context, actor Actor) ([]models.APISetting, error) {
	if err := requireAdmin(actor, "read api settings"); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, utils.PersistenceError("list_api_settings", err)
	}
	return items, nil
}

func (s *APISettingService) Get(ctx context.Context, actor Actor, id int) (*models.APISetting, error) {
	if err := requireAdmin(actor, "read api settings"); err != nil {
		return nil, err
	}
	setting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_api_setting", "API_SETTING_NOT_FOUND", err)
	}
	return setting, nil
}

func (s *APISettingService) Create(ctx context.Context, actor Actor, req *APISettingRequest) (*models.APISetting, error) {
	if err := requireAdmin(actor, "manage api settings"); err != nil {
		return nil, err
	}
	setting := req.toModel(0)
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, storeError("create_api_setting", "API_SETTING_NOT_FOUND", err)
	}
	return setting, nil
}

func (s *APISettingService) Update(ctx context.Context, actor Actor, id int, req *APISettingRequest) (*models.APISetting, error) {
	if err := requireAdmin(actor, "manage api settings"); err != nil {
		return nil, err
	}
	setting := req.toModel(id)
	if err := s.repo.Update(ctx, setting); err != nil {
		return nil, storeError("update_api_setting", "API_SETTING_NOT_FOUND", err)
	}
	return setting, nil
}

func (s *APISettingService) Delete(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor, "manage api settings"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete_api_setting", "API_SETTING_NOT_FOUND", err)
	}
	return nil
}
