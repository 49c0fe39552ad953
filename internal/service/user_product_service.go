package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// UserProductService manages provisioned products and their endpoints.
type UserProductService struct {
	userProductRepo *repository.UserProductRepository
	productRepo     ProductReader
	userRepo        UserReader
	apiSettingRepo  *repository.APISettingRepository
}

func NewUserProductService(userProductRepo *repository.UserProductRepository, productRepo ProductReader, userRepo UserReader, apiSettingRepo *repository.APISettingRepository) *UserProductService {
	return &UserProductService{
		userProductRepo: userProductRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
		apiSettingRepo:  apiSettingRepo,
	}
}

// AssignRequest provisions a product for a user without an order.
type AssignRequest struct {
	UserID    int     `json:"userId" binding:"required"`
	ProductID int     `json:"productId" binding:"required"`
	Username  string  `json:"username"`
	MSISDN    string  `json:"msisdn"`
	SimNumber *string `json:"simNumber"`
	Status    string  `json:"status"`
	Comments  *string `json:"comments"`
}

type UpdateUserProductRequest struct {
	Username  *string `json:"username"`
	MSISDN    *string `json:"msisdn"`
	SimNumber *string `json:"simNumber"`
	Status    *string `json:"status"`
	Comments  *string `json:"comments"`
}

type EndpointRequest struct {
	APISettingID     int               `json:"apiSettingId" binding:"required"`
	EndpointPath     string            `json:"endpointPath"`
	CustomParameters map[string]string `json:"customParameters"`
}

// Assign creates a user product directly.
func (s *UserProductService) Assign(ctx context.Context, actor Actor, req *AssignRequest) (*models.UserProduct, error) {
	if err := requireAdmin(actor, "assign products"); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, storeError("load_user", "USER_NOT_FOUND", err)
	}
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}

	up := &models.UserProduct{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Username:  strings.TrimSpace(req.Username),
		MSISDN:    strings.TrimSpace(req.MSISDN),
		SimNumber: trimmed(req.SimNumber),
		Status:    models.UserProductActive,
		Comments:  trimmed(req.Comments),
	}
	if req.Status != "" {
		up.Status = models.UserProductStatus(req.Status)
	}
	if err := s.userProductRepo.Create(ctx, up); err != nil {
		return nil, storeError("create_user_product", "USER_PRODUCT_NOT_FOUND", err)
	}
	log.Info().Int("user_product_id", up.ID).Int("user_id", up.UserID).Int("product_id", up.ProductID).Msg("Product assigned")
	return up, nil
}

// List returns the actor's products. Admins may pass userID to list
// another user's products, or 0 for all.
func (s *UserProductService) List(ctx context.Context, actor Actor, userID int) ([]models.UserProduct, error) {
	var (
		items []models.UserProduct
		err   error
	)
	switch {
	case !actor.IsAdmin():
		items, err = s.userProductRepo.ListByUser(ctx, actor.UserID)
	case userID > 0:
		items, err = s.userProductRepo.ListByUser(ctx, userID)
	default:
		items, err = s.userProductRepo.List(ctx)
	}
	if err != nil {
		return nil, utils.PersistenceError("list_user_products", err)
	}
	return items, nil
}

// Get returns a user product visible to the actor.
func (s *UserProductService) Get(ctx context.Context, actor Actor, id int) (*models.UserProduct, error) {
	up, err := s.userProductRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_user_product", "USER_PRODUCT_NOT_FOUND", err)
	}
	if !actor.canAccess(up.UserID) {
		return nil, utils.NotFoundError("USER_PRODUCT_NOT_FOUND", "user product not found")
	}
	return up, nil
}

func (s *UserProductService) Update(ctx context.Context, actor Actor, id int, req *UpdateUserProductRequest) (*models.UserProduct, error) {
	if err := requireAdmin(actor, "update user products"); err != nil {
		return nil, err
	}
	up, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		up.Username = strings.TrimSpace(*req.Username)
	}
	if req.MSISDN != nil {
		up.MSISDN = strings.TrimSpace(*req.MSISDN)
	}
	if req.SimNumber != nil {
		up.SimNumber = trimmed(req.SimNumber)
	}
	if req.Status != nil {
		up.Status = models.UserProductStatus(*req.Status)
	}
	if req.Comments != nil {
		up.Comments = trimmed(req.Comments)
	}
	if err := s.userProductRepo.Update(ctx, up); err != nil {
		return nil, storeError("update_user_product", "USER_PRODUCT_NOT_FOUND", err)
	}
	return up, nil
}

func (s *UserProductService) Delete(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor, "delete user products"); err != nil {
		return err
	}
	if err := s.userProductRepo.Delete(ctx, id); err != nil {
		return storeError("delete_user_product", "USER_PRODUCT_NOT_FOUND", err)
	}
	log.Info().Int("user_product_id", id).Int("admin_id", actor.UserID).Msg("User product deleted")
	return nil
}

// AddEndpoint attaches an API setting to a user product. A blank path
// uses the setting's path.
func (s *UserProductService) AddEndpoint(ctx context.Context, actor Actor, userProductID int, req *EndpointRequest) (*models.UserProductEndpoint, error) {
	if err := requireAdmin(actor, "manage endpoints"); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, userProductID); err != nil {
		return nil, err
	}
	setting, err := s.apiSettingRepo.GetByID(ctx, req.APISettingID)
	if err != nil {
		return nil, storeError("load_api_setting", "API_SETTING_NOT_FOUND", err)
	}

	ep := &models.UserProductEndpoint{
		UserProductID:    userProductID,
		APISettingID:     setting.ID,
		EndpointPath:     strings.TrimSpace(req.EndpointPath),
		CustomParameters: models.Parameters(req.CustomParameters),
	}
	if ep.EndpointPath == "" {
		ep.EndpointPath = setting.EndpointPath
	}
	if err := s.userProductRepo.CreateEndpoint(ctx, ep); err != nil {
		return nil, storeError("create_endpoint", "ENDPOINT_NOT_FOUND", err)
	}
	return ep, nil
}

func (s *UserProductService) ListEndpoints(ctx context.Context, actor Actor, userProductID int) ([]models.UserProductEndpoint, error) {
	if _, err := s.Get(ctx, actor, userProductID); err != nil {
		return nil, err
	}
	endpoints, err := s.userProductRepo.ListEndpoints(ctx, userProductID)
	if err != nil {
		return nil, utils.PersistenceError("list_endpoints", err)
	}
	return endpoints, nil
}

func (s *UserProductService) DeleteEndpoint(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor, "manage endpoints"); err != nil {
		return err
	}
	if err := s.userProductRepo.DeleteEndpoint(ctx, id); err != nil {
		return storeError("delete_endpoint", "ENDPOINT_NOT_FOUND", err)
	}
	return nil
}
