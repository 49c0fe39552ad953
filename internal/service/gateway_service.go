package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/diagnostics"
	"github.com/embire2/DayResellers-sub000/internal/metrics"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/utils"
	"github.com/embire2/DayResellers-sub000/pkg/broadband"
)

// EndpointStore loads user products and their endpoints.
type EndpointStore interface {
	GetByID(ctx context.Context, id int) (*models.UserProduct, error)
	GetEndpoint(ctx context.Context, id int) (*models.UserProductEndpoint, error)
}

type APISettingReader interface {
	GetByID(ctx context.Context, id int) (*models.APISetting, error)
}

// GatewayService runs configured Broadband.is calls for user products.
type GatewayService struct {
	router      *CredentialRouter
	endpoints   EndpointStore
	apiSettings APISettingReader
	products    ProductReader
	diag        diagnostics.Recorder
}

func NewGatewayService(router *CredentialRouter, endpoints EndpointStore, apiSettings APISettingReader, products ProductReader, diag diagnostics.Recorder) *GatewayService {
	return &GatewayService{
		router:      router,
		endpoints:   endpoints,
		apiSettings: apiSettings,
		products:    products,
		diag:        diag,
	}
}

// EndpointResult is the outcome of a successful call.
type EndpointResult struct {
	EndpointID     int                   `json:"endpointId"`
	UserProductID  int                   `json:"userProductId"`
	MasterCategory models.MasterCategory `json:"masterCategory"`
	Method         string                `json:"method"`
	Path           string                `json:"path"`
	StatusCode     int                   `json:"statusCode"`
	DurationMs     int64                 `json:"durationMs"`
	Data           json.RawMessage       `json:"data"`
}

// RunEndpoint calls the API configured on an endpoint. The user product's
// username and msisdn override the stored parameters of the same name.
func (s *GatewayService) RunEndpoint(ctx context.Context, actor Actor, endpointID int) (*EndpointResult, error) {
	ep, err := s.endpoints.GetEndpoint(ctx, endpointID)
	if err != nil {
		return nil, storeError("load_endpoint", "ENDPOINT_NOT_FOUND", err)
	}
	up, err := s.endpoints.GetByID(ctx, ep.UserProductID)
	if err != nil {
		return nil, storeError("load_user_product", "USER_PRODUCT_NOT_FOUND", err)
	}
	if !actor.canAccess(up.UserID) {
		return nil, utils.NotFoundError("ENDPOINT_NOT_FOUND", "endpoint not found")
	}
	setting, err := s.apiSettings.GetByID(ctx, ep.APISettingID)
	if err != nil {
		return nil, storeError("load_api_setting", "API_SETTING_NOT_FOUND", err)
	}
	product, err := s.products.GetByID(ctx, up.ProductID)
	if err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}

	category := product.MasterCategory
	if category == "" {
		category = setting.MasterCategory
	}
	path := ep.EndpointPath
	if path == "" {
		path = setting.EndpointPath
	}
	params := ep.CustomParameters.Merge(identityParams(up))

	client, err := s.router.For(category)
	if err != nil {
		s.recordFailure(ep, category, setting.Method, path, err)
		return nil, utils.NewError(utils.ErrUpstream, "CREDENTIALS_MISSING", err.Error())
	}

	start := time.Now()
	resp, err := client.Call(ctx, setting.Method, path, params)
	status := "error"
	var apiErr *broadband.APIError
	switch {
	case err == nil:
		status = strconv.Itoa(resp.StatusCode)
	case errors.As(err, &apiErr):
		status = strconv.Itoa(apiErr.StatusCode)
	}
	metrics.ExternalAPILatency.WithLabelValues(string(category), status).Observe(time.Since(start).Seconds())

	if err != nil {
		s.recordFailure(ep, category, setting.Method, path, err)
		return nil, utils.NewError(utils.ErrUpstream, "UPSTREAM_ERROR", "broadband api call failed").Wrap(err)
	}

	log.Info().
		Int("endpoint_id", ep.ID).
		Int("user_product_id", up.ID).
		Str("category", string(category)).
		Str("method", setting.Method).
		Str("path", path).
		Int("status_code", resp.StatusCode).
		Dur("duration", resp.Duration).
		Msg("Endpoint call completed")

	return &EndpointResult{
		EndpointID:     ep.ID,
		UserProductID:  up.ID,
		MasterCategory: category,
		Method:         setting.Method,
		Path:           path,
		StatusCode:     resp.StatusCode,
		DurationMs:     resp.Duration.Milliseconds(),
		Data:           resp.Body,
	}, nil
}

func (s *GatewayService) recordFailure(ep *models.UserProductEndpoint, category models.MasterCategory, method, path string, err error) {
	log.Error().
		Err(err).
		Int("endpoint_id", ep.ID).
		Str("category", string(category)).
		Str("method", method).
		Str("path", path).
		Msg("Endpoint call failed")
	if s.diag == nil {
		return
	}
	s.diag.Record("broadband", err.Error(), map[string]string{
		"endpointId":     strconv.Itoa(ep.ID),
		"userProductId":  strconv.Itoa(ep.UserProductID),
		"masterCategory": string(category),
		"method":         method,
		"path":           path,
	})
}

func identityParams(up *models.UserProduct) map[string]string {
	out := map[string]string{}
	if up.Username != "" {
		out["username"] = up.Username
	}
	if up.MSISDN != "" {
		out["msisdn"] = up.MSISDN
	}
	return out
}
