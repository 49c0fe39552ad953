package service

import (
	"errors"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// storeError translates a repository failure into an API error. notFound
// is the code used when the row does not exist.
func storeError(stage, notFound string, err error) error {
	var verr *models.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return utils.ValidationError("VALIDATION_ERROR", verr.Error()).Wrap(err)
	case repository.IsNotFound(err):
		return utils.NotFoundError(notFound, "resource not found")
	case errors.Is(err, repository.ErrDuplicate):
		return utils.ValidationError("DUPLICATE", "a record with the same unique value already exists")
	case errors.Is(err, repository.ErrInUse):
		return utils.ValidationError("IN_USE", "record is still referenced and cannot be removed")
	default:
		return utils.PersistenceError(stage, err)
	}
}

// orderError translates failures of an order transition. Provisioning
// failures are rolled back with the status change and reported at stage
// provision.
func orderError(orderID int, stage string, err error) error {
	var stageErr *repository.StageError
	var verr *models.ValidationError
	switch {
	case errors.As(err, &stageErr) && stageErr.Stage == repository.StageProvision:
		return utils.NewError(utils.ErrPartialProvisioning, "PARTIAL_PROVISIONING",
			"user product could not be created; order left pending").
			ForOrder(orderID).AtStage(repository.StageProvision).Wrap(err)
	case errors.As(err, &verr):
		return utils.ValidationError("VALIDATION_ERROR", verr.Error()).ForOrder(orderID).Wrap(err)
	case repository.IsNotFound(err):
		return utils.NotFoundError("ORDER_NOT_FOUND", "order not found").ForOrder(orderID)
	case errors.Is(err, repository.ErrOrderNotPending):
		return utils.ValidationError("INVALID_STATE", "only pending orders can transition").ForOrder(orderID).Wrap(err)
	case errors.Is(err, repository.ErrInsufficientCredit):
		return utils.NewError(utils.ErrInsufficientCredit, "INSUFFICIENT_CREDIT",
			"reseller credit does not cover the pro-rata charge").ForOrder(orderID).AtStage(repository.StageCharge).Wrap(err)
	case errors.As(err, &stageErr):
		return utils.PersistenceError(stageErr.Stage, err).ForOrder(orderID)
	default:
		return utils.PersistenceError(stage, err).ForOrder(orderID)
	}
}
