package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/cache"
	"github.com/embire2/DayResellers-sub000/internal/events"
	"github.com/embire2/DayResellers-sub000/internal/metrics"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// OrderStore persists product orders and performs their transitions
// atomically.
type OrderStore interface {
	Create(ctx context.Context, o *models.ProductOrder) error
	GetByID(ctx context.Context, id int) (*models.ProductOrder, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]models.ProductOrder, int, error)
	Approve(ctx context.Context, id int, params repository.ApproveParams) (*repository.ApproveResult, error)
	Reject(ctx context.Context, id int, reason string) (*models.ProductOrder, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

type ClientReader interface {
	GetByID(ctx context.Context, id int) (*models.Client, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// OrderService implements the product order lifecycle: pending orders are
// either approved, which provisions a user product, or rejected.
type OrderService struct {
	orders           OrderStore
	products         ProductReader
	clients          ClientReader
	users            UserReader
	publisher        events.Publisher
	chargeOnApproval bool
	now              func() time.Time
}

// NewOrderService constructs an OrderService. When chargeOnApproval is set
// the reseller is debited the pro-rata price inside the approval
// transaction.
func NewOrderService(orders OrderStore, products ProductReader, clients ClientReader, users UserReader, publisher events.Publisher, chargeOnApproval bool) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orders:           orders,
		products:         products,
		clients:          clients,
		users:            users,
		publisher:        publisher,
		chargeOnApproval: chargeOnApproval,
		now:              time.Now,
	}
}

// SubmitOrderRequest is the payload of a new order. ResellerID is only
// honoured for admins placing an order on a reseller's behalf.
type SubmitOrderRequest struct {
	ResellerID      int     `json:"resellerId"`
	ClientID        int     `json:"clientId" binding:"required"`
	ProductID       int     `json:"productId" binding:"required"`
	ProvisionMethod string  `json:"provisionMethod" binding:"required"`
	SimNumber       *string `json:"simNumber"`
	Address         *string `json:"address"`
	ContactName     *string `json:"contactName"`
	ContactPhone    *string `json:"contactPhone"`
	Country         *string `json:"country"`
}

// OrderListRequest filters order listings.
type OrderListRequest struct {
	Status string
	Page   int
	Limit  int
}

// SubmitOrder validates and stores a new pending order.
func (s *OrderService) SubmitOrder(ctx context.Context, actor Actor, req *SubmitOrderRequest) (*models.ProductOrder, error) {
	order, err := s.submit(ctx, actor, req)
	if err != nil {
		metrics.OrderTransitionFailures.WithLabelValues("submit", utils.CodeOf(err)).Inc()
		return nil, err
	}

	metrics.OrdersSubmittedTotal.Inc()
	log.Info().
		Int("order_id", order.ID).
		Int("reseller_id", order.ResellerID).
		Int("product_id", order.ProductID).
		Str("provision_method", string(order.ProvisionMethod)).
		Msg("Order submitted")
	s.publish(ctx, events.NewOrderEvent(events.OrderSubmitted, order, actor.UserID))
	return order, nil
}

func (s *OrderService) submit(ctx context.Context, actor Actor, req *SubmitOrderRequest) (*models.ProductOrder, error) {
	resellerID := actor.UserID
	switch {
	case actor.IsAdmin():
		if req.ResellerID <= 0 {
			return nil, utils.ValidationError("RESELLER_REQUIRED", "resellerId is required when an admin submits an order")
		}
		resellerID = req.ResellerID
	case actor.Role != models.RoleReseller:
		return nil, utils.ForbiddenError("only resellers can submit orders")
	case req.ResellerID != 0 && req.ResellerID != actor.UserID:
		return nil, utils.ForbiddenError("resellers can only submit orders for themselves")
	}

	order := &models.ProductOrder{
		ResellerID:      resellerID,
		ClientID:        req.ClientID,
		ProductID:       req.ProductID,
		Status:          models.OrderStatusPending,
		ProvisionMethod: models.ProvisionMethod(strings.ToLower(strings.TrimSpace(req.ProvisionMethod))),
		SimNumber:       trimmed(req.SimNumber),
		Address:         trimmed(req.Address),
		ContactName:     trimmed(req.ContactName),
		ContactPhone:    trimmed(req.ContactPhone),
		Country:         trimmed(req.Country),
	}
	if order.ProvisionMethod == models.ProvisionCourier && order.Country == nil {
		country := models.DefaultCountry
		order.Country = &country
	}
	if problem := order.ProvisioningProblem(); problem != "" {
		return nil, utils.ValidationError("INVALID_PROVISIONING", problem)
	}
	if err := models.Validate(order); err != nil {
		return nil, utils.ValidationError("VALIDATION_ERROR", err.Error()).Wrap(err)
	}

	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}
	if product.Status != models.ProductStatusActive {
		return nil, utils.ValidationError("PRODUCT_INACTIVE", "product is not available for ordering")
	}

	client, err := s.clients.GetByID(ctx, order.ClientID)
	if err != nil {
		return nil, storeError("load_client", "CLIENT_NOT_FOUND", err)
	}
	if client.ResellerID != resellerID {
		return nil, utils.ForbiddenError("client does not belong to the reseller")
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return nil, utils.ValidationError("INVALID_REFERENCE", "client or product no longer exists").Wrap(err)
		}
		return nil, storeError("create_order", "INVALID_REFERENCE", err)
	}
	return order, nil
}

// ApproveOrder activates a pending order and provisions its user product
// in one transaction. Approving a non-pending order fails with
// ErrValidation and changes nothing.
func (s *OrderService) ApproveOrder(ctx context.Context, id int, actor Actor) (*models.ProductOrder, error) {
	if err := requireAdmin(actor, "approve orders"); err != nil {
		metrics.OrderTransitionFailures.WithLabelValues("approve", utils.CodeOf(err)).Inc()
		return nil, err
	}

	result, err := s.approve(ctx, id)
	if err != nil {
		metrics.OrderTransitionFailures.WithLabelValues("approve", utils.CodeOf(err)).Inc()
		logTransitionFailure("approve", id, err)
		return nil, err
	}

	metrics.OrdersApprovedTotal.Inc()
	evt := log.Info().
		Int("order_id", result.Order.ID).
		Int("reseller_id", result.Order.ResellerID).
		Int("user_product_id", result.UserProduct.ID).
		Int("admin_id", actor.UserID)
	if result.Charge != nil {
		evt = evt.Str("charged", result.Charge.Amount.Neg().StringFixed(2))
	}
	evt.Msg("Order approved and provisioned")

	ev := events.NewOrderEvent(events.OrderApproved, result.Order, actor.UserID)
	ev.UserProductID = result.UserProduct.ID
	s.publish(ctx, ev)
	return result.Order, nil
}

func (s *OrderService) approve(ctx context.Context, id int) (*repository.ApproveResult, error) {
	params := repository.ApproveParams{}
	if s.chargeOnApproval {
		charge, err := s.approvalCharge(ctx, id)
		if err != nil {
			return nil, err
		}
		params = *charge
	}

	result, err := s.orders.Approve(ctx, id, params)
	if err != nil {
		return nil, orderError(id, repository.StageTransition, err)
	}
	return result, nil
}

// approvalCharge prices the order for its reseller at the approval date in
// the billing zone, the same day a quote would use. The order state read here is advisory; the transition itself is
// conditional.
func (s *OrderService) approvalCharge(ctx context.Context, id int) (*repository.ApproveParams, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, orderError(id, "load_order", err)
	}
	if order.Status != models.OrderStatusPending {
		return nil, orderError(id, "load_order", fmt.Errorf("%w: status is %s", repository.ErrOrderNotPending, order.Status))
	}
	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}
	reseller, err := s.users.GetByID(ctx, order.ResellerID)
	if err != nil {
		return nil, storeError("load_reseller", "USER_NOT_FOUND", err)
	}

	price := CalculateProRataPrice(product.PriceForGroup(reseller.ResellerGroup), s.now().In(cache.BillingZone))
	return &repository.ApproveParams{
		Charge: price.FinalPrice,
		ChargeNote: fmt.Sprintf("%s for order #%d (%d%% pro-rata discount)",
			product.Name, order.ID, price.DiscountPercentage),
	}, nil
}

// RejectOrder moves a pending order to rejected. A blank reason fails with
// ErrValidation and leaves the order pending.
func (s *OrderService) RejectOrder(ctx context.Context, id int, actor Actor, reason string) (*models.ProductOrder, error) {
	order, err := s.reject(ctx, id, actor, reason)
	if err != nil {
		metrics.OrderTransitionFailures.WithLabelValues("reject", utils.CodeOf(err)).Inc()
		logTransitionFailure("reject", id, err)
		return nil, err
	}

	metrics.OrdersRejectedTotal.Inc()
	log.Info().
		Int("order_id", order.ID).
		Int("admin_id", actor.UserID).
		Str("reason", reason).
		Msg("Order rejected")
	s.publish(ctx, events.NewOrderEvent(events.OrderRejected, order, actor.UserID))
	return order, nil
}

func (s *OrderService) reject(ctx context.Context, id int, actor Actor, reason string) (*models.ProductOrder, error) {
	if err := requireAdmin(actor, "reject orders"); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.ValidationError("REJECTION_REASON_REQUIRED", "rejectionReason is required").ForOrder(id)
	}
	if len(reason) > 1000 {
		return nil, utils.ValidationError("VALIDATION_ERROR", "rejectionReason must be at most 1000 characters").ForOrder(id)
	}

	order, err := s.orders.Reject(ctx, id, reason)
	if err != nil {
		return nil, orderError(id, repository.StageTransition, err)
	}
	return order, nil
}

// GetOrder returns an order visible to the actor.
func (s *OrderService) GetOrder(ctx context.Context, id int, actor Actor) (*models.ProductOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, orderError(id, "load_order", err)
	}
	if !actor.canAccess(order.ResellerID) {
		// Other resellers' orders are reported as missing.
		return nil, utils.NotFoundError("ORDER_NOT_FOUND", "order not found").ForOrder(id)
	}
	return order, nil
}

// ListOrders returns all orders for admins and the actor's own orders for
// resellers.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, req OrderListRequest) ([]models.ProductOrder, int, error) {
	filter := repository.OrderFilter{Page: repository.Page{Page: req.Page, Limit: req.Limit}}
	if !actor.IsAdmin() {
		id := actor.UserID
		filter.ResellerID = &id
	}
	if req.Status != "" {
		status := models.OrderStatus(req.Status)
		switch status {
		case models.OrderStatusPending, models.OrderStatusActive, models.OrderStatusRejected:
			filter.Status = &status
		default:
			return nil, 0, utils.ValidationError("INVALID_STATUS", "status must be one of pending, active, rejected")
		}
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, utils.PersistenceError("list_orders", err)
	}
	return orders, total, nil
}

// publish hands the event to the configured sinks. Sinks log their own
// failures and a failed publish never undoes a committed transition.
func (s *OrderService) publish(ctx context.Context, ev *events.OrderEvent) {
	_ = s.publisher.Publish(context.WithoutCancel(ctx), ev)
}

func logTransitionFailure(transition string, id int, err error) {
	evt := log.Warn()
	if utils.StatusFor(utils.KindOf(err)) >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).
		Str("transition", transition).
		Int("order_id", id).
		Str("code", utils.CodeOf(err)).
		Msg("Order transition failed")
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
