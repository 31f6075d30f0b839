package service

import (
	"context"
	"log/slog"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/internal/shop"
	"protonshop/internal/ws"
	"protonshop/pkg/validator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CheckoutRequest carries the customer fields required to place an order.
type CheckoutRequest struct {
	CustomerName         string     `json:"customer_name" validate:"required"`
	CustomerPhone        string     `json:"customer_phone" validate:"required"`
	CustomerAddress      string     `json:"customer_address" validate:"required"`
	CustomerMunicipio    string     `json:"customer_municipio" validate:"required"`
	CustomerDepartamento string     `json:"customer_departamento" validate:"required"`
	UserID               *uuid.UUID `json:"-"`
}

func (r *CheckoutRequest) trim() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.CustomerAddress = strings.TrimSpace(r.CustomerAddress)
	r.CustomerMunicipio = strings.TrimSpace(r.CustomerMunicipio)
	r.CustomerDepartamento = strings.TrimSpace(r.CustomerDepartamento)
}

// BatchResult summarises a best-effort batch; one failure never stops the rest.
type BatchResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req CheckoutRequest, cart *shop.Ledger) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	SetShippingCost(ctx context.Context, id uuid.UUID, cost any) (*model.Order, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, shippingCost any) (*model.Order, error)
	BatchTransitionStatus(ctx context.Context, ids []uuid.UUID, status model.OrderStatus) (*BatchResult, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	publisher ws.Publisher
	log       *slog.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, publisher ws.Publisher, log *slog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		log:       log,
	}
}

// PlaceOrder snapshots the cart into a new Pendiente order. The cart is only
// cleared once the order is stored.
func (s *orderService) PlaceOrder(ctx context.Context, req CheckoutRequest, cart *shop.Ledger) (*model.Order, error) {
	req.trim()
	if err := validator.Validate(&req); err != nil {
		return nil, err
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := shop.LineItemsFromCart(lines)
	order := &model.Order{
		OrderCode:            shop.NewOrderCode(),
		CustomerName:         req.CustomerName,
		CustomerPhone:        req.CustomerPhone,
		CustomerAddress:      req.CustomerAddress,
		CustomerMunicipio:    req.CustomerMunicipio,
		CustomerDepartamento: req.CustomerDepartamento,
		Items:                items,
		Status:               model.StatusPending,
		ShippingCost:         0,
		Total:                shop.ComputeOrderTotal(items, 0),
		UserID:               req.UserID,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	if err := cart.Clear(ctx); err != nil {
		s.log.WarnContext(ctx, "cart not cleared after checkout",
			slog.String("order_code", order.OrderCode), slog.String("error", err.Error()))
	}

	s.log.InfoContext(ctx, "order.placed",
		slog.String("order_id", order.ID.String()),
		slog.String("order_code", order.OrderCode),
		slog.Float64("total", order.Total),
		slog.Int("items", len(items)),
	)
	s.publisher.Publish(ws.EventOrderCreated, orderEvent(order))
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.FindAll(ctx, false)
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.FindByUser(ctx, userID)
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

// SetShippingCost attaches a shipping cost and recomputes the total from the
// items as currently stored, so repeated edits never compound.
func (s *orderService) SetShippingCost(ctx context.Context, id uuid.UUID, cost any) (*model.Order, error) {
	shipping, err := shop.ParseShippingCost(cost)
	if err != nil {
		return nil, err
	}

	update, err := s.recompute(ctx, id, shipping)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateFields(ctx, id, update); err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	s.log.InfoContext(ctx, "order.shipping.updated",
		slog.String("order_id", id.String()),
		slog.Float64("shipping_cost", shipping),
		slog.Float64("total", *update.Total),
	)
	return s.afterUpdate(ctx, id)
}

// TransitionStatus changes the status. Entering Enviado with a positive
// shipping cost also recomputes the total in the same update; every other
// transition writes the status only.
func (s *orderService) TransitionStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, shippingCost any) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	var shipping float64
	if shippingCost != nil {
		parsed, err := shop.ParseShippingCost(shippingCost)
		if err != nil {
			return nil, err
		}
		shipping = parsed
	}

	update := repository.OrderUpdate{Status: &status}
	if status == model.StatusShipped && shipping > 0 {
		recomputed, err := s.recompute(ctx, id, shipping)
		if err != nil {
			return nil, err
		}
		update.ShippingCost = recomputed.ShippingCost
		update.Total = recomputed.Total
	}

	if err := s.orderRepo.UpdateFields(ctx, id, update); err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	attrs := []any{slog.String("order_id", id.String()), slog.String("status", string(status))}
	if update.Total != nil {
		attrs = append(attrs, slog.Float64("shipping_cost", shipping), slog.Float64("total", *update.Total))
	}
	s.log.InfoContext(ctx, "order.status.updated", attrs...)
	return s.afterUpdate(ctx, id)
}

func (s *orderService) BatchTransitionStatus(ctx context.Context, ids []uuid.UUID, status model.OrderStatus) (*BatchResult, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	result := &BatchResult{Failed: []string{}}
	for _, id := range ids {
		if _, err := s.TransitionStatus(ctx, id, status, nil); err != nil {
			s.log.WarnContext(ctx, "batch status update failed",
				slog.String("order_id", id.String()), slog.String("error", err.Error()))
			result.Failed = append(result.Failed, id.String())
			continue
		}
		result.Succeeded++
	}

	s.log.InfoContext(ctx, "order.status.batch",
		slog.String("status", string(status)),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrOrderNotFound)
	}
	s.log.InfoContext(ctx, "order.deleted", slog.String("order_id", id.String()))
	s.publisher.Publish(ws.EventOrderDeleted, map[string]any{"id": id})
	return nil
}

// recompute reads the stored items fresh and derives shipping and total.
func (s *orderService) recompute(ctx context.Context, id uuid.UUID, shipping float64) (repository.OrderUpdate, error) {
	items, err := s.orderRepo.FindItems(ctx, id)
	if err != nil {
		return repository.OrderUpdate{}, notFound(err, ErrOrderNotFound)
	}
	total := shop.ComputeOrderTotal(items, shipping)
	return repository.OrderUpdate{ShippingCost: &shipping, Total: &total}, nil
}

func (s *orderService) afterUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	s.publisher.Publish(ws.EventOrderUpdated, orderEvent(order))
	if order.UserID != nil {
		s.publisher.PublishToUser(order.UserID.String(), ws.EventOrderUpdated, orderEvent(order))
	}
	return order, nil
}

func orderEvent(o *model.Order) map[string]any {
	return map[string]any{
		"id":            o.ID,
		"order_code":    o.OrderCode,
		"status":        o.Status,
		"shipping_cost": o.ShippingCost,
		"total":         o.Total,
	}
}

// notFound swaps a repository miss for the service sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
