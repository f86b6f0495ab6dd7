package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentalhub/internal/caching"
	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/rental"
	"rentalhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	rentalCacheTTL   = 10 * time.Minute
	maxFieldLength   = 500
	maxLineQuantity  = 100000
	maxLinesPerOrder = 500
)

// ActionResult is the outcome of a lifecycle action
type ActionResult struct {
	Rental  *models.RentalOrder `json:"rental"`
	Message string              `json:"message"`
}

// RentalService orchestrates the rental lifecycle. Every mutating operation
// is a single load, apply, persist cycle guarded by the row version.
type RentalService interface {
	CreateRental(ctx context.Context, input *models.RentalInput) (*models.RentalOrder, error)
	GetRental(ctx context.Context, id string) (*models.RentalOrder, error)
	ListRentals(ctx context.Context, filter *models.RentalFilter) ([]*models.RentalOrder, error)
	UpdateField(ctx context.Context, id, field, value string) (*models.RentalOrder, error)
	PerformAction(ctx context.Context, id, action string) (*ActionResult, error)
	RecomputeTotals(ctx context.Context, id string) (*models.RentalOrder, error)
	AddLine(ctx context.Context, id string, input *models.OrderLineInput) (*models.RentalOrder, *models.OrderLine, error)
	UpdateLine(ctx context.Context, id string, lineID uuid.UUID, input *models.OrderLineInput) (*models.RentalOrder, *models.OrderLine, error)
	RemoveLine(ctx context.Context, id string, lineID uuid.UUID) (*models.RentalOrder, error)
	DeleteRental(ctx context.Context, id string) error
}

type rentalService struct {
	rentalRepo     repositories.RentalRepository
	productService ProductService
	engine         *rental.Engine
	cacheService   caching.CacheService
	notifier       Notifier
	logger         *zap.Logger
}

func NewRentalService(rentalRepo repositories.RentalRepository, productService ProductService, engine *rental.Engine, cacheService caching.CacheService, notifier Notifier, logger *zap.Logger) RentalService {
	return &rentalService{
		rentalRepo:     rentalRepo,
		productService: productService,
		engine:         engine,
		cacheService:   cacheService,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, input *models.RentalInput) (*models.RentalOrder, error) {
	if input == nil {
		return nil, common.ValidationError("request body is required")
	}
	if len(input.OrderLines) > maxLinesPerOrder {
		return nil, common.ValidationError("a rental cannot have more than %d order lines", maxLinesPerOrder)
	}

	order := &models.RentalOrder{Status: models.RentalStatusDraft}
	fields := map[string]string{
		models.FieldCustomer:        input.Customer,
		models.FieldInvoiceAddress:  input.InvoiceAddress,
		models.FieldDeliveryAddress: input.DeliveryAddress,
		models.FieldScheduleDate:    input.ScheduleDate,
		models.FieldResponsible:     input.Responsible,
	}
	for field, value := range fields {
		clean, err := cleanField(field, value)
		if err != nil {
			return nil, err
		}
		order.SetField(field, clean)
	}

	for i := range input.OrderLines {
		line, err := s.buildLine(ctx, uuid.New(), &input.OrderLines[i])
		if err != nil {
			return nil, err
		}
		order.OrderLines = append(order.OrderLines, line)
	}
	rental.Recompute(order)

	if err := s.rentalRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("rental created",
		zap.String("rental_id", order.ID),
		zap.Int("lines", len(order.OrderLines)),
		zap.String("total", order.Total.String()),
	)
	return order, nil
}

// GetRental reads through the cache. Mutations always load from the
// repository so the version they compare against is current. The cache is
// filled only if no eviction happened since the generation was read.
func (s *rentalService) GetRental(ctx context.Context, id string) (*models.RentalOrder, error) {
	if cached, err := s.cacheService.GetRental(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("rental cache read failed", zap.String("rental_id", id), zap.Error(err))
	}

	gen, genErr := s.cacheService.RentalGeneration(ctx, id)
	if genErr != nil {
		s.logger.Warn("rental cache read failed", zap.String("rental_id", id), zap.Error(genErr))
	}

	order, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return order, nil
	}
	stored, err := s.cacheService.SetRental(ctx, order, gen, rentalCacheTTL)
	if err != nil {
		s.logger.Warn("rental cache write failed", zap.String("rental_id", id), zap.Error(err))
	} else if !stored {
		s.logger.Debug("rental changed while loading, not cached", zap.String("rental_id", id))
	}
	return order, nil
}

func (s *rentalService) ListRentals(ctx context.Context, filter *models.RentalFilter) ([]*models.RentalOrder, error) {
	if filter == nil {
		filter = &models.RentalFilter{}
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, common.ValidationError("unknown rental status: %q", *filter.Status)
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Customer = strings.TrimSpace(filter.Customer)
	return s.rentalRepo.List(ctx, filter)
}

func (s *rentalService) UpdateField(ctx context.Context, id, field, value string) (*models.RentalOrder, error) {
	if !rental.ValidField(field) {
		return nil, common.ValidationError("unknown field: %q", field)
	}
	clean, err := cleanField(field, value)
	if err != nil {
		return nil, err
	}

	order, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rental.CheckFieldsEditable(order.Status); err != nil {
		return nil, err
	}

	order.SetField(field, clean)
	if err := s.rentalRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	s.evict(ctx, id)
	s.logger.Info("rental field updated", zap.String("rental_id", id), zap.String("field", field))
	return order, nil
}

// PerformAction validates the token before touching storage, then applies
// the transition table. The status is written only when it changes.
func (s *rentalService) PerformAction(ctx context.Context, id, action string) (*ActionResult, error) {
	act, err := rental.ParseAction(action)
	if err != nil {
		return nil, err
	}

	order, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	transition, err := s.engine.Decide(order.Status, act)
	if err != nil {
		s.logger.Info("rental action rejected",
			zap.String("rental_id", id),
			zap.String("action", action),
			zap.String("status", string(order.Status)),
			zap.Error(err),
		)
		return nil, err
	}

	if transition.Changed() {
		order.Status = transition.To
		if err := s.rentalRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		s.evict(ctx, id)
	}

	actor, _ := common.GetUserIDFromContext(ctx)
	s.logger.Info("rental action performed",
		zap.String("rental_id", id),
		zap.String("action", action),
		zap.String("from", string(transition.From)),
		zap.String("to", string(transition.To)),
		zap.String("actor", actor),
	)
	s.notify(ctx, models.RentalEvent{
		RentalID:   id,
		Action:     act,
		From:       transition.From,
		To:         transition.To,
		Message:    transition.Message,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	})

	return &ActionResult{Rental: order, Message: transition.Message}, nil
}

// RecomputeTotals re-derives the stored totals from the current lines and
// persists them when they differ.
func (s *rentalService) RecomputeTotals(ctx context.Context, id string) (*models.RentalOrder, error) {
	order, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := order.Totals()
	after := rental.Recompute(order)
	if totalsEqual(before, after) {
		return order, nil
	}

	if err := s.rentalRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	s.evict(ctx, id)
	s.logger.Info("rental totals recomputed",
		zap.String("rental_id", id),
		zap.String("previous_total", before.Total.String()),
		zap.String("total", after.Total.String()),
	)
	return order, nil
}

func (s *rentalService) AddLine(ctx context.Context, id string, input *models.OrderLineInput) (*models.RentalOrder, *models.OrderLine, error) {
	order, err := s.loadForLineChange(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if len(order.OrderLines) >= maxLinesPerOrder {
		return nil, nil, common.ValidationError("a rental cannot have more than %d order lines", maxLinesPerOrder)
	}

	line, err := s.buildLine(ctx, uuid.New(), input)
	if err != nil {
		return nil, nil, err
	}
	order.OrderLines = append(order.OrderLines, line)

	if err := s.saveLines(ctx, order); err != nil {
		return nil, nil, err
	}
	return order, &order.OrderLines[len(order.OrderLines)-1], nil
}

func (s *rentalService) UpdateLine(ctx context.Context, id string, lineID uuid.UUID, input *models.OrderLineInput) (*models.RentalOrder, *models.OrderLine, error) {
	order, err := s.loadForLineChange(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	idx := order.FindLine(lineID)
	if idx < 0 {
		return nil, nil, common.NotFoundError("order line", lineID.String())
	}

	line, err := s.buildLine(ctx, lineID, input)
	if err != nil {
		return nil, nil, err
	}
	order.OrderLines[idx] = line

	if err := s.saveLines(ctx, order); err != nil {
		return nil, nil, err
	}
	return order, &order.OrderLines[idx], nil
}

func (s *rentalService) RemoveLine(ctx context.Context, id string, lineID uuid.UUID) (*models.RentalOrder, error) {
	order, err := s.loadForLineChange(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := order.FindLine(lineID)
	if idx < 0 {
		return nil, common.NotFoundError("order line", lineID.String())
	}
	order.OrderLines = append(order.OrderLines[:idx], order.OrderLines[idx+1:]...)

	if err := s.saveLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *rentalService) DeleteRental(ctx context.Context, id string) error {
	if err := s.rentalRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	s.logger.Info("rental deleted", zap.String("rental_id", id))
	return nil
}

func (s *rentalService) loadForLineChange(ctx context.Context, id string) (*models.RentalOrder, error) {
	order, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rental.CheckLinesEditable(order.Status); err != nil {
		return nil, err
	}
	return order, nil
}

// saveLines recomputes totals and writes header and lines together
func (s *rentalService) saveLines(ctx context.Context, order *models.RentalOrder) error {
	rental.Recompute(order)
	if err := s.rentalRepo.UpdateWithLines(ctx, order); err != nil {
		return err
	}
	s.evict(ctx, order.ID)
	s.logger.Info("rental lines changed",
		zap.String("rental_id", order.ID),
		zap.Int("lines", len(order.OrderLines)),
		zap.String("total", order.Total.String()),
	)
	return nil
}

// buildLine validates input and fills catalog defaults. SubTotal is always
// derived from quantity and unit price, never taken from the client.
func (s *rentalService) buildLine(ctx context.Context, lineID uuid.UUID, input *models.OrderLineInput) (models.OrderLine, error) {
	if input == nil {
		return models.OrderLine{}, common.ValidationError("order line is required")
	}
	if err := common.ValidatePositiveInteger(input.Quantity, "quantity", maxLineQuantity); err != nil {
		return models.OrderLine{}, err
	}

	line := models.OrderLine{
		ID:        lineID,
		ProductID: input.ProductID,
		Product:   strings.TrimSpace(input.Product),
		Quantity:  input.Quantity,
		UnitPrice: decimal.Zero,
		Tax:       decimal.Zero,
	}

	if input.ProductID != nil {
		product, err := s.productService.GetByID(ctx, *input.ProductID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return models.OrderLine{}, common.ValidationError("product %s does not exist", input.ProductID.String())
			}
			return models.OrderLine{}, err
		}
		if line.Product == "" {
			line.Product = product.Name
		}
		line.UnitPrice = product.RentalPrice
		line.Tax = product.Tax.Mul(decimal.NewFromInt(int64(input.Quantity)))
	} else if input.UnitPrice == nil {
		return models.OrderLine{}, common.ValidationError("unit_price is required when product_id is not set")
	}

	if line.Product == "" {
		return models.OrderLine{}, common.ValidationError("product is required")
	}
	if len(line.Product) > 255 {
		return models.OrderLine{}, common.ValidationError("product cannot exceed 255 characters")
	}
	if input.UnitPrice != nil {
		line.UnitPrice = *input.UnitPrice
	}
	if input.Tax != nil {
		line.Tax = *input.Tax
	}
	if err := common.ValidateMoneyAmount(line.UnitPrice, "unit_price"); err != nil {
		return models.OrderLine{}, err
	}
	if err := common.ValidateMoneyAmount(line.Tax, "tax"); err != nil {
		return models.OrderLine{}, err
	}

	line.SubTotal = rental.LineSubTotal(line.Quantity, line.UnitPrice)
	return line, nil
}

func cleanField(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > maxFieldLength {
		return "", common.ValidationError("%s cannot exceed %d characters", field, maxFieldLength)
	}
	return value, nil
}

func totalsEqual(a, b models.RentalTotals) bool {
	return a.UntaxedTotal.Equal(b.UntaxedTotal) && a.TotalTax.Equal(b.TotalTax) && a.Total.Equal(b.Total)
}

func (s *rentalService) evict(ctx context.Context, id string) {
	if err := s.cacheService.DeleteRental(ctx, id); err != nil {
		s.logger.Warn("rental cache eviction failed", zap.String("rental_id", id), zap.Error(err))
	}
}

func (s *rentalService) notify(ctx context.Context, event models.RentalEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Error("rental notification failed",
			zap.String("rental_id", event.RentalID),
			zap.String("action", string(event.Action)),
			zap.Error(err),
		)
	}
}
