package service

import (
	"context"
	"fmt"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

// InventoryLedger answers availability questions from on-hand stock and
// ACTIVE reservations. It is read-only and works on whichever repositories it
// is given, so the same code serves the pre-check and the in-transaction check.
type InventoryLedger struct {
	products     repository.ProductRepository
	reservations repository.ReservationRepository
}

func NewInventoryLedger(products repository.ProductRepository, reservations repository.ReservationRepository) *InventoryLedger {
	return &InventoryLedger{products: products, reservations: reservations}
}

// AvailableQuantity returns on-hand quantity minus the quantity of every ACTIVE
// reservation overlapping the closed range [from, to]. The result may be
// negative if stock was sold below outstanding reservations.
func (l *InventoryLedger) AvailableQuantity(ctx context.Context, productID int32, from, to time.Time) (int32, error) {
	if from.After(to) {
		return 0, domain.NewValidationError("window", "from must not be after to")
	}
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return l.availableFor(ctx, p, from, to)
}

func (l *InventoryLedger) availableFor(ctx context.Context, p *domain.Product, from, to time.Time) (int32, error) {
	reserved, err := l.reservations.ListActiveOverlapping(ctx, p.ID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list reservations for product %d: %w", p.ID, err)
	}
	available := p.QuantityOnHand
	for _, r := range reserved {
		available -= r.Quantity
	}
	return available, nil
}

// RentalWindow is the closed date range shared by every RENTAL line.
type RentalWindow struct {
	From time.Time
	To   time.Time
}

type PlannedReservation struct {
	ProductID int32
	Quantity  int32
}

type PlannedDecrement struct {
	ProductID int32
	Quantity  int32
}

// ReservationPlan is what a quotation turns into once every line has passed.
// Reservations are coalesced per product in first-seen order; sale decrements
// stay one per line.
type ReservationPlan struct {
	Window         RentalWindow
	Reservations   []PlannedReservation
	SaleDecrements []PlannedDecrement
	ProductIDs     []int32
}

func (p *ReservationPlan) PickupItems() []domain.PickupItem {
	items := make([]domain.PickupItem, 0, len(p.Reservations))
	for _, r := range p.Reservations {
		items = append(items, domain.PickupItem{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return items
}

type ReservationPlanner struct {
	ledger *InventoryLedger
}

func NewReservationPlanner(ledger *InventoryLedger) *ReservationPlanner {
	return &ReservationPlanner{ledger: ledger}
}

// ValidateLines checks line shape before any stock lookup.
func ValidateLines(lines []domain.QuotationLine, window RentalWindow) error {
	if len(lines) == 0 {
		return domain.NewValidationError("lines", "quotation has no lines")
	}
	hasRental := false
	for i, l := range lines {
		if l.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "must be positive")
		}
		if !l.Type.Valid() {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].type", i), fmt.Sprintf("unknown line type %q", l.Type))
		}
		if l.Type == domain.LineTypeRental {
			hasRental = true
		}
	}
	if hasRental {
		if window.From.IsZero() || window.To.IsZero() {
			return domain.NewValidationError("rental_window", "rental lines require a rental window")
		}
		if window.From.After(window.To) {
			return domain.NewValidationError("rental_window", "start must not be after end")
		}
	}
	return nil
}

// Plan validates lines in order and stops at the first one that cannot be
// met, reporting it as an InsufficientStockError. Demand for a product
// accumulates across lines, and RENTAL availability also subtracts SALE units
// already taken earlier in the same quotation.
func (p *ReservationPlanner) Plan(ctx context.Context, lines []domain.QuotationLine, window RentalWindow) (*ReservationPlan, error) {
	logger.EnterMethod("ReservationPlanner.Plan", "lines", len(lines))

	if err := ValidateLines(lines, window); err != nil {
		logger.ExitMethodWithWarning("ReservationPlanner.Plan", err)
		return nil, err
	}

	type demand struct {
		rental int32
		sale   int32
	}
	products := map[int32]*domain.Product{}
	windowAvailable := map[int32]int32{}
	demands := map[int32]*demand{}
	reservationIdx := map[int32]int{}

	plan := &ReservationPlan{Window: window}

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			var err error
			product, err = p.ledger.products.GetByID(ctx, line.ProductID)
			if err != nil {
				logger.ExitMethodWithError("ReservationPlanner.Plan", err, "productID", line.ProductID)
				return nil, err
			}
			products[line.ProductID] = product
			demands[line.ProductID] = &demand{}
			plan.ProductIDs = append(plan.ProductIDs, line.ProductID)
		}
		d := demands[line.ProductID]

		switch line.Type {
		case domain.LineTypeSale:
			available := product.QuantityOnHand - d.sale
			if line.Quantity > available {
				err := &domain.InsufficientStockError{ProductID: line.ProductID, Requested: line.Quantity, Available: max(available, 0)}
				logger.ExitMethodWithWarning("ReservationPlanner.Plan", err)
				return nil, err
			}
			d.sale += line.Quantity
			plan.SaleDecrements = append(plan.SaleDecrements, PlannedDecrement{ProductID: line.ProductID, Quantity: line.Quantity})

		case domain.LineTypeRental:
			inWindow, ok := windowAvailable[line.ProductID]
			if !ok {
				var err error
				inWindow, err = p.ledger.availableFor(ctx, product, window.From, window.To)
				if err != nil {
					logger.ExitMethodWithError("ReservationPlanner.Plan", err, "productID", line.ProductID)
					return nil, err
				}
				windowAvailable[line.ProductID] = inWindow
			}
			available := inWindow - d.rental - d.sale
			if line.Quantity > available {
				err := &domain.InsufficientStockError{ProductID: line.ProductID, Requested: line.Quantity, Available: max(available, 0)}
				logger.ExitMethodWithWarning("ReservationPlanner.Plan", err)
				return nil, err
			}
			d.rental += line.Quantity
			if idx, ok := reservationIdx[line.ProductID]; ok {
				plan.Reservations[idx].Quantity += line.Quantity
			} else {
				reservationIdx[line.ProductID] = len(plan.Reservations)
				plan.Reservations = append(plan.Reservations, PlannedReservation{ProductID: line.ProductID, Quantity: line.Quantity})
			}
		}
	}

	logger.ExitMethod("ReservationPlanner.Plan", "reservations", len(plan.Reservations), "saleDecrements", len(plan.SaleDecrements))
	return plan, nil
}
