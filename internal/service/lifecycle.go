package service

import (
	"context"
	"fmt"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/messaging"
	"rental-engine-backend/internal/repository"
	"rental-engine-backend/internal/utils"
)

// ReminderHorizonDays is how far ahead of the rental end reminders start.
const ReminderHorizonDays = 3

type lifecycleService struct {
	store    repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewLifecycleService(store repository.Store, notifier *Notifier) LifecycleService {
	return &lifecycleService{store: store, notifier: notifier, now: time.Now}
}

func (s *lifecycleService) RunSweep(ctx context.Context) (*domain.SweepSummary, error) {
	return s.RunSweepAt(ctx, s.now())
}

// RunSweepAt reminds customers of returns due within the horizon and flags
// rentals past their end date. Each (user, type, order) notification is
// created at most once per calendar day; emails go out only for newly
// created notifications, so repeated runs on the same day are harmless.
func (s *lifecycleService) RunSweepAt(ctx context.Context, at time.Time) (*domain.SweepSummary, error) {
	today := utils.DateOnly(at)
	log := logger.WithService("lifecycle").With("today", utils.FormatDate(today))
	log.Info("Lifecycle sweep started")

	summary := &domain.SweepSummary{Errors: []string{}}
	repos := s.store.Repos()

	upcoming, err := repos.Orders.ListEndingBetween(ctx, today, today.AddDate(0, 0, ReminderHorizonDays),
		[]domain.OrderStatus{domain.OrderStatusConfirmed, domain.OrderStatusPickedUp})
	if err != nil {
		log.Error("Failed to list upcoming returns", "error", err)
		return nil, fmt.Errorf("failed to list upcoming returns: %w", err)
	}
	for i := range upcoming {
		s.remind(ctx, &upcoming[i], today, summary)
	}

	overdue, err := repos.Orders.ListEndingBefore(ctx, today, returnableStatuses)
	if err != nil {
		log.Error("Failed to list overdue orders", "error", err)
		return nil, fmt.Errorf("failed to list overdue orders: %w", err)
	}
	for i := range overdue {
		s.flagOverdue(ctx, &overdue[i], today, summary)
	}

	log.Info("Lifecycle sweep finished",
		"remindersSent", summary.RemindersSent,
		"overdueAlertsSent", summary.OverdueAlertsSent,
		"ordersMarkedOverdue", summary.OrdersMarkedOverdue,
		"errors", len(summary.Errors))
	return summary, nil
}

func (s *lifecycleService) remind(ctx context.Context, o *domain.Order, today time.Time, summary *domain.SweepSummary) {
	note := newNotification(o.CustomerID, domain.NotificationTypeReturnReminder, o, today,
		"Return Reminder", fmt.Sprintf("Order %s is due back on %s", o.OrderNumber, utils.FormatDate(o.RentalEnd)))
	note.Attributes["due_date"] = utils.FormatDate(o.RentalEnd)

	created, err := s.notifier.Notify(ctx, note)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: reminder: %v", o.ID, err))
		return
	}
	if !created {
		return
	}
	summary.RemindersSent++

	subject, body := returnReminderEmail(o)
	if err := s.notifier.Email(ctx, o.CustomerID, subject, body); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: reminder email: %v", o.ID, err))
	}
}

func (s *lifecycleService) flagOverdue(ctx context.Context, o *domain.Order, today time.Time, summary *domain.SweepSummary) {
	if o.Status != domain.OrderStatusOverdue {
		changed, err := s.store.Repos().Orders.TransitionStatus(ctx, o.ID,
			[]domain.OrderStatus{domain.OrderStatusConfirmed, domain.OrderStatusPickedUp}, domain.OrderStatusOverdue)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: mark overdue: %v", o.ID, err))
			return
		}
		if !changed {
			// returned or otherwise moved on since it was listed
			return
		}
		o.Status = domain.OrderStatusOverdue
		summary.OrdersMarkedOverdue++
	}

	fee := utils.CalculateLateFee(o.Subtotal, o.RentalStart, o.RentalEnd, today)
	note := newNotification(o.CustomerID, domain.NotificationTypeOverdueAlert, o, today,
		"Rental Overdue", fmt.Sprintf("Order %s is %d day(s) overdue", o.OrderNumber, fee.LateDays))
	note.Attributes["late_days"] = fmt.Sprintf("%d", fee.LateDays)
	note.Attributes["estimated_late_fee"] = fee.Fee.StringFixed(2)

	created, err := s.notifier.Notify(ctx, note)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: overdue alert: %v", o.ID, err))
		return
	}

	// Vendor alerts are keyed per vendor and day, so a rerun fills in any
	// that an earlier pass failed to create.
	s.alertVendors(ctx, o, today, fee.LateDays, summary)

	if !created {
		return
	}
	summary.OverdueAlertsSent++

	subject, body := overdueEmail(o, fee)
	if err := s.notifier.Email(ctx, o.CustomerID, subject, body); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: overdue email: %v", o.ID, err))
	}

	s.notifier.Publish(ctx, messaging.NewOrderEvent(messaging.EventOrderOverdue, o.ID, o.OrderNumber, map[string]any{
		"late_days":          fee.LateDays,
		"estimated_late_fee": fee.Fee,
	}))
}

func (s *lifecycleService) alertVendors(ctx context.Context, o *domain.Order, today time.Time, lateDays int, summary *domain.SweepSummary) {
	lines, err := s.store.Repos().Orders.ListLines(ctx, o.ID)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: list lines: %v", o.ID, err))
		return
	}
	vendors, err := s.notifier.VendorsOf(ctx, lines)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: resolve vendors: %v", o.ID, err))
	}
	for _, vendorID := range vendors {
		vendorNote := newNotification(vendorID, domain.NotificationTypeOverdueAlert, o, today,
			"Rental Overdue", fmt.Sprintf("Order %s has not been returned (%d day(s) late)", o.OrderNumber, lateDays))
		if _, err := s.notifier.Notify(ctx, vendorNote); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("order %d: vendor %d alert: %v", o.ID, vendorID, err))
		}
	}
}
