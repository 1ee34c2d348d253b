package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/messaging"
	"rental-engine-backend/internal/repository"
)

// Notifier delivers the best-effort effects that follow a committed change:
// in-app notifications, emails and domain events. None of its failures are
// returned to the caller of the business operation.
type Notifier struct {
	repos     *repository.Repositories
	emailSvc  EmailService
	publisher messaging.Publisher
	topic     string
}

func NewNotifier(repos *repository.Repositories, emailSvc EmailService, publisher messaging.Publisher, topic string) *Notifier {
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &Notifier{repos: repos, emailSvc: emailSvc, publisher: publisher, topic: topic}
}

// Notify stores n unless one with the same key exists for that day.
func (n *Notifier) Notify(ctx context.Context, note *domain.Notification) (bool, error) {
	created, err := n.repos.Notifications.CreateIfAbsent(ctx, note)
	if err != nil {
		logger.Error("Failed to create notification", "userID", note.UserID, "type", note.Type, "referenceID", note.ReferenceID, "error", err)
		return false, err
	}
	return created, nil
}

// Email looks up the user and sends them a message.
func (n *Notifier) Email(ctx context.Context, userID int32, subject, html string) error {
	user, err := n.repos.Users.GetByID(ctx, userID)
	if err != nil {
		logger.Error("Failed to load email recipient", "userID", userID, "error", err)
		return err
	}
	if err := n.emailSvc.Send(ctx, user.Email, subject, html); err != nil {
		logger.Error("Failed to send email", "userID", userID, "subject", subject, "error", err)
		return err
	}
	return nil
}

func (n *Notifier) Publish(ctx context.Context, event messaging.OrderEvent) {
	if err := n.publisher.PublishEvent(ctx, n.topic, event.OrderNumber, event); err != nil {
		logger.Error("Failed to publish order event", "eventType", event.EventType, "orderID", event.OrderID, "error", err)
	}
}

// VendorsOf returns the distinct vendors owning the products on an order, in
// ascending id order.
func (n *Notifier) VendorsOf(ctx context.Context, lines []domain.OrderLine) ([]int32, error) {
	var vendors []int32
	seen := map[int32]bool{}
	for _, l := range lines {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		p, err := n.repos.Products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(vendors, p.VendorID) {
			vendors = append(vendors, p.VendorID)
		}
	}
	slices.Sort(vendors)
	return vendors, nil
}

func newNotification(userID int32, typ domain.NotificationType, order *domain.Order, day time.Time, title, message string) *domain.Notification {
	return &domain.Notification{
		UserID:      userID,
		Type:        typ,
		ReferenceID: order.ID,
		DateBucket:  day,
		Title:       title,
		Message:     message,
		Attributes: map[string]string{
			"order_id":     fmt.Sprintf("%d", order.ID),
			"order_number": order.OrderNumber,
		},
	}
}
