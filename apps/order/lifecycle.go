package order

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bulut3d/apps/order/model"
	"bulut3d/pkg/events"
)

// Advance moves the order one step forward. No-op on the last step.
func (s *Service) Advance(ctx context.Context, id string) (model.Order, error) {
	return s.transition(ctx, id, func(cur model.Status) (model.Status, error) {
		return cur.Next(), nil
	})
}

// Revert moves the order one step back. No-op on the first step.
func (s *Service) Revert(ctx context.Context, id string) (model.Order, error) {
	return s.transition(ctx, id, func(cur model.Status) (model.Status, error) {
		return cur.Prev(), nil
	})
}

// Cancel is refused once the order is delivered, cancelled or returned.
func (s *Service) Cancel(ctx context.Context, id string) (model.Order, error) {
	return s.transition(ctx, id, func(cur model.Status) (model.Status, error) {
		if !cur.CanCancel() {
			return cur, fmt.Errorf("%w: cannot cancel an order that is %s", ErrTransitionNotAllowed, cur)
		}
		return model.StatusCancelled, nil
	})
}

// Return marks the order as returned from any status.
func (s *Service) Return(ctx context.Context, id string) (model.Order, error) {
	return s.transition(ctx, id, func(model.Status) (model.Status, error) {
		return model.StatusReturned, nil
	})
}

// SetStatus is the admin override: any known status is accepted.
func (s *Service) SetStatus(ctx context.Context, id string, status model.Status) (model.Order, error) {
	if !status.Valid() {
		return model.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.transition(ctx, id, func(model.Status) (model.Status, error) {
		return status, nil
	})
}

// transition reads the order, asks step for the new status and writes it.
// The returned order carries the new status only after the write succeeded.
func (s *Service) transition(ctx context.Context, id string, step func(model.Status) (model.Status, error)) (model.Order, error) {
	release, err := s.guard.Acquire(ctx, "order:"+id)
	if err != nil {
		return model.Order{}, err
	}
	defer release()

	o, err := s.Get(ctx, id)
	if err != nil {
		return o, err
	}
	next, err := step(o.Status)
	if err != nil {
		return o, err
	}
	if next == o.Status {
		return o, nil
	}

	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", next)
	if res.Error != nil {
		return o, fmt.Errorf("update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return o, ErrNotFound
	}

	previous := o.Status
	o.Status = next
	log.Printf("[order] %s: %s -> %s", o.OrderNumber, previous, next)
	events.Emit(ctx, s.publisher, events.OrderStatusChanged, eventOf(o, previous))
	return o, nil
}

// UpdateShipment records the carrier and tracking number.
func (s *Service) UpdateShipment(ctx context.Context, id, company, trackingNumber string) (model.Order, error) {
	release, err := s.guard.Acquire(ctx, "order:"+id)
	if err != nil {
		return model.Order{}, err
	}
	defer release()

	o, err := s.Get(ctx, id)
	if err != nil {
		return o, err
	}
	company = strings.TrimSpace(company)
	trackingNumber = strings.TrimSpace(trackingNumber)
	err = s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]any{
		"shipping_company": company,
		"tracking_number":  trackingNumber,
	}).Error
	if err != nil {
		return o, fmt.Errorf("update shipment: %w", err)
	}
	o.ShippingCompany = company
	o.TrackingNumber = trackingNumber
	return o, nil
}
