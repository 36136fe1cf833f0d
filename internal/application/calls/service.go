package calls

import (
	"context"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ledger"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/internal/application/supplier"
	"github.com/gupta-labs/khata-sahayak/pkg/i18n"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// Dialer is the outbound voice provider. It returns the provider's call id,
// which the post-call webhook echoes back.
type Dialer interface {
	Dispatch(ctx context.Context, phone, orderDetails, supplierName, actorID string) (callID string, err error)
}

// Service dispatches order calls and reconciles their outcomes. It fronts
// the Dialer so every dispatched call has a tracked session.
type Service struct {
	dialer     Dialer
	store      *Store
	reconciler *ledger.Reconciler
	prices     *supplier.PriceIndex
	notifier   ports.NotificationTransport
	log        *logger.Logger
}

func NewService(dialer Dialer, store *Store, reconciler *ledger.Reconciler, prices *supplier.PriceIndex, notifier ports.NotificationTransport, log *logger.Logger) *Service {
	return &Service{
		dialer:     dialer,
		store:      store,
		reconciler: reconciler,
		prices:     prices,
		notifier:   notifier,
		log:        log,
	}
}

var _ ports.CallDispatcher = (*Service)(nil)

// Initiate places the call and opens a session keyed by the provider's
// call id.
func (s *Service) Initiate(ctx context.Context, phone, orderPayload, supplierName, actorID string) error {
	callID, err := s.dialer.Dispatch(ctx, phone, orderPayload, supplierName, actorID)
	if err != nil {
		return err
	}
	s.store.Put(&Session{
		CallID:       callID,
		ActorID:      actorID,
		SupplierName: supplierName,
		Phone:        phone,
		OrderDetails: orderPayload,
		Language:     i18n.LangHindi,
	})
	s.log.Info().
		Str("call_id", callID).
		Str("supplier", supplierName).
		Str("actor_id", actorID).
		Msg("order call dispatched")
	return nil
}

// Progress applies a mid-call state notification from the voice provider.
func (s *Service) Progress(callID string, to State) error {
	_, err := s.store.Advance(callID, to)
	return err
}

// Complete handles the post-call webhook: a confirmed order is recorded as
// a purchase at the supplier's list price, a failed one becomes an
// order-failed notice. Either way the session terminates.
func (s *Service) Complete(ctx context.Context, callID string, confirmed bool, items []dto.DraftItem, reason string) error {
	session, err := s.store.Get(callID)
	if err != nil {
		return err
	}
	defer s.store.Remove(callID)
	lang := session.Language

	if !confirmed {
		if reason == "" {
			reason = "Supplier did not confirm the order."
		}
		s.notify(ctx, session.ActorID, i18n.T(lang, "order_failed", map[string]string{
			"item_name":     session.OrderDetails,
			"supplier_name": session.SupplierName,
			"reason":        reason,
		}))
		return nil
	}

	// price each confirmed line from the chosen supplier's list before
	// replaying it through the purchase flow
	draft := &dto.TransactionDraft{Type: dto.DraftPurchase}
	for _, item := range items {
		if !item.ValidForOrder() {
			continue
		}
		line := item
		if q := s.prices.QuoteFrom(session.SupplierName, item.ItemName, item.EffectiveUnit()); q != nil {
			line.CostPricePerUnit = &q.PricePerUnit
		}
		draft.ItemsPurchased = append(draft.ItemsPurchased, line)
	}

	if _, err := s.reconciler.Process(ctx, session.ActorID, draft, lang, "", "", time.Now().UTC()); err != nil {
		return err
	}

	for _, item := range draft.ItemsPurchased {
		s.notify(ctx, session.ActorID, i18n.T(lang, "order_confirmed", map[string]string{
			"quantity":      item.Quantity.String(),
			"unit":          item.EffectiveUnit(),
			"item_name":     item.ItemName,
			"supplier_name": session.SupplierName,
		}))
	}
	return nil
}

func (s *Service) notify(ctx context.Context, actorID, text string) {
	if err := s.notifier.Send(ctx, actorID, text); err != nil {
		s.log.Warn().Err(err).Str("actor_id", actorID).Msg("order notification failed")
	}
}
