// Package commands contains the reconciliation engine: the application
// handlers that react to booking lifecycle changes by pushing availability
// exclusions onto sibling products.
package commands

import (
	"context"
	"fmt"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/avelstrom/availsync/pkg/observability"
	"github.com/google/uuid"
)

// Action is the reconciliation mode a lifecycle event maps to.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Outcome describes how a reconciliation run ended.
type Outcome string

const (
	// OutcomeApplied means sibling products were visited and the
	// booking's snapshot was rewritten.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged means the update short-circuited: the derived time
	// rule equals the stored one, nothing was touched.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeSkipped means the remove guard dropped the event silently.
	OutcomeSkipped Outcome = "skipped"
)

// ReconcileCommand asks the engine to reconcile one booking.
type ReconcileCommand struct {
	Action    Action
	BookingID uuid.UUID
}

// ReconcileResult reports what a run did.
type ReconcileResult struct {
	BookingID uuid.UUID
	Action    Action
	Outcome   Outcome
	// Siblings lists the sibling products whose rule collections were
	// written back, in relationship sort order.
	Siblings []uuid.UUID
}

// ReconcileHandler orchestrates one reconciliation run per lifecycle event:
// booking -> product -> resource -> sibling products -> rule mutations ->
// snapshot write-back.
type ReconcileHandler struct {
	bookings  domain.BookingRepository
	products  domain.ProductRepository
	resources domain.ResourceRepository
	settings  domain.Settings
	diag      *observability.Diagnostics
	locks     *resourceLocks
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(
	bookings domain.BookingRepository,
	products domain.ProductRepository,
	resources domain.ResourceRepository,
	settings domain.Settings,
	diag *observability.Diagnostics,
) *ReconcileHandler {
	return &ReconcileHandler{
		bookings:  bookings,
		products:  products,
		resources: resources,
		settings:  settings,
		diag:      diag,
		locks:     newResourceLocks(),
	}
}

// HandleBookingCreated reconciles a newly created (or untrashed) booking.
func (h *ReconcileHandler) HandleBookingCreated(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error) {
	return h.Handle(ctx, ReconcileCommand{Action: ActionAdd, BookingID: bookingID})
}

// HandleBookingUpdated reconciles a booking whose metadata was saved.
func (h *ReconcileHandler) HandleBookingUpdated(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error) {
	return h.Handle(ctx, ReconcileCommand{Action: ActionUpdate, BookingID: bookingID})
}

// HandleBookingRemoved reconciles a booking being trashed, deleted,
// cancelled or dropped from a cart. The triggers behind it fire for generic
// deletions too, so an empty or unresolvable identifier is dropped silently
// rather than diagnosed.
func (h *ReconcileHandler) HandleBookingRemoved(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error) {
	if bookingID == uuid.Nil {
		return &ReconcileResult{Action: ActionRemove, Outcome: OutcomeSkipped}, nil
	}

	booking, err := h.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("resolve booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return &ReconcileResult{BookingID: bookingID, Action: ActionRemove, Outcome: OutcomeSkipped}, nil
	}

	return h.Handle(ctx, ReconcileCommand{Action: ActionRemove, BookingID: bookingID})
}

// Handle executes one reconciliation run.
func (h *ReconcileHandler) Handle(ctx context.Context, cmd ReconcileCommand) (*ReconcileResult, error) {
	ctx = observability.WithOperation(ctx, string(cmd.Action))

	h.diag.Log(ctx, "performing action on product availability",
		"action", cmd.Action,
		"booking_id", cmd.BookingID,
	)

	booking, err := h.bookings.FindByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("resolve booking: %w", err))
	}
	if booking == nil {
		return nil, h.fail(ctx, cmd, domain.ErrBookingNotFound)
	}

	product, err := h.products.FindByID(ctx, booking.ProductID())
	if err != nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("resolve product: %w", err))
	}
	if product == nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("product %s not found", booking.ProductID()))
	}
	h.diag.Log(ctx, "resolved booked product", "product_id", product.ID())

	resources, err := h.resources.FindByProduct(ctx, product.ID())
	if err != nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("resolve resources: %w", err))
	}
	switch {
	case len(resources) == 0:
		return nil, h.fail(ctx, cmd, domain.ErrNoResource)
	case len(resources) > 1:
		return nil, h.fail(ctx, cmd, domain.ErrAmbiguousResource)
	}
	resource := resources[0]

	enabled, err := h.settings.AutomationEnabled(ctx, resource.ID())
	if err != nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("read automation flag: %w", err))
	}
	if !enabled {
		return nil, h.fail(ctx, cmd, fmt.Errorf("resource %s: %w", resource.ID(), domain.ErrAutomationDisabled))
	}

	siblings, err := h.resources.ProductsForResource(ctx, resource.ID())
	if err != nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("resolve sibling products: %w", err))
	}
	if len(siblings) <= 1 {
		return nil, h.fail(ctx, cmd, domain.ErrNothingToReconcile)
	}
	h.diag.Log(ctx, "found products related to resource",
		"resource_id", resource.ID(),
		"count", len(siblings),
	)

	candidate := booking.DeriveSnapshot()

	// existing is the snapshot whose rules must be retracted from sibling
	// products before the candidate is considered.
	var existing *domain.Snapshot

	switch cmd.Action {
	case ActionAdd:
		// Record the snapshot up front so a partially applied add can
		// still be diffed by a later update.
		if err := h.bookings.SaveSnapshot(ctx, booking.ID(), candidate); err != nil {
			return nil, h.fail(ctx, cmd, fmt.Errorf("save snapshot: %w", err))
		}

	case ActionUpdate:
		prev, err := h.bookings.Snapshot(ctx, booking.ID())
		if err != nil {
			return nil, h.fail(ctx, cmd, fmt.Errorf("load snapshot: %w", err))
		}
		// The time rule is authoritative for the unchanged check: it is
		// the finer granularity.
		if prev != nil && candidate.Time == prev.Time {
			h.diag.Log(ctx, "availability unchanged, exiting", "booking_id", booking.ID())
			return &ReconcileResult{
				BookingID: booking.ID(),
				Action:    cmd.Action,
				Outcome:   OutcomeUnchanged,
			}, nil
		}
		existing = prev

	case ActionRemove:
		// The rule being retracted is the one this booking occupies.
		existing = &candidate
	}

	// Serialize the read-modify-write over this resource's sibling set so
	// near-simultaneous triggers cannot lose each other's rule edits.
	unlock := h.locks.lock(resource.ID())
	defer unlock()

	applied := make([]uuid.UUID, 0, len(siblings)-1)
	for _, siblingID := range siblings {
		if siblingID == product.ID() {
			h.diag.Log(ctx, "product is the one related to booking, skipping", "product_id", siblingID)
			continue
		}
		if err := h.applyToSibling(ctx, cmd.Action, booking, siblingID, candidate, existing); err != nil {
			return nil, h.fail(ctx, cmd, fmt.Errorf("apply to product %s: %w", siblingID, err))
		}
		applied = append(applied, siblingID)
	}

	if err := h.bookings.SaveSnapshot(ctx, booking.ID(), candidate); err != nil {
		return nil, h.fail(ctx, cmd, fmt.Errorf("save snapshot: %w", err))
	}

	h.diag.Log(ctx, "finished performing action on product availability",
		"action", cmd.Action,
		"booking_id", booking.ID(),
		"sibling_count", len(applied),
	)

	return &ReconcileResult{
		BookingID: booking.ID(),
		Action:    cmd.Action,
		Outcome:   OutcomeApplied,
		Siblings:  applied,
	}, nil
}

// applyToSibling runs the retract/append cycle on one sibling product's
// rule collection and writes it back.
func (h *ReconcileHandler) applyToSibling(
	ctx context.Context,
	action Action,
	booking *domain.Booking,
	siblingID uuid.UUID,
	candidate domain.Snapshot,
	existing *domain.Snapshot,
) error {
	sibling, err := h.products.FindByID(ctx, siblingID)
	if err != nil {
		return fmt.Errorf("resolve sibling: %w", err)
	}
	if sibling == nil {
		return fmt.Errorf("sibling product not found")
	}

	unit := domain.UnitFor(booking.AllDay(), sibling.DurationUnit())
	h.diag.Log(ctx, "beginning work on product",
		"product_id", siblingID,
		"unit", unit,
	)

	rules, err := h.products.Availability(ctx, siblingID)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}

	if (action == ActionUpdate || action == ActionRemove) && existing != nil {
		kept := make([]domain.Rule, 0, len(rules))
		for _, rule := range rules {
			if rule.Matches(*existing, unit) {
				// For day-unit products with an unchanged span this
				// retracts a rule the add phase reinserts; intentional,
				// mirroring the original retract-then-reinsert cycle.
				h.diag.Log(ctx, "previous availability rule exists on product, removing it",
					"product_id", siblingID,
				)
				continue
			}
			kept = append(kept, rule)
		}
		rules = kept
	}

	if action == ActionUpdate || action == ActionAdd {
		duplicate := false
		for _, rule := range rules {
			if rule.Matches(candidate, unit) {
				duplicate = true
				break
			}
		}
		if duplicate {
			h.diag.Log(ctx, "exact availability rule exists on product, not adding",
				"product_id", siblingID,
			)
		} else {
			rules = append(rules, candidate.Rule(unit))
		}
	}

	h.diag.Debug(ctx, "writing availability rules",
		"product_id", siblingID,
		"rules", rules,
	)

	return h.products.SaveAvailability(ctx, siblingID, rules)
}

// fail reports a stop condition to the diagnostic sink and wraps it with
// run context. Callers at the event boundary swallow the error; nothing is
// user-facing and nothing retries.
func (h *ReconcileHandler) fail(ctx context.Context, cmd ReconcileCommand, err error) error {
	h.diag.Log(ctx, "reconciliation stopped",
		"action", cmd.Action,
		"booking_id", cmd.BookingID,
		"reason", err.Error(),
	)
	return fmt.Errorf("reconcile %s booking %s: %w", cmd.Action, cmd.BookingID, err)
}
