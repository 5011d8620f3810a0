package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"pharmacy-ai-agent/internal/observability/metrics"
	"pharmacy-ai-agent/internal/pharmacy"
	"pharmacy-ai-agent/pkg/logging"
)

// redFlags short-circuit everything else: a message containing any of
// these phrases gets the emergency reply and touches no state.
var redFlags = []string{
	"chest pain",
	"breathing difficulty",
	"can't breathe",
	"severe bleeding",
	"unconscious",
	"heart attack",
	"stroke",
}

const (
	emergencyMessage   = "This sounds like a medical emergency. Please go to the nearest hospital immediately."
	unavailableMessage = "The pharmacy service is temporarily unavailable. Please try again in a moment."
)

// Reply is the single response shape for every flow. Recommendations and
// Data are populated only by their respective branches.
type Reply struct {
	Message         string                    `json:"message"`
	Trace           []string                  `json:"trace"`
	Recommendations []pharmacy.Recommendation `json:"recommendations,omitempty"`
	Data            *pharmacy.OrderReceipt    `json:"data,omitempty"`
}

// Collaborator interfaces are defined here, on the consuming side.

type PendingStore interface {
	Consume(ctx context.Context, patientID string) (string, error)
	Upsert(ctx context.Context, patientID, medicineName string) error
}

type InventoryGate interface {
	Check(ctx context.Context, medicineName string, quantity int) (pharmacy.StockCheck, error)
}

type SafetyGate interface {
	Check(ctx context.Context, patientID, medicineName string) (pharmacy.SafetyCheck, error)
}

type OrderPlacer interface {
	Place(ctx context.Context, patientID, medicineName string, quantity int, dosageFrequency float64) (*pharmacy.OrderReceipt, error)
}

type SymptomRecommender interface {
	Recommend(ctx context.Context, symptom string) ([]pharmacy.Recommendation, error)
}

type MedicineResolver interface {
	Resolve(ctx context.Context, phrase string) (string, bool, error)
}

// Orchestrator drives the per-message decision flow: emergency check,
// pending-order continuation, intent classification, then the recommend
// or order path. It holds no cross-message state; continuity lives in the
// persisted pending order.
type Orchestrator struct {
	classifier  *Classifier
	resolver    MedicineResolver
	pending     PendingStore
	inventory   InventoryGate
	safety      SafetyGate
	committer   OrderPlacer
	recommender SymptomRecommender
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
}

func NewOrchestrator(
	classifier *Classifier,
	resolver MedicineResolver,
	pending PendingStore,
	inventory InventoryGate,
	safety SafetyGate,
	committer OrderPlacer,
	recommender SymptomRecommender,
	chatMetrics *metrics.ChatMetrics,
	logger *logging.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		classifier:  classifier,
		resolver:    resolver,
		pending:     pending,
		inventory:   inventory,
		safety:      safety,
		committer:   committer,
		recommender: recommender,
		metrics:     chatMetrics,
		logger:      logger,
	}
}

// Handle processes one user message. It never returns an error to the
// caller: infrastructure failures are logged and answered with a generic
// unavailable reply.
func (o *Orchestrator) Handle(ctx context.Context, userID, message string) *Reply {
	start := time.Now()
	defer func() {
		o.metrics.ObserveHandleDuration(time.Since(start).Seconds())
	}()

	lowered := strings.ToLower(message)
	for _, flag := range redFlags {
		if strings.Contains(lowered, flag) {
			o.metrics.ObserveMessage("emergency")
			return &Reply{
				Message: emergencyMessage,
				Trace:   []string{"Emergency mode triggered"},
			}
		}
	}

	var trace []string
	var intent Intent

	if quantity, ok := numericMessage(message); ok {
		medicine, err := o.pending.Consume(ctx, userID)
		switch {
		case err == nil:
			trace = append(trace, "Continuing pending order")
			intent = OrderIntent{Medicine: medicine, Quantity: quantity, DosageFrequency: 1}
		case errors.Is(err, pharmacy.ErrNoPendingOrder):
			// No pending order to continue; classify as usual.
		default:
			return o.unavailable(userID, trace, err)
		}
	}

	if intent == nil {
		intent = o.classifier.Classify(message)
		trace = append(trace, fmt.Sprintf("Intent detected: %s", describeIntent(intent)))
	}

	switch in := intent.(type) {
	case RecommendIntent:
		return o.recommendFlow(ctx, in, trace)
	case OrderIntent:
		return o.orderFlow(ctx, userID, in, trace)
	default:
		o.metrics.ObserveMessage("unknown_intent")
		return &Reply{
			Message: "I can help you order a medicine or recommend something for a symptom. Could you rephrase?",
			Trace:   append(trace, "Intent not recognized"),
		}
	}
}

func (o *Orchestrator) recommendFlow(ctx context.Context, intent RecommendIntent, trace []string) *Reply {
	symptom := strings.TrimSpace(intent.Symptom)
	if symptom == "" {
		o.metrics.ObserveMessage("clarification")
		return &Reply{
			Message: "Please describe your symptom clearly.",
			Trace:   trace,
		}
	}

	recommendations, err := o.recommender.Recommend(ctx, symptom)
	if err != nil {
		return o.unavailable("", trace, err)
	}

	o.metrics.ObserveMessage("recommend")
	return &Reply{
		Message:         fmt.Sprintf("Based on your symptom '%s', I recommend:", symptom),
		Recommendations: recommendations,
		Trace:           trace,
	}
}

func (o *Orchestrator) orderFlow(ctx context.Context, userID string, intent OrderIntent, trace []string) *Reply {
	trace = append(trace, fmt.Sprintf("Medicine extracted from intent: %s", intent.Medicine))

	if strings.TrimSpace(intent.Medicine) == "" {
		o.metrics.ObserveMessage("clarification")
		return &Reply{
			Message: "Please specify the medicine name clearly.",
			Trace:   trace,
		}
	}

	cleaned := CleanPhrase(intent.Medicine)
	trace = append(trace, fmt.Sprintf("Cleaned medicine input: %s", cleaned))

	medicine, ok, err := o.resolver.Resolve(ctx, cleaned)
	if err != nil {
		return o.unavailable(userID, trace, err)
	}
	if !ok {
		o.metrics.ObserveMessage("not_found")
		return &Reply{
			Message: "Medicine not found. Please check spelling.",
			Trace:   append(trace, "Fuzzy match failed"),
		}
	}
	trace = append(trace, fmt.Sprintf("Fuzzy matched medicine: %s", medicine))

	if intent.Quantity <= 0 {
		if err := o.pending.Upsert(ctx, userID, medicine); err != nil {
			return o.unavailable(userID, trace, err)
		}
		o.metrics.ObserveMessage("pending_saved")
		return &Reply{
			Message: fmt.Sprintf("How many units of %s would you like?", medicine),
			Trace:   append(trace, "Pending order saved"),
		}
	}

	stock, err := o.inventory.Check(ctx, medicine, intent.Quantity)
	if err != nil {
		return o.unavailable(userID, trace, err)
	}
	trace = append(trace, fmt.Sprintf("Stock check: %s", stock.Status))

	if stock.Status != pharmacy.StockAvailable {
		result := "out_of_stock"
		if stock.Status == pharmacy.StockNotFound {
			result = "not_found"
		}
		o.metrics.ObserveMessage(result)
		o.metrics.ObserveOrder(result)
		return &Reply{
			Message: fmt.Sprintf("%s is out of stock.", medicine),
			Trace:   trace,
		}
	}

	safety, err := o.safety.Check(ctx, userID, medicine)
	if err != nil {
		return o.unavailable(userID, trace, err)
	}
	trace = append(trace, fmt.Sprintf("Safety check: %s", safety.Status))

	if safety.Status == pharmacy.SafetyBlocked {
		message := safety.Message
		if message == "" {
			message = "Order blocked due to safety policy."
		}
		o.metrics.ObserveMessage("blocked")
		o.metrics.ObserveOrder("blocked")
		return &Reply{
			Message: message,
			Trace:   trace,
		}
	}

	receipt, err := o.committer.Place(ctx, userID, medicine, intent.Quantity, intent.DosageFrequency)
	if err != nil {
		// The committer re-checks what the gates already passed; a stale
		// read can still lose the race here.
		switch {
		case errors.Is(err, pharmacy.ErrInsufficientStock):
			o.metrics.ObserveMessage("out_of_stock")
			o.metrics.ObserveOrder("out_of_stock")
			return &Reply{
				Message: fmt.Sprintf("%s is out of stock.", medicine),
				Trace:   append(trace, "Stock ran out while placing the order"),
			}
		case errors.Is(err, pharmacy.ErrDuplicateRecentOrder):
			o.metrics.ObserveMessage("blocked")
			o.metrics.ObserveOrder("blocked")
			return &Reply{
				Message: "Order blocked due to safety policy.",
				Trace:   append(trace, "Duplicate order detected while placing the order"),
			}
		default:
			return o.unavailable(userID, trace, err)
		}
	}

	o.metrics.ObserveMessage("ordered")
	o.metrics.ObserveOrder("placed")
	return &Reply{
		Message: fmt.Sprintf("Order placed successfully for %s.", medicine),
		Data:    receipt,
		Trace:   append(trace, "Order placed"),
	}
}

func (o *Orchestrator) unavailable(userID string, trace []string, err error) *Reply {
	o.logger.Error("chat flow failed", "user_id", userID, "error", err)
	o.metrics.ObserveMessage("unavailable")
	return &Reply{
		Message: unavailableMessage,
		Trace:   append(trace, "Service error"),
	}
}

// numericMessage reports whether the trimmed message is entirely digits.
// The quantity is best-effort: an unparseable value comes back as 0, and
// the order flow then asks for the quantity again. The pending order is
// consumed either way.
func numericMessage(message string) (int, bool) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return 0, false
	}
	for _, r := range trimmed {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, true
	}
	return value, true
}

func describeIntent(intent Intent) string {
	switch in := intent.(type) {
	case RecommendIntent:
		return fmt.Sprintf("recommend (symptom: %s)", in.Symptom)
	case OrderIntent:
		return fmt.Sprintf("order (medicine: %s, quantity: %d)", in.Medicine, in.Quantity)
	default:
		return "unknown"
	}
}
