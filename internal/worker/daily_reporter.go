package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/domain/analytics"
	"github.com/Afrothundr/broccoli-scheduler/internal/domain/freshness"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
	"github.com/Afrothundr/broccoli-scheduler/internal/report"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// RecipeFinder is the optional recipe collaborator contract. It is best
// effort: the report goes out with or without a suggestion.
type RecipeFinder interface {
	Suggest(ctx context.Context, ingredients []string) (*report.RecipeSuggestion, error)
}

// EmailSender is the outbound email collaborator contract.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// DailyReportHandler compiles and sends one user's daily pantry report.
type DailyReportHandler struct {
	users   store.UserStore
	recipes RecipeFinder
	sender  EmailSender
	logger  *slog.Logger

	// now is swappable in tests; it only feeds the subject line date.
	now func() time.Time
}

var _ Handler = (*DailyReportHandler)(nil)

// NewDailyReportHandler creates the handler for the daily reporter queue.
// recipes may be nil to disable recipe suggestions. If logger is nil, the
// default logger is used.
func NewDailyReportHandler(users store.UserStore, recipes RecipeFinder, sender EmailSender, logger *slog.Logger) *DailyReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyReportHandler{
		users:   users,
		recipes: recipes,
		sender:  sender,
		logger:  logger.With(slog.String("component", "daily_report_handler")),
		now:     time.Now,
	}
}

// Handle implements Handler. A user that no longer exists or whose data
// violates classifier preconditions is a permanent failure; a store read
// failure is recoverable. An email send failure is only logged: the report
// is time-sensitive, and retrying it tomorrow is the same as skipping
// today.
func (h *DailyReportHandler) Handle(ctx context.Context, p queue.Payload) error {
	payload, ok := p.(*queue.DailyReportPayload)
	if !ok {
		return Permanent(fmt.Errorf("unexpected payload type %T on %s queue", p, queue.TypeDailyReporter))
	}

	logger := h.logger.With(slog.Int64("user_id", payload.UserID))
	logger.Info("compiling daily report")

	user, err := h.users.GetWithItemsAndTrips(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Permanent(err)
		}
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}

	classification, err := freshness.Classify(user.Items)
	if err != nil {
		// Bad inventory data; a retry would see the same items.
		return Permanent(fmt.Errorf("failed to classify items for user %d: %w", payload.UserID, err))
	}

	usageRate, _ := analytics.UsageRate(user.GroceryTrips)
	savings := analytics.TotalSavings(user.GroceryTrips)

	data := report.NewData(classification.EatFirst, classification.Remove, usageRate, savings, nil)
	if data.Empty() {
		logger.Info("nothing to report, skipping daily report")
		return nil
	}

	data.Recipe = h.suggestRecipe(ctx, data, logger)

	html, err := report.Render(data)
	if err != nil {
		return Permanent(err)
	}

	subject := report.Subject(h.now())
	if err := h.sender.Send(ctx, user.Email, subject, html); err != nil {
		// Deliberately not retried; see the method comment.
		logger.Error("failed to send daily report email", "error", err)
		return nil
	}

	logger.Info("daily report sent",
		"eat_first", len(classification.EatFirst),
		"remove", len(classification.Remove))
	return nil
}

// suggestRecipe asks the recipe collaborator for a suggestion based on the
// items featured in the report. Failures are logged and swallowed.
func (h *DailyReportHandler) suggestRecipe(ctx context.Context, data report.Data, logger *slog.Logger) *report.RecipeSuggestion {
	if h.recipes == nil || len(data.EatFirst) == 0 {
		return nil
	}

	ingredients := ingredientNames(data.EatFirst, data.Remove)
	suggestion, err := h.recipes.Suggest(ctx, ingredients)
	if err != nil {
		logger.Warn("recipe lookup failed, sending report without one", "error", err)
		return nil
	}
	return suggestion
}

// ingredientNames collects the first item-type name of each featured item.
// The report sections are already capped, so this stays small.
func ingredientNames(eatFirst, remove []domain.Item) []string {
	var names []string
	for _, item := range eatFirst {
		names = append(names, item.ItemTypes[0].Name)
	}
	for _, item := range remove {
		names = append(names, item.ItemTypes[0].Name)
	}
	return names
}
