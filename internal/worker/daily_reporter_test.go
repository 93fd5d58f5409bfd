package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
	"github.com/Afrothundr/broccoli-scheduler/internal/report"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// fakeUserStore serves a single user by id.
type fakeUserStore struct {
	user *domain.User
	err  error
}

func (s *fakeUserStore) GetWithItemsAndTrips(ctx context.Context, id int64) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.ID != id {
		return nil, store.ErrUserNotFound
	}
	return s.user, nil
}

func (s *fakeUserStore) List(ctx context.Context) ([]domain.User, error) {
	if s.user == nil {
		return nil, nil
	}
	return []domain.User{*s.user}, nil
}

// fakeSender captures sent emails.
type fakeSender struct {
	to      string
	subject string
	html    string
	sends   int
	err     error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	s.sends++
	if s.err != nil {
		return s.err
	}
	s.to = to
	s.subject = subject
	s.html = html
	return nil
}

// fakeRecipes returns a canned suggestion.
type fakeRecipes struct {
	suggestion  *report.RecipeSuggestion
	ingredients []string
	err         error
}

func (r *fakeRecipes) Suggest(ctx context.Context, ingredients []string) (*report.RecipeSuggestion, error) {
	r.ingredients = ingredients
	return r.suggestion, r.err
}

// reportUser builds a user whose inventory produces a non-empty report.
func reportUser() *domain.User {
	now := time.Now().UTC()
	itemType := func(name string, lifespan time.Duration) domain.ItemType {
		return domain.ItemType{
			Name:                     name,
			CreatedAt:                now,
			SuggestedLifeSpanSeconds: int64(lifespan / time.Second),
			StorageAdvice:            "Keep refrigerated",
		}
	}
	return &domain.User{
		ID:    7,
		Email: "fern@example.com",
		Items: []domain.Item{
			{ID: 1, Name: "Spinach", Status: domain.ItemStatusOld, PercentConsumed: 40,
				ItemTypes: []domain.ItemType{itemType("Leafy greens", 10*time.Minute)}},
			{ID: 2, Name: "Yogurt", Status: domain.ItemStatusFresh, PercentConsumed: 10,
				ItemTypes: []domain.ItemType{itemType("Dairy", time.Hour)}},
			{ID: 3, Name: "Lettuce", Status: domain.ItemStatusBad,
				ItemTypes: []domain.ItemType{itemType("Leafy greens", time.Minute)}},
		},
		GroceryTrips: []domain.GroceryTrip{{
			ID:    1,
			Items: []domain.Item{{Status: domain.ItemStatusEaten, Price: 30}},
		}},
	}
}

func TestDailyReportHandlerSendsReport(t *testing.T) {
	t.Parallel()

	users := &fakeUserStore{user: reportUser()}
	sender := &fakeSender{}
	recipes := &fakeRecipes{suggestion: &report.RecipeSuggestion{
		Title:           "Spinach Salad",
		UsedIngredients: []string{"spinach"},
	}}
	h := NewDailyReportHandler(users, recipes, sender, nil)
	h.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 7})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.sends, "exactly one email should go out")
	assert.Equal(t, "fern@example.com", sender.to)
	assert.Equal(t, "Pantry Report for June 1, 2025", sender.subject)
	assert.Contains(t, sender.html, "Spinach", "the soonest-expiring item should be in the report")
	assert.Contains(t, sender.html, "Spinach Salad", "the recipe suggestion should be included")
	assert.Equal(t, []string{"Leafy greens", "Dairy", "Leafy greens"}, recipes.ingredients,
		"ingredient names come from the featured items' first types")
}

func TestDailyReportHandlerSkipsEmptyReport(t *testing.T) {
	t.Parallel()

	users := &fakeUserStore{user: &domain.User{ID: 7, Email: "fern@example.com"}}
	sender := &fakeSender{}
	h := NewDailyReportHandler(users, nil, sender, nil)

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 7})

	require.NoError(t, err)
	assert.Zero(t, sender.sends, "an empty report must not be emailed")
}

func TestDailyReportHandlerMissingUserIsTerminal(t *testing.T) {
	t.Parallel()

	h := NewDailyReportHandler(&fakeUserStore{}, nil, &fakeSender{}, nil)

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 404})

	require.Error(t, err)
	assert.True(t, IsPermanent(err), "a deleted user will never reappear")
}

func TestDailyReportHandlerStoreFailureIsRecoverable(t *testing.T) {
	t.Parallel()

	users := &fakeUserStore{err: errors.New("connection refused")}
	h := NewDailyReportHandler(users, nil, &fakeSender{}, nil)

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 7})

	require.Error(t, err)
	assert.False(t, IsPermanent(err), "a flaky database read should be retried")
}

func TestDailyReportHandlerBadInventoryIsTerminal(t *testing.T) {
	t.Parallel()

	user := reportUser()
	user.Items = append(user.Items, domain.Item{ID: 9, Status: domain.ItemStatusFresh})
	h := NewDailyReportHandler(&fakeUserStore{user: user}, nil, &fakeSender{}, nil)

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 7})

	require.Error(t, err)
	assert.True(t, IsPermanent(err), "classifier preconditions do not heal on retry")
	assert.ErrorIs(t, err, domain.ErrMissingItemType)
}

func TestDailyReportHandlerRecipeFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	recipes := &fakeRecipes{err: errors.New("quota exceeded")}
	h := NewDailyReportHandler(&fakeUserStore{user: reportUser()}, recipes, sender, nil)

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 7})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.sends, "the report should go out without a recipe")
	assert.NotContains(t, sender.html, "Recipe Idea", "no recipe block should be rendered")
}

func TestDailyReportHandlerSendFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("rate limited")}
	h := NewDailyReportHandler(&fakeUserStore{user: reportUser()}, nil, sender, nil)

	err := h.Handle(context.Background(), &queue.DailyReportPayload{UserID: 7})

	assert.NoError(t, err, "a failed send is logged, not retried")
	assert.Equal(t, 1, sender.sends)
}
