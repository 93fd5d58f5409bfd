package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

func reportItem(name, advice string, remaining float64) domain.Item {
	return domain.Item{
		Name:            name,
		PercentConsumed: 100 - remaining,
		ItemTypes:       []domain.ItemType{{Name: "type", StorageAdvice: advice}},
	}
}

func TestNewDataCapsSections(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		reportItem("a", "", 10), reportItem("b", "", 20),
		reportItem("c", "", 30), reportItem("d", "", 40),
	}

	d := NewData(items, items, 50, 1.25, nil)

	assert.Len(t, d.EatFirst, 3, "the eat-first section shows at most three cards")
	assert.Len(t, d.Remove, 3, "the removal section shows at most three cards")
	assert.Equal(t, "a", d.EatFirst[0].Name, "capping keeps the front of the ranking")
}

func TestDataEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, NewData(nil, nil, 0, 0, nil).Empty())
	assert.False(t, NewData([]domain.Item{reportItem("a", "", 10)}, nil, 0, 0, nil).Empty())
	assert.False(t, NewData(nil, []domain.Item{reportItem("a", "", 10)}, 0, 0, nil).Empty())
}

func TestSubject(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "Pantry Report for January 2, 2025", Subject(date))
}

func TestRenderFullReport(t *testing.T) {
	t.Parallel()

	d := NewData(
		[]domain.Item{reportItem("Spinach", "Keep refrigerated", 60)},
		[]domain.Item{reportItem("Lettuce", "Compost it", 5)},
		72,
		13.37,
		&RecipeSuggestion{
			Title:           "Green Curry",
			UsedIngredients: []string{"spinach", "coconut milk", "basil"},
			SourceURL:       "https://recipes.example.com/green-curry",
		},
	)

	html, err := Render(d)

	require.NoError(t, err)
	assert.Contains(t, html, "Spinach")
	assert.Contains(t, html, "Keep refrigerated")
	assert.Contains(t, html, "60%", "percent remaining should render without decimals")
	assert.Contains(t, html, "Lettuce")
	assert.Contains(t, html, "Compost it")
	assert.Contains(t, html, "72%")
	assert.Contains(t, html, "$13.37", "savings should render with two decimals")
	assert.Contains(t, html, "Green Curry")
	assert.Contains(t, html, "spinach, coconut milk and basil",
		"ingredients should read as natural prose")
	assert.Contains(t, html, "https://recipes.example.com/green-curry")
}

func TestRenderOmitsOptionalSections(t *testing.T) {
	t.Parallel()

	d := NewData([]domain.Item{reportItem("Spinach", "Keep refrigerated", 60)}, nil, 0, 0, nil)

	html, err := Render(d)

	require.NoError(t, err)
	assert.NotContains(t, html, "Recipe Idea", "no recipe block without a suggestion")
	assert.NotContains(t, html, "Might be that time", "no removal section without removals")
	assert.Contains(t, html, "$0.00", "zero savings still renders as a dollar figure")
}

func TestJoinIngredients(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", joinIngredients(nil))
	assert.Equal(t, "eggs", joinIngredients([]string{"eggs"}))
	assert.Equal(t, "eggs and milk", joinIngredients([]string{"eggs", "milk"}))
	assert.Equal(t, "eggs, milk and flour", joinIngredients([]string{"eggs", "milk", "flour"}))
}
