package ui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

func press(m tea.Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func TestModel_PressTriggersFetchAndShowsLoading(t *testing.T) {
	calls := 0
	m := NewModel(func() { calls++ })

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 1, calls)
	assert.True(t, m.Loading())
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading...")
}

func TestModel_OutcomeHidesLoadingAndShowsMessage(t *testing.T) {
	m := NewModel(nil)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	next, _ := m.Update(OutcomeMsg{Outcome: domain.Succeeded("f", domain.ServiceRecord{Message: "ok"}, time.Now())})
	m = next.(Model)

	assert.False(t, m.Loading())
	assert.Equal(t, "ok", m.Message())
	assert.Contains(t, m.View(), "ok")
	assert.NotContains(t, m.View(), "Loading...")
}

func TestModel_ErrorOutcomeShownInPlace(t *testing.T) {
	m := NewModel(nil)
	next, _ := m.Update(OutcomeMsg{Outcome: domain.Failed("f", &apicall.HTTPError{StatusCode: 500}, time.Now())})

	assert.Equal(t, "Error fetching services: API call failed with status code 500", next.(Model).Message())
}

func TestModel_RepeatedPressesTriggerEachTime(t *testing.T) {
	calls := 0
	m := NewModel(func() { calls++ })

	m, first := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, second := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 2, calls)
	assert.NotNil(t, first)
	assert.Nil(t, second, "spinner is already ticking")
	assert.True(t, m.Loading())
}

func TestModel_QuitKey(t *testing.T) {
	m := NewModel(nil)
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_SpinnerTickIgnoredWhenIdle(t *testing.T) {
	m := NewModel(nil)
	_, cmd := m.Update(spinner.TickMsg{})

	assert.Nil(t, cmd)
}
