package formatter

import (
	"testing"

	"github.com/alexanderramin/itinera/internal/teatest"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

func TestSpinnerModel_StopClearsLine(t *testing.T) {
	d := teatest.New(t, spinnerModel{spin: spinner.New(spinner.WithSpinner(spinner.Dot)), message: "Planning your trip..."})
	d.DrainInit()

	assert.Contains(t, d.View(), "Planning your trip...")
	assert.False(t, d.Quitting)

	d.Send(stopMsg{})
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())
}

func TestSpinnerModel_IgnoresOtherMessages(t *testing.T) {
	d := teatest.New(t, spinnerModel{spin: spinner.New(), message: "Refining"})
	d.Send("noise")

	assert.False(t, d.Quitting)
	assert.Contains(t, d.View(), "Refining")
}
