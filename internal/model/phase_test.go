package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryPhaseHasDisplay(t *testing.T) {
	assert.Len(t, AllTradingPhases, len(phaseDisplays))
	for _, phase := range AllTradingPhases {
		assert.True(t, phase.Valid(), phase)
		assert.NotEqual(t, UnknownPhaseLabel, phase.Display().Label, phase)
	}
}

func TestPhaseColors(t *testing.T) {
	am := PhaseContinuousAM.Display()
	assert.Equal(t, "早盘连续竞价", am.Label)
	assert.Equal(t, PhaseColorActive, am.Color)

	assert.Equal(t, PhaseColorActive, PhaseContinuousPM.Display().Color)
	assert.Equal(t, PhaseColorClosed, PhaseClosed.Display().Color)
	assert.Equal(t, PhaseColorClosed, PhaseNonTrading.Display().Color)
	assert.Equal(t, PhaseColorAuction, PhaseOpenCall.Display().Color)
	assert.Equal(t, PhaseColorAuction, PhaseBreak.Display().Color)

	assert.NotEqual(t, am.Color, PhaseClosed.Display().Color)
	assert.NotEqual(t, am.Color, PhaseOpenCall.Display().Color)
}

func TestUnknownPhase(t *testing.T) {
	d := TradingPhase("lunar_auction").Display()
	assert.Equal(t, UnknownPhaseLabel, d.Label)
	assert.Equal(t, PhaseColorAuction, d.Color)
	assert.False(t, TradingPhase("").Valid())
}

func TestParsePanel(t *testing.T) {
	p, ok := ParsePanel("orders")
	assert.True(t, ok)
	assert.Equal(t, PanelOrders, p)
	assert.True(t, p.Paged())

	_, ok = ParsePanel("settings")
	assert.False(t, ok)
	assert.False(t, PanelQuote.Paged())
}
