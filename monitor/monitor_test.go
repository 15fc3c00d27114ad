package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMonitorIsSafe(t *testing.T) {
	var m *Monitor
	m.IncOnlinePlayers()
	m.SetActiveRooms(3)
	m.ObserveCommand("rollDice", nil, time.Millisecond)
	m.IncGamesFinished()
	assert.Zero(t, m.Requests())
}

func TestObserveCommand(t *testing.T) {
	m := NewMonitor("test", prometheus.NewRegistry())

	m.ObserveCommand("rollDice", nil, time.Millisecond)
	m.ObserveCommand("rollDice", errors.New("not your turn"), time.Millisecond)
	m.ObserveCommand("buyProperty", nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.CommandsTotal.WithLabelValues("rollDice", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.CommandsTotal.WithLabelValues("rollDice", "ok")))
	assert.Equal(t, int64(3), m.Requests())
}

func TestGauges(t *testing.T) {
	m := NewMonitor("test", prometheus.NewRegistry())
	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	m.SetActiveRooms(4)
	m.IncReconnects()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.OnlinePlayers))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.metrics.ActiveRooms))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.Reconnects))
}
