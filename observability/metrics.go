package observability

import (
	"context"

	"casinobot/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the casino collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	commands    *prometheus.CounterVec
	chipsDelta  *prometheus.CounterVec
	events      *prometheus.CounterVec
	chatReplies *prometheus.CounterVec
	chatQueue   prometheus.Gauge
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CommandsTotal,
			Help: "Casino commands by outcome.",
		}, []string{LabelCommand, LabelOutcome}),
		chipsDelta: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChipsDeltaTotal,
			Help: "Chips won or lost by players per game.",
		}, []string{LabelGame, LabelResult}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: EventsTotal,
			Help: "Domain events emitted after commit.",
		}, []string{LabelEventType}),
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChatRepliesTotal,
			Help: "Chat responder replies by outcome.",
		}, []string{LabelOutcome}),
		chatQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: ChatQueueDepth,
			Help: "Chat generation jobs waiting for a worker.",
		}),
	}

	m.registry.MustRegister(
		m.commands,
		m.chipsDelta,
		m.events,
		m.chatReplies,
		m.chatQueue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCommand counts one finished command
func (m *Metrics) ObserveCommand(command string, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

// ObserveChips adds the absolute delta of one settled game
func (m *Metrics) ObserveChips(game string, delta int64) {
	switch {
	case delta > 0:
		m.chipsDelta.WithLabelValues(game, "won").Add(float64(delta))
	case delta < 0:
		m.chipsDelta.WithLabelValues(game, "lost").Add(float64(-delta))
	}
}

// ObserveChatReply counts one chat responder outcome
func (m *Metrics) ObserveChatReply(outcome string) {
	m.chatReplies.WithLabelValues(outcome).Inc()
}

// SetChatQueueDepth records how many chat jobs are queued
func (m *Metrics) SetChatQueueDepth(depth int) {
	m.chatQueue.Set(float64(depth))
}

// CountEvents subscribes to the bus and counts every emitted event
func (m *Metrics) CountEvents(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		m.events.WithLabelValues(string(event.Type())).Inc()
	})
}
