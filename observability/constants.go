package observability

// Metric name prefix
const MetricPrefix = "casino"

// Metric names
const (
	CommandsTotal    = MetricPrefix + "_commands_total"
	ChipsDeltaTotal  = MetricPrefix + "_chips_delta_total"
	EventsTotal      = MetricPrefix + "_events_total"
	ChatRepliesTotal = MetricPrefix + "_chat_replies_total"
	ChatQueueDepth   = MetricPrefix + "_chat_queue_depth"
)

// Label keys
const (
	LabelCommand   = "command"
	LabelOutcome   = "outcome"
	LabelGame      = "game"
	LabelResult    = "result"
	LabelEventType = "event_type"
)
