package mqtt

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
)

// Publisher is the part of MqttCommunicator used to fan out events
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// DecisionPublisher is a moderation.Observer that publishes every decision
// taken while the policy is active on capsfriday/events/<outcome>.
type DecisionPublisher struct {
	pub Publisher
}

// NewDecisionPublisher creates a DecisionPublisher on top of pub
func NewDecisionPublisher(pub Publisher) *DecisionPublisher {
	return &DecisionPublisher{pub: pub}
}

// Observe implements moderation.Observer
func (p *DecisionPublisher) Observe(d moderation.Decision) {
	if d.Outcome == moderation.OutcomeInactive {
		return
	}
	topic := EventTopic(string(d.Outcome))
	if err := p.pub.Publish(topic, d); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo publicar la decisión %s en %s: %v", d.ID, topic, err), "MQTT")
	}
}

// StatusReport is the reply to capsfriday/request/status
type StatusReport struct {
	Active   bool   `json:"active"`
	Window   string `json:"window"`
	Timezone string `json:"timezone"`
	Now      string `json:"now"`
}

// StatusSource exposes the state reported on status requests
type StatusSource interface {
	Active() bool
	Window() time.Duration
}

// StatusHandler answers status requests from the engine state
func StatusHandler(src StatusSource, loc *time.Location) RequestHandler {
	if loc == nil {
		loc = time.UTC
	}
	return func(map[string]interface{}) (interface{}, error) {
		return StatusReport{
			Active:   src.Active(),
			Window:   src.Window().String(),
			Timezone: loc.String(),
			Now:      time.Now().In(loc).Format(time.RFC3339),
		}, nil
	}
}

// RegisterHandlers subscribes the request handlers the bot answers
func (mc *MqttCommunicator) RegisterHandlers(src StatusSource, loc *time.Location) {
	mc.On("status", StatusHandler(src, loc))
}
