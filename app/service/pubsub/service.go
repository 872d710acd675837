package pubsub

import (
	"adminctl/app/dto"

	"github.com/samber/do"
	"github.com/simonfxr/pubsub"
)

// SessionChannel carries dto.SessionEvent messages.
const SessionChannel = "session"

type Service struct {
	bus *pubsub.Bus
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		bus: pubsub.NewBus(),
	}, nil
}

func (s *Service) Subscribe(channel string, callback func(message any)) *pubsub.Subscription {
	return s.bus.Subscribe(channel, callback)
}

// SubscribeSession delivers session lifecycle events. Handlers run on the
// publishing goroutine and must not block.
func (s *Service) SubscribeSession(callback func(event dto.SessionEvent)) *pubsub.Subscription {
	return s.bus.Subscribe(SessionChannel, func(message any) {
		if event, ok := message.(dto.SessionEvent); ok {
			callback(event)
		}
	})
}

func (s *Service) Unsubscribe(sub *pubsub.Subscription) {
	s.bus.Unsubscribe(sub)
}

func (s *Service) Publish(channel string, message dto.SessionEvent) {
	s.bus.Publish(channel, message)
}
