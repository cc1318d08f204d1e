package worker

import (
	"context"

	"github.com/spec-kit/agent-console/internal/events"
	"github.com/spec-kit/agent-console/internal/observability"
	"github.com/spec-kit/agent-console/internal/service"
)

// StartJournalWorker registers journal handlers on the dispatcher.
func StartJournalWorker(journalService *service.JournalService, dispatcher events.Dispatcher) {
	if journalService == nil {
		return
	}
	journalService.RegisterHandlers(dispatcher)
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartMetricsWorker counts mutation outcomes per intent kind.
func StartMetricsWorker(metrics *observability.Metrics, dispatcher events.Dispatcher) {
	if metrics == nil || dispatcher == nil {
		return
	}
	outcomes := map[events.EventType]string{
		events.EventMutationApplied:    "applied",
		events.EventMutationConfirmed:  "confirmed",
		events.EventMutationRolledBack: "rolled_back",
	}
	for eventType, outcome := range outcomes {
		result := outcome
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			if payload, ok := event.Payload.(events.MutationPayload); ok {
				metrics.RecordMutation(string(payload.Intent), result)
			}
			return nil
		})
	}
}
