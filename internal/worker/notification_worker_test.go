package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/service"
)

func TestWorkerLogsNotificationsAndOutbound(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	cfg := config.NotificationConfig{EmailFrom: "desk@example.com", SMSSender: "DESK"}
	dispatcher := events.NewInMemoryDispatcher(logger)
	outbound := service.NewNotificationService(dispatcher, logger, cfg)
	center := notification.NewCenter(cfg)
	defer center.Close()

	StartNotificationWorker(outbound, center, logger)

	center.Show(domain.NotificationSuccess, "Complaint Registered Successfully!")
	if n := logs.FilterMessage("notification shown").Len(); n != 1 {
		t.Fatalf("expected one activity entry, got %d", n)
	}

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:   events.EventComplaintSubmitted,
		TaskID: "CM000001",
		Payload: events.ComplaintSubmittedPayload{
			Email:          "consumer@demo.com",
			ContactNumber:  "+919876543210",
			ResolutionHint: "4-8 hours",
		},
	})
	if logs.FilterMessage("sendSMSStub").Len() != 1 || logs.FilterMessage("sendEmailStub").Len() != 1 {
		t.Fatalf("expected sms and email stubs, got %v", logs.All())
	}

	_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventTaskAssigned, Payload: "bogus"})
	if logs.FilterMessage("event handler failed").Len() != 1 {
		t.Fatal("expected payload mismatch to be logged by the dispatcher")
	}
}
