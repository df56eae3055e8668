package notify

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"rentaldesk-backend/internal/logger"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends a Firebase Cloud Messaging notification to the
// branch topic, which the desk devices of that branch subscribe to.
type PushNotifier struct {
	client messageSender
}

// NewPushNotifier initialises a Firebase app from a service account file.
func NewPushNotifier(ctx context.Context, credentialsFile string) (*PushNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &PushNotifier{client: client}, nil
}

func (n *PushNotifier) Channel() string { return "push" }

// BranchTopic is the topic a branch's devices subscribe to.
func BranchTopic(branchID string) string {
	return "branch-" + branchID
}

func (n *PushNotifier) NotifyLateOrders(ctx context.Context, digest LateOrderDigest) error {
	if len(digest.Orders) == 0 {
		return nil
	}

	orders := digest.Sorted()
	body := fmt.Sprintf("%s is %d day(s) late", orders[0].InvoiceNumber, digest.DaysOverdue(orders[0]))
	if len(orders) > 1 {
		body = fmt.Sprintf("%s and %d more", body, len(orders)-1)
	}

	message := &messaging.Message{
		Topic: BranchTopic(digest.Branch.ID),
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%d late order(s)", len(orders)),
			Body:  body,
		},
		Data: map[string]string{
			"type":      "late_orders",
			"branch_id": digest.Branch.ID,
			"count":     strconv.Itoa(len(orders)),
		},
	}

	logger.ExternalServiceCall("FCM", "Send", "topic", message.Topic)
	id, err := n.client.Send(ctx, message)
	logger.ExternalServiceResult("FCM", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	logger.Debug("Push notification sent", "message_id", id, "branch_id", digest.Branch.ID)
	return nil
}
