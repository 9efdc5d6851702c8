package usecases

import (
	"context"
	"fmt"
	"log"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"
)

// Notifier fans out new-order summaries to the configured administrators.
// Delivery is best-effort: a failure for one recipient is logged and does not
// affect the others or the already-committed order.
type Notifier struct {
	sender   interfaces.Sender
	users    interfaces.UserStore
	adminIDs []int64
	currency string
}

func NewNotifier(sender interfaces.Sender, users interfaces.UserStore, adminIDs []int64, currency string) *Notifier {
	return &Notifier{
		sender:   sender,
		users:    users,
		adminIDs: adminIDs,
		currency: currency,
	}
}

func (n *Notifier) NotifyNewOrder(ctx context.Context, order *entities.Order, client *entities.User) {
	text := n.formatOrderSummary(ctx, order, client)

	for _, adminID := range n.adminIDs {
		if err := n.sender.SendMessage(adminID, text); err != nil {
			log.Printf("[notify] failed to notify admin %d about order #%d: %v", adminID, order.ID, err)
		}
	}
}

func (n *Notifier) formatOrderSummary(ctx context.Context, order *entities.Order, client *entities.User) string {
	text := fmt.Sprintf(`🚨 NEW ORDER #%d
━━━━━━━━━━━━━━━━━
👤 Client: %s (%s)
📅 Date: %s
📊 Bot type: %s
💰 Budget: %.0f%s
━━━━━━━━━━━━━━━━━
⚡ Functionality:
%s

👥 Target audience:
%s`,
		order.ID,
		client.DisplayName(), client.Handle(),
		order.CreatedAt.Format("02.01.2006 15:04"),
		order.BotType,
		order.Amount, n.currency,
		truncate(order.Functionality, 500),
		truncate(order.TargetAudience, 500),
	)

	if order.PartnerID != nil {
		partner, err := n.users.GetByID(ctx, *order.PartnerID)
		if err != nil {
			log.Printf("[notify] partner lookup failed for order #%d: %v", order.ID, err)
		}
		if partner != nil {
			text += fmt.Sprintf("\n\n👥 Partner: %s (%s)", partner.DisplayName(), partner.Handle())
			text += fmt.Sprintf("\n💰 Commission: %v%% (%.0f%s)", order.PartnerPercent, order.Commission(), n.currency)
		}
	}

	return text
}

// truncate cuts s to max runes, appending an ellipsis when anything was cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
