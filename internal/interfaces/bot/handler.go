package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"orderbot/internal/entities"
	"orderbot/internal/usecases"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/skip2/go-qrcode"
)

// Handler routes Telegram updates into the order flow and the partner
// program screens. It owns no business rules: every decision lives in the
// usecases it delegates to.
type Handler struct {
	bot       *tgbotapi.BotAPI
	users     *usecases.UserService
	flow      *usecases.OrderFlow
	dashboard *usecases.DashboardUsecase
	rates     usecases.ReferralRates
	currency  string
	adminUser string
}

func NewHandler(botAPI *tgbotapi.BotAPI, users *usecases.UserService, flow *usecases.OrderFlow,
	dashboard *usecases.DashboardUsecase, rates usecases.ReferralRates, currency, adminUser string) *Handler {
	return &Handler{
		bot:       botAPI,
		users:     users,
		flow:      flow,
		dashboard: dashboard,
		rates:     rates,
		currency:  currency,
		adminUser: adminUser,
	}
}

func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		h.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	}
}

func (h *Handler) handleMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.handleStart(ctx, msg)
		case "help":
			h.sendHelp(chatID)
		default:
			h.sendMenuPrompt(chatID)
		}
		return
	}

	switch msg.Text {
	case BtnHelp:
		h.sendHelp(chatID)
	case BtnOrder:
		user, err := h.resolveUser(ctx, msg.From)
		if err != nil {
			h.sendError(chatID)
			return
		}
		h.sendReply(chatID, h.flow.Start(user.TelegramID))
	case BtnPartner:
		user, err := h.resolveUser(ctx, msg.From)
		if err != nil {
			h.sendError(chatID)
			return
		}
		h.sendPartnerProgram(ctx, chatID, user)
	case BtnOrders:
		user, err := h.resolveUser(ctx, msg.From)
		if err != nil {
			h.sendError(chatID)
			return
		}
		h.sendMyOrders(ctx, chatID, user)
	case BtnCancel:
		// Sessions are keyed by the sender's id, which only equals the chat
		// id in private chats.
		if msg.From != nil && h.flow.Active(msg.From.ID) {
			h.sendReply(chatID, h.flow.Cancel(msg.From.ID))
		} else {
			h.sendMenuPrompt(chatID)
		}
	default:
		h.handleFreeText(ctx, msg)
	}
}

// handleFreeText feeds text into an in-flight order form, or nudges the user
// back to the menu when no form is open.
func (h *Handler) handleFreeText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if msg.From == nil || !h.flow.Active(msg.From.ID) {
		h.sendMenuPrompt(chatID)
		return
	}

	user, err := h.resolveUser(ctx, msg.From)
	if err != nil {
		h.sendError(chatID)
		return
	}

	reply, err := h.flow.Handle(ctx, user, usecases.Input{Kind: usecases.InputText, Data: msg.Text})
	if err != nil {
		if errors.Is(err, usecases.ErrNoSession) {
			h.sendMenuPrompt(chatID)
			return
		}
		log.Printf("[bot] flow error for chat %d: %v", chatID, err)
		h.sendError(chatID)
		return
	}
	h.sendReply(chatID, reply)
}

func (h *Handler) handleCallback(cb *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == "cancel":
		h.answerCallback(cb.ID, "")
		if cb.From != nil && h.flow.Active(cb.From.ID) {
			h.sendReply(chatID, h.flow.Cancel(cb.From.ID))
		} else {
			h.sendMenuPrompt(chatID)
		}

	case strings.HasPrefix(data, "type_"):
		h.answerCallback(cb.ID, "")
		user, err := h.resolveUser(ctx, cb.From)
		if err != nil {
			h.sendError(chatID)
			return
		}
		reply, err := h.flow.Handle(ctx, user, usecases.Input{Kind: usecases.InputSelect, Data: data})
		if err != nil {
			if errors.Is(err, usecases.ErrNoSession) {
				h.sendMenuPrompt(chatID)
				return
			}
			log.Printf("[bot] flow error for chat %d: %v", chatID, err)
			h.sendError(chatID)
			return
		}
		h.sendReply(chatID, reply)

	case strings.HasPrefix(data, "copy_ref_"):
		id := strings.TrimPrefix(data, "copy_ref_")
		link := fmt.Sprintf("https://t.me/%s?start=%s", h.bot.Self.UserName, id)
		h.answerCallbackAlert(cb.ID, "Link copied!\n"+link)

	default:
		h.answerCallback(cb.ID, "")
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Any in-flight form is discarded on /start.
	if msg.From != nil && h.flow.Active(msg.From.ID) {
		h.flow.Cancel(msg.From.ID)
	}

	user, err := h.users.GetOrCreate(ctx, msg.From.ID, msg.From.UserName,
		msg.From.FirstName, msg.From.LastName, msg.CommandArguments())
	if err != nil {
		log.Printf("[bot] registration failed for chat %d: %v", chatID, err)
		h.sendError(chatID)
		return
	}

	text := fmt.Sprintf("👋 Hi, %s!\n\n"+
		"🤖 I take orders for custom Telegram bots.\n\n"+
		"✨ What I can do for you:\n"+
		"• 🛒 Set up a bot built to your order\n"+
		"• 📊 Enroll you in the partner program\n"+
		"• ⚡ Fast delivery (from 3 days)\n\n"+
		"📌 Pick an action below:", user.FirstName)
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = MainKeyboard()
	h.send(reply)
}

func (h *Handler) sendHelp(chatID int64) {
	text := fmt.Sprintf("🆘 How this bot works:\n\n"+
		"🛒 Placing an order:\n"+
		"1. Press 'Place Order'\n"+
		"2. Answer the form (5 questions)\n"+
		"3. An administrator contacts you within 24 hours\n\n"+
		"📊 Partner program:\n"+
		"• %.0f%% of each referred client's order\n"+
		"• %.0f%% once you bring %d+ clients\n"+
		"• Payout within 3 days of order completion\n\n"+
		"📞 Contact: @%s",
		h.rates.Standard, h.rates.Premium, h.rates.PremiumThreshold, h.adminUser)
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendPartnerProgram(ctx context.Context, chatID int64, user *entities.User) {
	stat, err := h.dashboard.PartnerSummary(ctx, user)
	if err != nil {
		log.Printf("[bot] partner summary failed for user %d: %v", user.ID, err)
		h.sendError(chatID)
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%d", h.bot.Self.UserName, user.ID)
	text := fmt.Sprintf(`📊 Partner Program

👤 Your partner ID: %d
🔗 Your referral link:
%s

💰 Program terms:
• %.0f%% of every referred client's order
• %.0f%% once you bring %d+ clients
• Payout within 3 days of order completion

📈 Your stats:
• Clients referred: %d
• Completed orders: %d
• Awaiting payout: %.0f%s
• Earned in total: %.0f%s

To become a partner, just share your link!`,
		user.ID, link,
		h.rates.Standard, h.rates.Premium, h.rates.PremiumThreshold,
		stat.Referrals, stat.CompletedOrders,
		stat.PendingAmount, h.currency, stat.PaidAmount, h.currency)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = ReferralKeyboard(user.ID)
	h.send(msg)

	h.sendReferralQR(chatID, link)
}

// sendReferralQR sends the referral link as a scannable QR photo.
func (h *Handler) sendReferralQR(chatID int64, link string) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("[bot] qr encode failed: %v", err)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "referral.png", Bytes: png})
	photo.Caption = "📱 Share this QR code to invite clients"
	if _, err := h.bot.Send(photo); err != nil {
		log.Printf("[bot] qr send failed for chat %d: %v", chatID, err)
	}
}

var statusDisplay = map[entities.OrderStatus]string{
	entities.StatusNew:        "🆕 New",
	entities.StatusInProgress: "⏳ In progress",
	entities.StatusCompleted:  "✅ Completed",
	entities.StatusPaid:       "💰 Paid",
}

func (h *Handler) sendMyOrders(ctx context.Context, chatID int64, user *entities.User) {
	orders, err := h.dashboard.ListUserOrders(ctx, user.ID)
	if err != nil {
		log.Printf("[bot] order listing failed for user %d: %v", user.ID, err)
		h.sendError(chatID)
		return
	}
	if len(orders) == 0 {
		h.send(tgbotapi.NewMessage(chatID, "📭 You have no orders yet."))
		return
	}

	for _, order := range orders {
		status, ok := statusDisplay[order.Status]
		if !ok {
			status = "📄 " + string(order.Status)
		}
		text := fmt.Sprintf(`📋 Order #%d
━━━━━━━━━━━━━━
📅 Date: %s
📊 Bot type: %s
⚡ Status: %s
💰 Amount: %.0f%s
━━━━━━━━━━━━━━
🎯 Functionality:
%s

👥 Target audience:
%s`,
			order.ID,
			order.CreatedAt.Format("02.01.2006 15:04"),
			order.BotType,
			status,
			order.Amount, h.currency,
			truncate(order.Functionality, 200),
			truncate(order.TargetAudience, 200))
		h.send(tgbotapi.NewMessage(chatID, text))
	}
}

func (h *Handler) resolveUser(ctx context.Context, from *tgbotapi.User) (*entities.User, error) {
	if from == nil {
		return nil, fmt.Errorf("update without sender")
	}
	user, err := h.users.GetOrCreate(ctx, from.ID, from.UserName, from.FirstName, from.LastName, "")
	if err != nil {
		log.Printf("[bot] user resolution failed for telegram id %d: %v", from.ID, err)
	}
	return user, err
}

func (h *Handler) sendMenuPrompt(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Use the menu buttons:")
	msg.ReplyMarkup = MainKeyboard()
	h.send(msg)
}

func (h *Handler) sendError(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ Something went wrong. Please try again.")
	msg.ReplyMarkup = MainKeyboard()
	h.send(msg)
}

func (h *Handler) sendReply(chatID int64, reply usecases.Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch reply.Markup {
	case usecases.MarkupMain:
		msg.ReplyMarkup = MainKeyboard()
	case usecases.MarkupCancel:
		msg.ReplyMarkup = CancelKeyboard()
	case usecases.MarkupBotTypes:
		msg.ReplyMarkup = BotTypeKeyboard()
	}
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		log.Printf("[bot] send failed: %v", err)
	}
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("[bot] callback answer failed: %v", err)
	}
}

func (h *Handler) answerCallbackAlert(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		log.Printf("[bot] callback alert failed: %v", err)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
