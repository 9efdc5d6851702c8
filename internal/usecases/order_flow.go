package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"orderbot/internal/entities"
	"orderbot/internal/infrastructure"
	"orderbot/internal/interfaces"
)

// ErrNoSession is returned when input arrives for a user with no order form
// in flight, or when a commit is attempted without a registered user.
var ErrNoSession = errors.New("no active order session")

// InputKind distinguishes the three things a user can send mid-form.
type InputKind int

const (
	InputText   InputKind = iota // free text message
	InputSelect                  // button-press callback
	InputCancel                  // explicit cancel signal
)

type Input struct {
	Kind InputKind
	Data string // message text or callback payload
}

// Markup tells the transport which keyboard to attach to a reply. The flow
// itself stays transport-free.
type Markup int

const (
	MarkupNone Markup = iota
	MarkupMain
	MarkupCancel
	MarkupBotTypes
)

type Reply struct {
	Text   string
	Markup Markup
}

// BotTypeOption maps a callback key to its stored label.
type BotTypeOption struct {
	Key   string
	Label string
}

// BotTypeOptions is the closed set of selectable bot types, in keyboard order.
var BotTypeOptions = []BotTypeOption{
	{Key: "type_info", Label: "Info"},
	{Key: "type_game", Label: "Game"},
	{Key: "type_shop", Label: "Shop"},
	{Key: "type_support", Label: "Support"},
	{Key: "type_funnel", Label: "Sales Funnel"},
}

func botTypeLabel(key string) (string, bool) {
	for _, opt := range BotTypeOptions {
		if opt.Key == key {
			return opt.Label, true
		}
	}
	return "", false
}

// FlowConfig carries the display and validation settings of the order form.
type FlowConfig struct {
	Currency     string
	MinAmount    float64
	MaxAmount    float64
	AdminContact string // handle shown in the confirmation message
}

// OrderFlow drives the five-step order form: bot type, functionality,
// audience, budget, preferences. Each step accepts exactly one input; cancel
// works everywhere and nothing is persisted before the final commit.
type OrderFlow struct {
	sessions *infrastructure.SessionManager
	users    interfaces.UserStore
	orders   interfaces.OrderStore
	referral *ReferralService
	notifier *Notifier
	cfg      FlowConfig
}

func NewOrderFlow(sessions *infrastructure.SessionManager, users interfaces.UserStore,
	orders interfaces.OrderStore, referral *ReferralService, notifier *Notifier, cfg FlowConfig) *OrderFlow {
	return &OrderFlow{
		sessions: sessions,
		users:    users,
		orders:   orders,
		referral: referral,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Active reports whether chatID has a form in flight.
func (f *OrderFlow) Active(chatID int64) bool {
	return f.sessions.Active(chatID)
}

// Start opens a fresh order form for chatID, discarding any previous one.
func (f *OrderFlow) Start(chatID int64) Reply {
	f.sessions.Start(chatID)
	return Reply{
		Text:   "🎯 Let's set up your bot order!\n\n📝 First, pick the bot type:",
		Markup: MarkupBotTypes,
	}
}

// Cancel discards the form and returns to idle. Safe to call at any step.
func (f *OrderFlow) Cancel(chatID int64) Reply {
	f.sessions.Clear(chatID)
	return Reply{Text: "❌ Order cancelled.", Markup: MarkupMain}
}

// Handle advances the form by one input for the given registered user.
func (f *OrderFlow) Handle(ctx context.Context, user *entities.User, in Input) (Reply, error) {
	if user == nil {
		return Reply{}, ErrNoSession
	}

	session := f.sessions.Get(user.TelegramID)
	if session == nil || session.State == infrastructure.StateIdle {
		return Reply{}, ErrNoSession
	}

	if in.Kind == InputCancel {
		return f.Cancel(user.TelegramID), nil
	}

	switch session.State {
	case infrastructure.StateBotType:
		return f.handleBotType(session, in), nil
	case infrastructure.StateFunctionality:
		return f.handleFunctionality(session, in), nil
	case infrastructure.StateAudience:
		return f.handleAudience(session, in), nil
	case infrastructure.StateBudget:
		return f.handleBudget(session, in), nil
	case infrastructure.StatePreferences:
		return f.handlePreferences(ctx, user, session, in)
	default:
		return Reply{}, ErrNoSession
	}
}

func (f *OrderFlow) handleBotType(session *infrastructure.OrderSession, in Input) Reply {
	if in.Kind != InputSelect {
		return Reply{
			Text:   "📝 Please pick a bot type using the buttons:",
			Markup: MarkupBotTypes,
		}
	}
	label, ok := botTypeLabel(in.Data)
	if !ok {
		// Unknown callback payload; stay put.
		return Reply{
			Text:   "📝 Please pick a bot type using the buttons:",
			Markup: MarkupBotTypes,
		}
	}

	session.BotType = label
	session.State = infrastructure.StateFunctionality
	return Reply{
		Text: fmt.Sprintf("✅ Type selected: %s\n\n"+
			"📝 Now describe the bot's main functionality:\n"+
			"(e.g. taking orders, sending notifications, a game, ...)", label),
		Markup: MarkupCancel,
	}
}

func (f *OrderFlow) handleFunctionality(session *infrastructure.OrderSession, in Input) Reply {
	text := strings.TrimSpace(in.Data)
	if in.Kind != InputText || text == "" {
		return Reply{Text: "📝 Please describe the functionality as a text message:", Markup: MarkupCancel}
	}

	session.Functionality = text
	session.State = infrastructure.StateAudience
	return Reply{
		Text: "✅ Functionality saved!\n\n" +
			"👥 Describe your bot's target audience:\n" +
			"(e.g. entrepreneurs, gamers, students, ...)",
		Markup: MarkupCancel,
	}
}

func (f *OrderFlow) handleAudience(session *infrastructure.OrderSession, in Input) Reply {
	text := strings.TrimSpace(in.Data)
	if in.Kind != InputText || text == "" {
		return Reply{Text: "👥 Please describe the target audience as a text message:", Markup: MarkupCancel}
	}

	session.TargetAudience = text
	session.State = infrastructure.StateBudget
	return Reply{
		Text: fmt.Sprintf("✅ Target audience saved!\n\n"+
			"💰 Now enter your budget for the bot (in %s):\n"+
			"(e.g. 50000, 100000, 150000)", f.cfg.Currency),
		Markup: MarkupCancel,
	}
}

// handleBudget validates the numeric budget. Invalid input keeps the form on
// this step and re-prompts with a message naming the failure.
func (f *OrderFlow) handleBudget(session *infrastructure.OrderSession, in Input) Reply {
	budget, err := ParseBudget(in.Data)
	if err != nil {
		return Reply{Text: "❌ Please enter a number (e.g. 50000)", Markup: MarkupCancel}
	}
	if budget < f.cfg.MinAmount {
		return Reply{
			Text:   fmt.Sprintf("❌ The minimum budget is %.0f%s. Enter it again:", f.cfg.MinAmount, f.cfg.Currency),
			Markup: MarkupCancel,
		}
	}
	if budget > f.cfg.MaxAmount {
		return Reply{
			Text:   fmt.Sprintf("❌ That amount is too large. Enter an amount up to %.0f%s:", f.cfg.MaxAmount, f.cfg.Currency),
			Markup: MarkupCancel,
		}
	}

	session.Budget = budget
	session.State = infrastructure.StatePreferences
	return Reply{
		Text: fmt.Sprintf("✅ Budget of %.0f%s saved!\n\n"+
			"✨ Finally, any additional preferences:\n"+
			"(e.g. design, integrations, deadlines, ...)", budget, f.cfg.Currency),
		Markup: MarkupCancel,
	}
}

// handlePreferences is the terminal step: it records the last field, runs
// referral attribution, commits the order (and its commission row) in one
// transaction, fires notifications, and clears the session.
func (f *OrderFlow) handlePreferences(ctx context.Context, user *entities.User,
	session *infrastructure.OrderSession, in Input) (Reply, error) {

	text := strings.TrimSpace(in.Data)
	if in.Kind != InputText || text == "" {
		return Reply{Text: "✨ Please send your preferences as a text message:", Markup: MarkupCancel}, nil
	}
	session.Preferences = text

	partnerID, percent, err := f.referral.Attribute(ctx, user)
	if err != nil {
		return Reply{}, fmt.Errorf("referral attribution: %w", err)
	}

	order := &entities.Order{
		UserID:         user.ID,
		PartnerID:      partnerID,
		BotType:        session.BotType,
		Functionality:  session.Functionality,
		TargetAudience: session.TargetAudience,
		Preferences:    session.Preferences,
		Status:         entities.StatusNew,
		PartnerPercent: percent,
		Amount:         session.Budget,
	}

	var payment *entities.PartnerPayment
	if partnerID != nil {
		payment = &entities.PartnerPayment{
			PartnerID: *partnerID,
			Amount:    order.Commission(),
			Percent:   percent,
		}
	}

	if err := f.orders.CreateWithPayment(ctx, order, payment); err != nil {
		// Session is kept so the user can resend the last message and retry.
		return Reply{}, fmt.Errorf("commit order: %w", err)
	}

	f.notifier.NotifyNewOrder(ctx, order, user)
	f.sessions.Clear(user.TelegramID)
	log.Printf("[bot] order #%d created for user %d (partner %v, %.0f%%)",
		order.ID, user.ID, partnerID, percent)

	return Reply{
		Text: fmt.Sprintf("🎉 Order created!\n\n"+
			"📋 Your order number: #%d\n"+
			"💰 Order budget: %.0f%s\n"+
			"⏳ An administrator will contact you within 24 hours.\n\n"+
			"📞 Questions: @%s", order.ID, order.Amount, f.cfg.Currency, f.cfg.AdminContact),
		Markup: MarkupMain,
	}, nil
}

// ParseBudget normalizes a budget token (comma as fractional separator) and
// parses it as a finite number. ParseFloat accepts "NaN" and "Inf", which
// would slip past the min/max comparisons, so those are rejected here.
func ParseBudget(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}
