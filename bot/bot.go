package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"catering-menu/config"
	"catering-menu/models"
	"catering-menu/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// quantities offered on a dish card.
var quantityChoices = []int{1, 2, 5, 10, 20}

// sender is the subset of *tgbotapi.BotAPI the bot needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// formStep tracks where a chat is in the delivery details dialog.
type formStep int

const (
	stepNone formStep = iota
	stepName
	stepPhone
	stepAddress
)

type Bot struct {
	api      sender
	tg       *tgbotapi.BotAPI
	catalog  *services.Catalog
	sessions *services.SessionStore
	images   services.ImageResolver
	link     services.OrderLink
	currency string

	forms   map[int64]formStep
	formsMu sync.RWMutex
}

func New(cfg *config.Config, catalog *services.Catalog, sessions *services.SessionStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	b := newBot(api, cfg, catalog, sessions)
	b.tg = api
	return b, nil
}

func newBot(api sender, cfg *config.Config, catalog *services.Catalog, sessions *services.SessionStore) *Bot {
	b := &Bot{
		api:      api,
		catalog:  catalog,
		sessions: sessions,
		images:   services.ImageResolver{Dir: cfg.Catalog.ImagesDir, Placeholder: cfg.Catalog.Placeholder},
		link:     services.OrderLink{ServiceURL: cfg.Order.ServiceURL, Recipient: cfg.Order.Recipient},
		currency: cfg.Order.Currency,
		forms:    make(map[int64]formStep),
	}
	sessions.OnEvict(b.forgetChat)
	return b
}

// forgetChat drops the dialog state of a chat whose session was evicted.
func (b *Bot) forgetChat(sessionID string) {
	rest, ok := strings.CutPrefix(sessionID, "tg:")
	if !ok {
		return
	}
	chatID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return
	}
	b.setStep(chatID, stepNone)
}

// cardMarkup converts OrderCardContent.Buttons to Telegram inline keyboard (URL vs callback).
func cardMarkup(c services.OrderCardContent) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.URL != "" {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
			}
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func sessionKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Browse the menu"},
			{Command: "cart", Description: "Show your cart"},
			{Command: "order", Description: "Review and send your order"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.setBotCommands(); err != nil {
		log.WithError(err).Warn("set bot commands")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	log.WithField("bot", b.tg.Self.UserName).Info("bot started")

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start" || text == "/menu":
		b.setStep(chatID, stepNone)
		b.sendCategories(chatID)
	case text == "/cart":
		b.sendCart(chatID)
	case text == "/order":
		b.sendOrderCard(chatID)
	case text == "/cancel":
		b.setStep(chatID, stepNone)
		b.removeKeyboard(chatID, "Cancelled.")
	case msg.Contact != nil:
		b.handleFormInput(chatID, msg.Contact.PhoneNumber)
	case text != "":
		b.handleFormInput(chatID, text)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	data := cq.Data
	var toast string

	switch {
	case data == "menu":
		b.sendCategories(chatID)
	case strings.HasPrefix(data, "cat:"):
		i, err := strconv.Atoi(strings.TrimPrefix(data, "cat:"))
		cats := b.catalog.Categories()
		if err != nil || i < 0 || i >= len(cats) {
			break
		}
		b.sendCategory(chatID, cats[i])
	case strings.HasPrefix(data, "dish:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "dish:"), 10, 64)
		if err != nil {
			break
		}
		if d, ok := b.catalog.Dish(id); ok {
			b.sendDish(chatID, d)
		}
	case strings.HasPrefix(data, "add:"):
		toast = b.addToCart(chatID, strings.TrimPrefix(data, "add:"))
	case data == "cart":
		b.sendCart(chatID)
	case strings.HasPrefix(data, "rm:"):
		i, dishID, ok := parseRemove(strings.TrimPrefix(data, "rm:"))
		if !ok {
			break
		}
		toast = b.withSession(chatID, func(s *services.Session) services.Notice { return s.RemoveLine(i, dishID) }).Text
		b.sendCart(chatID)
	case data == "clear":
		toast = b.withSession(chatID, func(s *services.Session) services.Notice { return s.ClearCart() }).Text
		b.sendCart(chatID)
	case data == "checkout":
		b.startCheckout(chatID)
	case data == "info_ok":
		toast = b.withSession(chatID, func(s *services.Session) services.Notice {
			info := s.Customer.Info()
			return s.SubmitCustomer(info.Name, info.Phone, info.Address)
		}).Text
		b.sendOrderCard(chatID)
	case data == "order":
		b.sendOrderCard(chatID)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, toast)); err != nil {
		log.WithError(err).Debug("answer callback")
	}
}

// withSession runs fn on the chat's session. The notice is handed to the caller
// instead of staying pending on the session.
func (b *Bot) withSession(chatID int64, fn func(s *services.Session) services.Notice) services.Notice {
	var n services.Notice
	b.sessions.Do(sessionKey(chatID), func(s *services.Session) {
		n = fn(s)
		s.TakeNotice()
	})
	return n
}

func noticeIcon(n services.Notice) string {
	switch n.Level {
	case services.NoticeSuccess:
		return "✅ "
	case services.NoticeWarning:
		return "⚠️ "
	case services.NoticeError:
		return "❌ "
	}
	return ""
}

func (b *Bot) view(chatID int64) services.OrderView {
	var v services.OrderView
	b.sessions.Do(sessionKey(chatID), func(s *services.Session) {
		v = services.Render(s, b.link, b.currency)
	})
	return v
}

// parseRemove reads "<index>:<dishID>".
func parseRemove(rest string) (int, int64, bool) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	i, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	dishID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return i, dishID, true
}

// addToCart handles "<dishID>:<qty>".
func (b *Bot) addToCart(chatID int64, rest string) string {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ""
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return ""
	}
	d, ok := b.catalog.Dish(id)
	if !ok {
		return ""
	}
	n := b.withSession(chatID, func(s *services.Session) services.Notice { return s.AddDish(d, qty) })
	b.sendWithInline(chatID, noticeIcon(n)+n.Text, tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Menu", "menu"),
		),
	))
	return n.Text
}

func (b *Bot) sendCategories(chatID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range b.catalog.Categories() {
		label := c
		if label == "" {
			label = "Other"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "cat:"+strconv.Itoa(i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
	))
	b.sendWithInline(chatID, "🍽️ Our Menu\n\nChoose a category:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) sendCategory(chatID int64, category string) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, d := range b.catalog.ByCategory(category) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %s", d.Name, services.FormatAmount(b.currency, d.Price)),
				"dish:"+strconv.FormatInt(d.ID, 10),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Categories", "menu"),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
	))
	b.sendWithInline(chatID, "📋 "+category, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func dishCaption(d models.Dish, currency string) string {
	return fmt.Sprintf("%s\n\n%s\n\nPrice: %s", d.Name, d.Description, services.FormatAmount(currency, d.Price))
}

// sendDish sends the dish photo with quantity buttons.
func (b *Bot) sendDish(chatID int64, d models.Dish) {
	id := strconv.FormatInt(d.ID, 10)
	var qtyRow []tgbotapi.InlineKeyboardButton
	for _, n := range quantityChoices {
		qtyRow = append(qtyRow, tgbotapi.NewInlineKeyboardButtonData(
			"+"+strconv.Itoa(n), "add:"+id+":"+strconv.Itoa(n),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		qtyRow,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Categories", "menu")),
	)

	var file tgbotapi.RequestFileData
	ref := b.images.Resolve(d.Image)
	if ref.IsLocal() {
		file = tgbotapi.FilePath(ref.Path)
	} else {
		file = tgbotapi.FileURL(ref.URL)
	}
	photo := tgbotapi.NewPhoto(chatID, file)
	photo.Caption = dishCaption(d, b.currency)
	photo.ReplyMarkup = kb
	if _, err := b.api.Send(photo); err != nil {
		log.WithError(err).WithField("dish", d.ID).Warn("send dish photo, falling back to text")
		b.sendWithInline(chatID, photo.Caption, kb)
	}
}

func (b *Bot) sendCart(chatID int64) {
	b.sendCard(chatID, services.BuildCartCard(b.view(chatID), b.currency))
}

func (b *Bot) sendOrderCard(chatID int64) {
	b.sendCard(chatID, services.BuildOrderCard(b.view(chatID)))
}

func (b *Bot) startCheckout(chatID int64) {
	v := b.view(chatID)
	if v.CartEmpty() {
		b.sendOrderCard(chatID)
		return
	}
	b.setStep(chatID, stepName)
	text := "📝 Delivery details\n\nPlease enter your full name:"
	if v.Customer.Name != "" {
		text += "\n(current: " + v.Customer.Name + ")"
	}
	b.removeKeyboard(chatID, text)
}

// handleFormInput stores the reply for the current dialog step and asks for the next field.
func (b *Bot) handleFormInput(chatID int64, value string) {
	step := b.step(chatID)
	if step == stepNone {
		b.send(chatID, "Use /menu to browse dishes or /cart to see your cart.")
		return
	}
	value = strings.TrimSpace(value)
	b.sessions.Do(sessionKey(chatID), func(s *services.Session) {
		info := s.Customer.Info()
		switch step {
		case stepName:
			info.Name = value
		case stepPhone:
			info.Phone = value
		case stepAddress:
			info.Address = value
		}
		s.EditCustomer(info.Name, info.Phone, info.Address)
	})

	switch step {
	case stepName:
		b.setStep(chatID, stepPhone)
		kb := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact("📞 Share phone number")),
		)
		kb.OneTimeKeyboard = true
		kb.ResizeKeyboard = true
		msg := tgbotapi.NewMessage(chatID, "Please send your phone number:")
		msg.ReplyMarkup = kb
		if _, err := b.api.Send(msg); err != nil {
			log.WithError(err).Warn("send error")
		}
	case stepPhone:
		b.setStep(chatID, stepAddress)
		b.removeKeyboard(chatID, "Please enter your complete delivery address:")
	case stepAddress:
		b.setStep(chatID, stepNone)
		b.sendOrderCard(chatID)
	}
}

func (b *Bot) step(chatID int64) formStep {
	b.formsMu.RLock()
	defer b.formsMu.RUnlock()
	return b.forms[chatID]
}

func (b *Bot) setStep(chatID int64, s formStep) {
	b.formsMu.Lock()
	defer b.formsMu.Unlock()
	if s == stepNone {
		delete(b.forms, chatID)
		return
	}
	b.forms[chatID] = s
}

func (b *Bot) sendCard(chatID int64, c services.OrderCardContent) {
	msg := tgbotapi.NewMessage(chatID, c.Text)
	if kb := cardMarkup(c); kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat", chatID).Warn("send card")
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Warn("send error")
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Warn("send error")
	}
}

func (b *Bot) removeKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Warn("send error")
	}
}
