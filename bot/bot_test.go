package bot

import (
	"strings"
	"testing"
	"time"

	"catering-menu/config"
	"catering-menu/models"
	"catering-menu/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID = int64(42)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent is %T", f.sent[len(f.sent)-1])
	return msg
}

func (f *fakeSender) lastToast(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.requests)
	cb, ok := f.requests[len(f.requests)-1].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	return cb.Text
}

func inlineButtons(t *testing.T, msg tgbotapi.MessageConfig) []tgbotapi.InlineKeyboardButton {
	t.Helper()
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "reply markup is %T", msg.ReplyMarkup)
	var out []tgbotapi.InlineKeyboardButton
	for _, row := range kb.InlineKeyboard {
		out = append(out, row...)
	}
	return out
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	return newTestBotWithStore(t, services.NewSessionStore(0, 20))
}

func newTestBotWithStore(t *testing.T, sessions *services.SessionStore) (*Bot, *fakeSender) {
	t.Helper()
	catalog, err := services.NewCatalog([]models.Dish{
		{ID: 1, Name: "Chicken Biryani", Description: "Aromatic basmati rice.", Price: decimal.NewFromInt(180), Category: "Main Course", Image: "missing.jpg"},
		{ID: 2, Name: "Gulab Jamun", Description: "Sweet dumplings.", Price: decimal.NewFromInt(70), Category: "Dessert"},
	})
	require.NoError(t, err)
	cfg := &config.Config{
		Catalog: config.CatalogConfig{ImagesDir: t.TempDir(), Placeholder: "https://example.com/placeholder.png"},
		Order:   config.OrderConfig{ServiceURL: "https://wa.me", Recipient: "919946294194", Currency: "₹", MaxQtyPerAdd: 20},
	}
	fake := &fakeSender{}
	return newBot(fake, cfg, catalog, sessions), fake
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func message(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}}
}

func contact(phone string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: chatID},
		Contact: &tgbotapi.Contact{PhoneNumber: phone},
	}}
}

func TestCardMarkup(t *testing.T) {
	assert.Nil(t, cardMarkup(services.OrderCardContent{Text: "x"}))

	kb := cardMarkup(services.OrderCardContent{Buttons: [][]services.OrderCardButton{
		{{Text: "Send", URL: "https://wa.me/1?text=hi"}},
		{{Text: "Cart", CallbackData: "cart"}, {Text: "Menu", CallbackData: "menu"}},
	}})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://wa.me/1?text=hi", *kb.InlineKeyboard[0][0].URL)
	require.Len(t, kb.InlineKeyboard[1], 2)
	require.NotNil(t, kb.InlineKeyboard[1][1].CallbackData)
	assert.Equal(t, "menu", *kb.InlineKeyboard[1][1].CallbackData)
}

func TestStartListsCategories(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(message("/start"))

	msg := fake.lastMessage(t)
	var data []string
	for _, btn := range inlineButtons(t, msg) {
		data = append(data, *btn.CallbackData)
	}
	assert.Equal(t, []string{"cat:0", "cat:1", "cart"}, data)
}

func TestCategoryListsDishes(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(callback("cat:1"))

	btns := inlineButtons(t, fake.lastMessage(t))
	assert.Equal(t, "Gulab Jamun — ₹70", btns[0].Text)
	assert.Equal(t, "dish:2", *btns[0].CallbackData)
}

func TestDishCardUsesPlaceholderPhoto(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(callback("dish:1"))

	require.Len(t, fake.sent, 1)
	photo, ok := fake.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FileURL("https://example.com/placeholder.png"), photo.File)
	assert.Contains(t, photo.Caption, "Price: ₹180")
}

func TestAddToCart(t *testing.T) {
	b, fake := newTestBot(t)

	b.handleUpdate(callback("add:1:2"))
	assert.Equal(t, "Added 2 x Chicken Biryani!", fake.lastToast(t))

	b.handleUpdate(callback("add:1:21"))
	assert.Equal(t, "You can add at most 20 at a time", fake.lastToast(t))

	b.handleUpdate(callback("add:99:1"))
	assert.Empty(t, fake.lastToast(t))

	v := b.view(chatID)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 2, v.Lines[0].Quantity)
}

func TestCartRemoveAndClear(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(callback("add:1:1"))
	b.handleUpdate(callback("add:2:3"))

	b.handleUpdate(callback("cart"))
	assert.Contains(t, fake.lastMessage(t).Text, "Total Items: 4 | Total Amount: ₹390")

	b.handleUpdate(callback("rm:0:1"))
	assert.Equal(t, "Removed Chicken Biryani from cart", fake.lastToast(t))
	assert.Contains(t, fake.lastMessage(t).Text, "1. Gulab Jamun")

	b.handleUpdate(callback("rm:7:1"))
	assert.Empty(t, fake.lastToast(t))

	b.handleUpdate(callback("clear"))
	assert.True(t, b.view(chatID).CartEmpty())
	assert.True(t, strings.HasPrefix(fake.lastMessage(t).Text, "🛒 Your cart is empty"))
}

func TestStaleRemoveButtonIsIgnored(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(callback("add:1:1"))
	b.handleUpdate(callback("add:2:1"))

	// "Remove Chicken Biryani" tapped on two cart cards
	b.handleUpdate(callback("rm:0:1"))
	b.handleUpdate(callback("rm:0:1"))
	assert.Empty(t, fake.lastToast(t))

	lines := b.view(chatID).Lines
	require.Len(t, lines, 1)
	assert.Equal(t, "Gulab Jamun", lines[0].DishName)

	b.handleUpdate(callback("rm:0"))
	assert.Len(t, b.view(chatID).Lines, 1)
}

func TestEvictedSessionDropsDialog(t *testing.T) {
	sessions := services.NewSessionStore(time.Millisecond, 20)
	b, _ := newTestBotWithStore(t, sessions)
	b.handleUpdate(callback("add:1:1"))
	b.handleUpdate(callback("checkout"))
	require.Equal(t, stepName, b.step(chatID))

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 1, sessions.Sweep())
	assert.Equal(t, stepNone, b.step(chatID))

	// free text after eviction is not taken as a name
	b.handleUpdate(message("Asha"))
	assert.Empty(t, b.view(chatID).Customer.Name)
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(callback("checkout"))

	assert.Equal(t, "🛒 Add items to your cart first to place an order", fake.lastMessage(t).Text)
	assert.Equal(t, stepNone, b.step(chatID))
}

func TestCheckoutDialog(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(callback("add:1:2"))

	b.handleUpdate(callback("checkout"))
	assert.Equal(t, stepName, b.step(chatID))

	b.handleUpdate(message("Asha"))
	assert.Equal(t, stepPhone, b.step(chatID))
	_, isReply := fake.lastMessage(t).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, isReply)

	b.handleUpdate(contact("9876543210"))
	assert.Equal(t, stepAddress, b.step(chatID))

	b.handleUpdate(message("12 MG Road, Kochi"))
	assert.Equal(t, stepNone, b.step(chatID))

	card := fake.lastMessage(t)
	assert.Contains(t, card.Text, "Name: Asha")
	btns := inlineButtons(t, card)
	assert.Equal(t, "info_ok", *btns[0].CallbackData)

	b.handleUpdate(callback("info_ok"))
	assert.Equal(t, "Information confirmed", fake.lastToast(t))

	card = fake.lastMessage(t)
	assert.True(t, strings.HasPrefix(card.Text, "📋 Preview Your Order"))
	btns = inlineButtons(t, card)
	require.NotNil(t, btns[0].URL)
	assert.True(t, strings.HasPrefix(*btns[0].URL, "https://wa.me/919946294194?text="))

	// editing the cart withdraws the link until details are confirmed again
	b.handleUpdate(callback("add:2:1"))
	b.handleUpdate(callback("order"))
	btns = inlineButtons(t, fake.lastMessage(t))
	assert.Nil(t, btns[0].URL)
	assert.Equal(t, "info_ok", *btns[0].CallbackData)
}

func TestFreeTextOutsideDialog(t *testing.T) {
	b, fake := newTestBot(t)
	b.handleUpdate(message("hello"))

	assert.Contains(t, fake.lastMessage(t).Text, "/menu")
	assert.True(t, b.view(chatID).Customer == models.CustomerInfo{})
}

func TestChatsAreIsolated(t *testing.T) {
	b, _ := newTestBot(t)
	b.handleUpdate(callback("add:1:1"))

	other := callback("add:2:5")
	other.CallbackQuery.Message.Chat.ID = chatID + 1
	b.handleUpdate(other)

	assert.Equal(t, 1, b.view(chatID).Aggregate.TotalItems)
	assert.Equal(t, 5, b.view(chatID+1).Aggregate.TotalItems)
}
