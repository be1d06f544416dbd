package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/session"
	"ad-creator/internal/templates"
)

const callbackPrefix = "ad"

// cb encodes a keyboard action. Telegram caps callback data at 64 bytes.
func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", callbackPrefix, ownerID, strings.Join(parts, ":"))
}

func templateKeyboard(ownerID int64, selected string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, tpl := range templates.All() {
		label := tpl.Title
		if tpl.ID == selected {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "tpl", tpl.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func sizeKeyboard(ownerID int64, selected imagegen.Size) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range []imagegen.Size{imagegen.SizeSquare, imagegen.SizeLandscape, imagegen.SizePortrait} {
		label := describeSize(s)
		if s == selected {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "size", string(s))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (h *Handler) sendTemplatePicker(chatID, userID int64, username string) error {
	st := h.sessions.State(userID, username)
	return h.tg.SendTextWithKeyboard(chatID, "Pick a template for your next ad:", templateKeyboard(userID, st.TemplateID))
}

func (h *Handler) sendSizePicker(chatID, userID int64, username string) error {
	st := h.sessions.State(userID, username)
	return h.tg.SendTextWithKeyboard(chatID, "Pick an image size:", sizeKeyboard(userID, st.Size))
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}

	parts := strings.Split(strings.TrimSpace(q.Data), ":")
	if len(parts) != 4 || parts[0] != callbackPrefix {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		return h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
	}

	chatID := q.Message.Chat.ID
	switch action, value := parts[2], parts[3]; action {
	case "tpl":
		tpl, ok := templates.Lookup(value)
		if !ok {
			return h.tg.AnswerCallback(q.ID, "That template no longer exists.", true)
		}
		h.sessions.Update(ownerID, q.From.UserName, func(st *session.State) { st.TemplateID = tpl.ID })
		_ = h.tg.AnswerCallback(q.ID, tpl.Title, false)
		return h.tg.SendText(chatID, fmt.Sprintf("Template set to %s.", tpl.Title))
	case "size":
		size, err := imagegen.ParseSize(value)
		if err != nil {
			return h.tg.AnswerCallback(q.ID, "Unknown size.", true)
		}
		h.sessions.Update(ownerID, q.From.UserName, func(st *session.State) { st.Size = size })
		_ = h.tg.AnswerCallback(q.ID, describeSize(size), false)
		return h.tg.SendText(chatID, fmt.Sprintf("Size set to %s.", describeSize(size)))
	default:
		return h.tg.AnswerCallback(q.ID, "Unknown option.", false)
	}
}
