package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"ad-creator/internal/compose"
	"ad-creator/internal/imagegen"
	"ad-creator/internal/mediagroup"
	"ad-creator/internal/pipeline"
	"ad-creator/internal/session"
	"ad-creator/internal/templates"
)

// Messenger is the part of the Telegram client the handlers use.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendPhoto(chatID int64, image string, caption string) error
	SendTyping(chatID int64)
	AnswerCallback(callbackID, text string, alert bool) error
	DownloadFile(ctx context.Context, fileID string) (string, error)
}

type AdService interface {
	CreateAd(ctx context.Context, req pipeline.AdRequest) pipeline.AdResult
	Generate(ctx context.Context, req imagegen.GenerateRequest) imagegen.GenerateResult
}

type Options struct {
	Telegram Messenger
	Service  AdService
	Sessions *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg         Messenger
	svc        AdService
	sessions   *session.Store
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}

	return &Handler{
		tg:       opts.Telegram,
		svc:      opts.Service,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

const helpText = "Ad Creator\n\n" +
	"Send a product photo with the product page link as the caption and I will turn it into an ad. " +
	"You can also send the photo and the link as two separate messages.\n\n" +
	"Commands:\n" +
	"/templates - pick an ad template\n" +
	"/template <id> - set the template by id\n" +
	"/size [square|landscape|portrait] - set the image size\n" +
	"/status - show the current template and size\n" +
	"/image <description> - generate a freeform product image\n" +
	"/history [id] - list your ads, or resend one\n" +
	"/delete <id> - remove an ad from history\n" +
	"/clear - remove all ads from history\n" +
	"/cancel - forget a half-sent photo or link"

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, userID, username, msg)
	}

	if msg.Text != "" {
		return h.handleText(ctx, chatID, userID, username, msg.Text)
	}

	return nil
}

// HandleAlbum turns every photo of an album into its own ad for the link
// in the album caption.
func (h *Handler) HandleAlbum(ctx context.Context, album mediagroup.Album) {
	if len(album.FileIDs) == 0 {
		return
	}
	if album.Dropped > 0 {
		_ = h.tg.SendText(album.ChatID, fmt.Sprintf("Only the first %d photos of the album will be used.", len(album.FileIDs)))
	}

	url := extractURL(album.Caption)
	if url == "" {
		url = h.takePendingURL(album.UserID, album.Username)
	}
	if url == "" {
		h.sessions.Update(album.UserID, album.Username, func(st *session.State) { st.PendingPhoto = album.FileIDs[0] })
		_ = h.tg.SendText(album.ChatID, "Albums need the product page link in the caption. I kept the first photo; send the link to continue.")
		return
	}

	if err := h.createAds(ctx, album.ChatID, album.UserID, album.Username, url, album.FileIDs); err != nil {
		h.logger.Error("album processing failed", "chat_id", album.ChatID, "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, username string, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "templates":
		return h.sendTemplatePicker(chatID, userID, username)
	case "template":
		if args == "" {
			return h.sendTemplatePicker(chatID, userID, username)
		}
		tpl, ok := templates.Lookup(strings.ToLower(args))
		if !ok {
			return h.tg.SendText(chatID, "Unknown template. Available ids:\n"+templateIDs())
		}
		h.sessions.Update(userID, username, func(st *session.State) { st.TemplateID = tpl.ID })
		return h.tg.SendText(chatID, fmt.Sprintf("Template set to %s.", tpl.Title))
	case "size":
		if args == "" {
			return h.sendSizePicker(chatID, userID, username)
		}
		size, err := imagegen.ParseSize(args)
		if err != nil {
			return h.tg.SendText(chatID, "Size must be square, landscape or portrait.")
		}
		h.sessions.Update(userID, username, func(st *session.State) { st.Size = size })
		return h.tg.SendText(chatID, fmt.Sprintf("Size set to %s.", describeSize(size)))
	case "status":
		st := h.sessions.State(userID, username)
		tpl := templates.Resolve(st.TemplateID)
		text := fmt.Sprintf("Template: %s (%s)\nSize: %s", tpl.Title, tpl.ID, describeSize(st.Size))
		switch {
		case st.PendingPhoto != "":
			text += "\nWaiting for a product page link."
		case st.PendingURL != "":
			text += "\nWaiting for a product photo for " + st.PendingURL
		}
		return h.tg.SendText(chatID, text)
	case "cancel":
		h.sessions.Update(userID, username, func(st *session.State) {
			st.PendingPhoto = ""
			st.PendingURL = ""
		})
		return h.tg.SendText(chatID, "Cancelled.")
	case "image":
		if args == "" {
			return h.tg.SendText(chatID, "Describe the image, for example: /image a glass bottle of cold brew on a marble counter")
		}
		return h.generate(ctx, chatID, userID, username, args)
	case "history":
		if args != "" {
			item, ok := h.sessions.Find(userID, args)
			if !ok {
				return h.tg.SendText(chatID, "No ad with that id.")
			}
			tpl := templates.Resolve(item.TemplateID)
			return h.tg.SendPhoto(chatID, item.ImageURL, adCaption(item.ProductName, item.BrandName, tpl.Title, false))
		}
		return h.tg.SendText(chatID, h.historyText(userID))
	case "delete":
		if args == "" {
			return h.tg.SendText(chatID, "Usage: /delete <id>. Ids are listed by /history.")
		}
		if !h.sessions.Delete(userID, args) {
			return h.tg.SendText(chatID, "No ad with that id.")
		}
		return h.tg.SendText(chatID, "Deleted.")
	case "clear":
		n := h.sessions.Clear(userID)
		return h.tg.SendText(chatID, fmt.Sprintf("Removed %d ads from history.", n))
	default:
		return h.tg.SendText(chatID, "Unknown command. See /help.")
	}
}

func (h *Handler) handlePhoto(ctx context.Context, chatID, userID int64, username string, msg *tgbotapi.Message) error {
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			Username:     username,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       fileID,
		})
		return nil
	}

	url := extractURL(msg.Caption)
	if url == "" {
		url = h.takePendingURL(userID, username)
	}
	if url == "" {
		h.sessions.Update(userID, username, func(st *session.State) { st.PendingPhoto = fileID })
		return h.tg.SendText(chatID, "Got the photo. Now send the product page link.")
	}

	h.sessions.Update(userID, username, func(st *session.State) { st.PendingPhoto = "" })
	return h.createAds(ctx, chatID, userID, username, url, []string{fileID})
}

func (h *Handler) handleText(ctx context.Context, chatID, userID int64, username, text string) error {
	url := extractURL(text)
	if url == "" {
		return h.tg.SendText(chatID, "Send a product photo with its product page link, or see /help.")
	}

	var photo string
	h.sessions.Update(userID, username, func(st *session.State) {
		photo = st.PendingPhoto
		st.PendingPhoto = ""
		if photo == "" {
			st.PendingURL = url
		}
	})
	if photo == "" {
		return h.tg.SendText(chatID, "Got the link. Now send a product photo.")
	}

	return h.createAds(ctx, chatID, userID, username, url, []string{photo})
}

func (h *Handler) takePendingURL(userID int64, username string) string {
	var url string
	h.sessions.Update(userID, username, func(st *session.State) {
		url = st.PendingURL
		st.PendingURL = ""
	})
	return url
}

func (h *Handler) createAds(ctx context.Context, chatID, userID int64, username, url string, fileIDs []string) error {
	st := h.sessions.State(userID, username)
	tpl := templates.Resolve(st.TemplateID)

	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, fmt.Sprintf("Creating %s with %s at %s. This can take a minute.", plural(len(fileIDs), "ad"), tpl.Title, describeSize(st.Size)))

	photos := make([]string, len(fileIDs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, fileID := range fileIDs {
		i, fileID := i, fileID
		eg.Go(func() error {
			dataURL, err := h.tg.DownloadFile(egCtx, fileID)
			if err != nil {
				return err
			}
			photos[i] = dataURL
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		h.logger.Error("photo download failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, "Could not download your photo. Please send it again.")
	}

	var sendErr error
	for _, photo := range photos {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		res := h.svc.CreateAd(ctx, pipeline.AdRequest{
			URL:         url,
			ImageBase64: photo,
			TemplateID:  tpl.ID,
			Size:        st.Size,
		})
		if !res.Success {
			h.logger.Warn("ad failed", "chat_id", chatID, "template", tpl.ID, "err", res.Error, "dur_ms", time.Since(start).Milliseconds())
			sendErr = errors.Join(sendErr, h.tg.SendText(chatID, "Could not create the ad: "+res.Error))
			continue
		}

		h.logger.Info("ad sent",
			"chat_id", chatID,
			"template", tpl.ID,
			"source", res.Source,
			"dur_ms", time.Since(start).Milliseconds(),
		)

		caption := adCaption(res.ProductInfo.ProductName, res.ProductInfo.BrandName, tpl.Title, res.ExtractionError != "")
		if err := h.tg.SendPhoto(chatID, res.Image, caption); err != nil {
			sendErr = errors.Join(sendErr, err)
			continue
		}

		h.sessions.AddHistory(userID, username, session.HistoryItem{
			ImageURL:    imageDataURL(res.Image),
			ProductName: res.ProductInfo.ProductName,
			BrandName:   res.ProductInfo.BrandName,
			TemplateID:  tpl.ID,
		})
	}
	return sendErr
}

func (h *Handler) generate(ctx context.Context, chatID, userID int64, username, prompt string) error {
	st := h.sessions.State(userID, username)

	h.tg.SendTyping(chatID)
	res := h.svc.Generate(ctx, imagegen.GenerateRequest{Prompt: prompt, Size: st.Size, N: 1})
	if !res.Success || len(res.Images) == 0 {
		h.logger.Warn("image generation failed", "chat_id", chatID, "err", res.Error)
		return h.tg.SendText(chatID, "Could not generate the image. Please try again.")
	}

	for i, img := range res.Images {
		caption := ""
		if i == 0 {
			caption = prompt
		}
		if err := h.tg.SendPhoto(chatID, img, caption); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) historyText(userID int64) string {
	items := h.sessions.History(userID)
	if len(items) == 0 {
		return "No ads yet. Send a product photo with its link to create one."
	}

	var b strings.Builder
	b.WriteString("Your ads, newest first:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n%s  %s %s  %s", shortID(item.ID), item.Date, item.Time, item.ProductName)
		if item.BrandName != "" {
			fmt.Fprintf(&b, " (%s)", item.BrandName)
		}
	}
	b.WriteString("\n\n/history <id> resends an ad, /delete <id> removes it.")
	return b.String()
}

func templateIDs() string {
	var b strings.Builder
	for _, tpl := range templates.All() {
		fmt.Fprintf(&b, "%s - %s\n", tpl.ID, tpl.Title)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func imageDataURL(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	_, mimeType, err := compose.DecodeImage(image)
	if err != nil || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + image
}

func plural(n int, word string) string {
	if n == 1 {
		return "an " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
