package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	app "opd-scanner/internal/application"
	"opd-scanner/internal/container"
	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

const (
	msgStart = `👋 Hi! I am the OPD AI scanner.

I look at a photo of an injury, estimate redness, bruising and swelling and suggest simple first-aid steps. I do not diagnose.

📋 Commands:
/pain N — set your pain level (0–10)
/check — send a photo for analysis
/scan — scan the live camera
/help — help
/cancel — cancel the current operation`

	msgHelp = `ℹ️ How to use:

1️⃣ Set your pain level: /pain 6
2️⃣ Send /check, then a photo of the area (or /scan to use the camera)
3️⃣ You get a short report and first-aid suggestions

💡 Tips:
• Use good, even lighting
• Keep the injured area in the centre of the frame
• Seek medical help if pain is severe or getting worse`

	msgAwaitingPhoto   = "📸 Send a photo of the injured area."
	msgCancelled       = "❌ Cancelled. Send /check to start a new scan."
	msgSendPhoto       = "📸 Please send a photo of the injured area, or /help."
	msgCheckFirst      = "📸 Send /check first, then the photo."
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgProcessing      = "⏳ Scanning..."
	msgProcessingError = "⚠️ Could not process the image. Please try another photo."
	msgPainUsage       = "Usage: /pain N, where N is from 0 to 10."
	msgPainSet         = "Pain level set to %d/10."
	msgNotReady        = "⚠️ Scanner is not running yet. Try again in a moment."
	msgSuperseded      = "⏹ Superseded by a newer scan."
)

// outboxSize очередь исходящих сообщений
const outboxSize = 64

// ScanRequester принимает запросы на сканирование (app.Session)
type ScanRequester interface {
	RequestScan(ctx context.Context, req app.ScanRequest) error
}

// outgoing исходящее сообщение: отчёт или уведомление
type outgoing struct {
	scan   *entity.Scan
	target int64
	text   string
}

// pendingReport сообщение "анализируем", которое будет отредактировано
type pendingReport struct {
	scanID    uuid.UUID
	messageID int
}

// Bot представляет Telegram-бота и одновременно слой отображения сессии
type Bot struct {
	api     *tgbotapi.BotAPI
	users   *app.UserService
	scans   *app.ScanService
	session ScanRequester
	logger  *slog.Logger

	outbox  chan outgoing
	// pending используется только горутиной отправки
	pending map[int64]pendingReport
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("telegram authorized", "account", api.Self.UserName)

	return &Bot{
		api:     api,
		users:   c.UserService,
		scans:   c.ScanService,
		logger:  logger,
		outbox:  make(chan outgoing, outboxSize),
		pending: make(map[int64]pendingReport),
	}, nil
}

// Bind подключает сессию, которой бот передаёт запросы
func (b *Bot) Bind(session ScanRequester) {
	b.session = session
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	go b.deliver(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// ShowFrame живой поток в Telegram не транслируется
func (b *Bot) ShowFrame(frame entity.Frame) {}

// ShowReport ставит отчёт в очередь отправки
func (b *Bot) ShowReport(scan entity.Scan) {
	if scan.Target == entity.LocalTarget {
		return
	}
	b.enqueue(outgoing{scan: &scan, target: scan.Target})
}

// Notify ставит уведомление в очередь отправки
func (b *Bot) Notify(target int64, msg string) {
	if target == entity.LocalTarget {
		return
	}
	b.enqueue(outgoing{target: target, text: "⚠️ " + msg})
}

// enqueue не блокирует цикл сессии; при переполнении сообщение теряется
func (b *Bot) enqueue(msg outgoing) {
	select {
	case b.outbox <- msg:
	default:
		b.logger.Warn("telegram outbox full, dropping message", "target", msg.target)
	}
}

// deliver отправляет исходящие сообщения по одному
func (b *Bot) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.outbox:
			if msg.scan != nil {
				b.deliverReport(*msg.scan)
				continue
			}
			b.sendMessage(msg.target, msg.text)
		}
	}
}

// deliverReport отправляет превью и отчёт; итоговый отчёт редактирует
// промежуточное сообщение того же сканирования.
func (b *Bot) deliverReport(scan entity.Scan) {
	chatID := scan.Target
	prev, hasPrev := b.pending[chatID]

	if scan.State == entity.ScanDone && hasPrev && prev.scanID == scan.ID {
		delete(b.pending, chatID)
		b.editMessage(chatID, prev.messageID, scan.Report())
		return
	}

	if hasPrev && prev.scanID != scan.ID {
		delete(b.pending, chatID)
		b.editMessage(chatID, prev.messageID, msgSuperseded)
	}

	b.sendPreview(chatID, scan.Analysis.Preview)
	id := b.sendMessage(chatID, scan.Report())
	if scan.State == entity.ScanAnalyzing && id != 0 {
		b.pending[chatID] = pendingReport{scanID: scan.ID, messageID: id}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("get user", "user_id", msg.From.ID, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.users.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "pain":
		b.handlePain(ctx, msg, user)

	case "check":
		b.users.BeginCheck(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "scan":
		b.requestScan(ctx, app.ScanRequest{Target: chatID, Pain: user.Pain})

	case "cancel":
		b.users.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePain разбирает /pain N
func (b *Bot) handlePain(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	value, err := parsePain(msg.CommandArguments())
	if err != nil {
		b.sendMessage(msg.Chat.ID, msgPainUsage)
		return
	}

	if _, err := b.users.SetPain(ctx, user.ID, msg.Chat.ID, value); err != nil {
		if !errors.Is(err, entity.ErrInvalidPain) {
			b.logger.Error("set pain", "user_id", user.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgPainUsage)
		return
	}

	b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgPainSet, value))
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	if user.State != entity.StateAwaitingPhoto {
		b.sendMessage(chatID, msgCheckFirst)
		return
	}
	b.sendMessage(chatID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Error("download photo", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	frame, err := b.scans.Decode(imageData)
	if err != nil {
		b.logger.Warn("decode photo", "chat_id", chatID, "bytes", len(imageData), "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.requestScan(ctx, app.ScanRequest{Target: chatID, Pain: user.Pain, Frame: &frame})
	b.users.Cancel(ctx, user.ID, chatID)
}

// requestScan передаёт запрос сессии; результат придёт через ShowReport
func (b *Bot) requestScan(ctx context.Context, req app.ScanRequest) {
	if b.session == nil {
		b.sendMessage(req.Target, msgNotReady)
		return
	}

	if err := b.session.RequestScan(ctx, req); err != nil {
		b.logger.Error("request scan", "chat_id", req.Target, "error", err)
		b.sendMessage(req.Target, msgNotReady)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение и возвращает его ID
func (b *Bot) sendMessage(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
		return 0
	}
	return sent.MessageID
}

// editMessage заменяет текст ранее отправленного сообщения
func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("edit message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

// sendPreview отправляет превью с маской красноты
func (b *Bot) sendPreview(chatID int64, preview entity.Frame) {
	if preview.Empty() {
		return
	}
	data, err := preview.PNG()
	if err != nil {
		b.logger.Warn("encode preview", "chat_id", chatID, "error", err)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "preview.png", Bytes: data})
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("send preview", "chat_id", chatID, "error", err)
	}
}

// parsePain разбирает аргумент команды /pain
func parsePain(args string) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, errors.New("pain level is required")
	}
	fields := strings.Fields(args)
	v, err := strconv.Atoi(strings.TrimSuffix(fields[0], "/10"))
	if err != nil {
		return 0, fmt.Errorf("parse pain level: %w", err)
	}
	return v, nil
}

var _ port.View = (*Bot)(nil)
