// Package bot exposes the pipeline over a long-polling Telegram bot: parse
// on demand, browse stored people and projects, export CSV.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"VCScanner/internal/domain"
	"VCScanner/internal/infrastructure/export"
	"VCScanner/internal/ports"
	"VCScanner/internal/usecase"
)

const listLimit = 10

// Bot handles chat commands against the pipeline and the store.
type Bot struct {
	api      *tgbotapi.BotAPI
	pipeline *usecase.Pipeline
	store    ports.RecordStore
	logger   *zap.Logger
}

// New creates the bot or returns nil when no token is configured.
func New(token string, pipeline *usecase.Pipeline, store ports.RecordStore, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		logger.Info("bot token is empty, command surface disabled")
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info("bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{api: api, pipeline: pipeline, store: store, logger: logger}, nil
}

// Start begins long polling until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.reply(chatID, startText)
	case "help":
		b.reply(chatID, helpText)
	case "parse":
		b.handleParse(ctx, chatID)
	case "parse_channel":
		b.handleParseChannel(ctx, chatID, msg.CommandArguments())
	case "stats":
		b.handleStats(ctx, chatID)
	case "people":
		b.handlePeople(ctx, chatID, msg.CommandArguments())
	case "projects":
		b.handleProjects(ctx, chatID, msg.CommandArguments())
	case "export":
		b.handleExport(ctx, chatID)
	default:
		b.reply(chatID, "Неизвестная команда, используйте /help.")
	}
}

func (b *Bot) handleParse(ctx context.Context, chatID int64) {
	b.reply(chatID, "Запускаю парсинг каналов, это может занять несколько минут...")

	report, err := b.pipeline.ScanAll(ctx)
	if err != nil {
		if err == usecase.ErrNoSources {
			b.reply(chatID, "Каналы не настроены: добавьте channels в конфигурацию или VC_CHANNELS.")
			return
		}
		b.logger.Error("on-demand scan failed", zap.Error(err))
		b.reply(chatID, "Парсинг не удался: "+err.Error())
		return
	}

	b.reply(chatID, fmt.Sprintf(
		"Парсинг завершен.\nКаналов: %d (ошибок: %d)\nСообщений: %d\nЛюдей: %d\nПроектов: %d",
		report.Sources, report.Failed, report.Scanned, report.People, report.Projects))
}

func (b *Bot) handleParseChannel(ctx context.Context, chatID int64, args string) {
	channel := strings.TrimSpace(args)
	if channel == "" {
		b.reply(chatID, "Укажите канал: /parse_channel @rusven")
		return
	}
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}

	records, err := b.pipeline.ProcessSource(ctx, channel, 0)
	if err != nil {
		b.logger.Error("channel parse failed", zap.String("channel", channel), zap.Error(err))
		b.reply(chatID, fmt.Sprintf("Ошибка парсинга %s: %v", channel, err))
		return
	}

	people, projects := 0, 0
	for _, rec := range records {
		if rec.Kind == domain.KindProject {
			projects++
		} else {
			people++
		}
	}
	b.reply(chatID, fmt.Sprintf(
		"Канал %s: найдено %d записей (людей: %d, проектов: %d).",
		channel, len(records), people, projects))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	stats, err := b.store.Statistics(ctx)
	if err != nil {
		b.logger.Error("statistics failed", zap.Error(err))
		b.reply(chatID, "Не удалось получить статистику.")
		return
	}

	b.reply(chatID, fmt.Sprintf(
		"Статистика базы:\n"+
			"Людей всего: %d\n"+
			"  менторов: %d\n  инвесторов: %d\n  бизнес-ангелов: %d\n"+
			"  основателей: %d\n  операторов: %d\n"+
			"Проектов всего: %d\nПерспективных: %d",
		stats.TotalPeople, stats.Mentors, stats.Investors, stats.Angels,
		stats.Founders, stats.Operators, stats.TotalProjects, stats.PromisingProjects))
}

func (b *Bot) handlePeople(ctx context.Context, chatID int64, args string) {
	role := domain.Role(strings.TrimSpace(strings.ToLower(args)))
	records, err := b.store.People(ctx, role, listLimit)
	if err != nil {
		b.logger.Error("people query failed", zap.Error(err))
		b.reply(chatID, "Не удалось получить список людей.")
		return
	}
	if len(records) == 0 {
		b.reply(chatID, "Записей пока нет. Запустите /parse.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Последние люди:\n")
	for _, rec := range records {
		p := rec.Person
		name := "(без имени)"
		if p.Name != nil {
			name = *p.Name
		}
		label := domain.RoleLabels[p.Classification]
		fmt.Fprintf(&sb, "- %s — %s (%.0f%%), %s\n", name, label, p.Confidence*100, rec.Message.Source)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleProjects(ctx context.Context, chatID int64, args string) {
	stage := domain.Stage(strings.TrimSpace(strings.ToLower(args)))
	records, err := b.store.Projects(ctx, stage, listLimit)
	if err != nil {
		b.logger.Error("projects query failed", zap.Error(err))
		b.reply(chatID, "Не удалось получить список проектов.")
		return
	}
	if len(records) == 0 {
		b.reply(chatID, "Проектов пока нет. Запустите /parse.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Последние проекты:\n")
	for _, rec := range records {
		p := rec.Project
		name := "(без названия)"
		if p.Name != nil {
			name = *p.Name
		}
		stageText := "стадия неизвестна"
		if p.Stage != nil {
			stageText = string(*p.Stage)
		}
		marker := ""
		if p.Promising {
			marker = " ★"
		}
		fmt.Fprintf(&sb, "- %s (%s, score %.2f)%s\n", name, stageText, p.RelevanceScore, marker)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	people, err := b.store.People(ctx, "", 1000)
	if err != nil {
		b.logger.Error("export people failed", zap.Error(err))
		b.reply(chatID, "Экспорт не удался.")
		return
	}
	projects, err := b.store.Projects(ctx, "", 1000)
	if err != nil {
		b.logger.Error("export projects failed", zap.Error(err))
		b.reply(chatID, "Экспорт не удался.")
		return
	}
	if len(people) == 0 && len(projects) == 0 {
		b.reply(chatID, "Нет данных для экспорта.")
		return
	}

	if len(people) > 0 {
		data, err := export.PeopleCSV(people)
		if err != nil {
			b.logger.Error("people csv failed", zap.Error(err))
			b.reply(chatID, "Экспорт людей не удался.")
			return
		}
		b.sendDocument(chatID, "vc_people.csv", data)
	}
	if len(projects) > 0 {
		data, err := export.ProjectsCSV(projects)
		if err != nil {
			b.logger.Error("projects csv failed", zap.Error(err))
			b.reply(chatID, "Экспорт проектов не удался.")
			return
		}
		b.sendDocument(chatID, "vc_projects.csv", data)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message failed", zap.Error(err))
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("send document failed", zap.Error(err))
	}
}

const startText = "Привет! Я сканирую венчурные Telegram-каналы и собираю проекты и людей.\n\n" +
	"Команды:\n" +
	"/parse — пропарсить все каналы из конфигурации\n" +
	"/parse_channel @канал — пропарсить один канал\n" +
	"/stats — статистика по базе\n" +
	"/people [роль] — последние люди\n" +
	"/projects [стадия] — последние проекты\n" +
	"/export — выгрузка CSV\n" +
	"/help — инструкция"

const helpText = "Как пользоваться:\n" +
	"1) Укажите каналы в конфигурации (channels) или в переменной VC_CHANNELS.\n" +
	"2) /parse соберет данные, определит роль человека или приоритет проекта и сохранит в базу.\n" +
	"3) /people и /projects показывают последние записи, аргументом можно фильтровать:\n" +
	"   /people investor, /projects seed\n" +
	"4) /export выгружает людей и проекты в CSV."
