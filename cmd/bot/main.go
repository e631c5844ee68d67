package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/realtor-intake-bot/config"
	"github.com/yourusername/realtor-intake-bot/internal/delivery/telegram"
	"github.com/yourusername/realtor-intake-bot/internal/infrastructure/listings"
	"github.com/yourusername/realtor-intake-bot/internal/infrastructure/rulesource"
	"github.com/yourusername/realtor-intake-bot/internal/infrastructure/storage"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
	"github.com/yourusername/realtor-intake-bot/internal/usecase"
	"github.com/yourusername/realtor-intake-bot/pkg/logger"
)

func main() {
	initDefaultTimezone()

	logger.Init()
	logger.InfoLogger.Println("🚀 Запуск бота...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Конфігурацію не завантажено: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if cfg.AllowEmptySecrets && isEmptyOrDisabled(cfg.TelegramToken) {
		logger.InfoLogger.Println("TELEGRAM_BOT_TOKEN порожній, бот не запускається.")
		<-sigChan
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Rule source and store
	source, err := selectRuleSource(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Джерело правил не налаштовано: %v", err)
	}
	rules := rulestore.NewStore(source, cfg.RulesCacheTTL)
	if _, err := rules.Load(ctx); err != nil {
		log.Fatalf("❌ Правила не завантажено: %v", err)
	}
	rules.StartRefresh(ctx)
	logger.InfoLogger.Printf("✅ Правила завантажено з %s", source.Name())

	if xlsx, ok := source.(*rulesource.ExcelSource); ok {
		go func() {
			if err := rulesource.WatchFile(ctx, xlsx.Path(), rules); err != nil {
				logger.ErrorLogger.Printf("Спостереження за файлом правил: %v", err)
			}
		}()
	}

	// 2. Sessions and dialog persistence
	sessions := storage.NewSessionStore(cfg.SessionIdleTTL)
	dialogs, err := telegram.NewDialogStore(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("❌ Сховище діалогів недоступне: %v", err)
	}
	defer dialogs.Close()
	logger.InfoLogger.Println("✅ Сховища готові")

	// 3. Listings API client (optional)
	var listingsClient *listings.Client
	if cfg.ListingsAPIURL != "" {
		listingsClient = listings.NewClient(cfg.ListingsAPIURL, cfg.ListingsAPIKey)
		logger.InfoLogger.Println("✅ Клієнт пошуку квартир готовий")
	} else {
		logger.InfoLogger.Println("⚠️ LISTINGS_API_URL не задано, пошук вимкнено")
	}

	// 4. Dialogue engine
	engine := usecase.NewEngine(rules)

	// 5. Telegram bot
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("❌ Telegram бот не створений: %v", err)
	}
	handler := telegram.NewBotHandler(bot, cfg, engine, rules, sessions, listingsClient, dialogs)
	logger.InfoLogger.Printf("✅ Telegram бот готовий: @%s", bot.Self.UserName)

	go func() {
		if err := handler.Start(ctx); err != nil && err != context.Canceled {
			logger.ErrorLogger.Printf("❌ Помилка бота: %v", err)
		}
	}()

	logger.InfoLogger.Println("🤖 Бот працює. Ctrl+C для зупинки.")

	<-sigChan
	logger.InfoLogger.Println("⏳ Отримано сигнал зупинки...")

	cancel()
	logger.InfoLogger.Println("✅ Бот зупинено.")
}

// selectRuleSource picks the configured backend: Google Sheets first,
// then a local XLSX workbook, then YAML.
func selectRuleSource(ctx context.Context, cfg *config.Config) (rulestore.Source, error) {
	switch {
	case cfg.SpreadsheetID != "":
		return rulesource.NewSheetsSource(ctx, cfg.SpreadsheetID, []byte(cfg.SheetsCredentialsJSON))
	case cfg.RulesXLSXPath != "":
		return rulesource.NewExcelSource(cfg.RulesXLSXPath), nil
	default:
		return rulesource.NewYAMLSource(cfg.RulesYAMLPath), nil
	}
}

func initDefaultTimezone() {
	const tzName = "Europe/Kyiv"
	if loc, err := time.LoadLocation(tzName); err == nil {
		time.Local = loc
		return
	}
	time.Local = time.FixedZone(tzName, 2*60*60)
}

func isEmptyOrDisabled(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.EqualFold(value, "disabled")
}
