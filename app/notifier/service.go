package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"github.com/lysyi3m/update-comb/app/cfg"
	"github.com/lysyi3m/update-comb/app/config"
	"github.com/lysyi3m/update-comb/app/database"
)

// Service delivers new ledger records to Telegram subscribers. It is the
// sole writer of subscriber cursors and a pure reader of the ledger; the
// monitoring cycle signals work through the changed-locale markers.
type Service struct {
	bot        *tele.Bot
	engine     *Engine
	endpoints  *config.Cache
	ledgerRepo database.LedgerRepository
	subRepo    database.SubscriptionRepository
	changeRepo database.ChangeSignalRepository
	limiter    *rate.Limiter
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewService(endpoints *config.Cache, ledgerRepo database.LedgerRepository,
	subRepo database.SubscriptionRepository, changeRepo database.ChangeSignalRepository) (*Service, error) {
	c := cfg.Get()

	bot, err := tele.NewBot(tele.Settings{
		Token:  c.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 30 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		bot:        bot,
		engine:     NewEngine(),
		endpoints:  endpoints,
		ledgerRepo: ledgerRepo,
		subRepo:    subRepo,
		changeRepo: changeRepo,
		// Telegram allows ~30 messages/second overall; stay well under.
		limiter:  rate.NewLimiter(rate.Limit(20), 5),
		interval: time.Duration(c.NotifyInterval) * time.Second,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.registerHandlers()

	return s, nil
}

func (s *Service) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.bot.Start()
	}()

	s.wg.Add(1)
	go s.loop()

	slog.Info("Notifier started", "interval", s.interval)
}

func (s *Service) Stop() {
	s.cancel()
	s.bot.Stop()
	s.wg.Wait()
}

func (s *Service) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.dispatch()
		}
	}
}

// dispatch consumes the changed-locale markers. A marker is cleared only
// when every subscriber of that locale was brought up to date; otherwise it
// stays and the remaining deliveries are retried next tick (at-least-once,
// duplicates tolerated downstream).
func (s *Service) dispatch() {
	locales, err := s.changeRepo.GetChangedLocales()
	if err != nil {
		slog.Error("Failed to read changed locales", "error", err)
		return
	}

	for _, locale := range locales {
		if err := s.notifyLocale(locale); err != nil {
			slog.Warn("Locale notification incomplete, will retry", "locale", locale, "error", err)
			continue
		}
		if err := s.changeRepo.ClearChangedLocale(locale); err != nil {
			slog.Error("Failed to clear change marker", "locale", locale, "error", err)
		}
	}
}

func (s *Service) notifyLocale(locale string) error {
	records, err := s.ledgerRepo.GetRecords(locale)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	maxID, _ := s.engine.NextCursor(records)

	subs, err := s.subRepo.GetSubscribersForLocale(locale)
	if err != nil {
		return fmt.Errorf("failed to load subscribers: %w", err)
	}

	var failed int
	delivered := 0
	for _, sub := range subs {
		pending := s.engine.Undelivered(records, sub.LastSeenID)
		if len(pending) == 0 {
			continue
		}

		if err := s.send(sub.ChatID, formatNotification(locale, pending)); err != nil {
			// Cursor untouched: the same batch goes out next tick.
			slog.Warn("Failed to deliver notification", "chat_id", sub.ChatID, "locale", locale, "error", err)
			failed++
			continue
		}

		if err := s.subRepo.AdvanceCursor(sub.ChatID, maxID); err != nil {
			return fmt.Errorf("failed to advance cursor: %w", err)
		}
		delivered++
	}

	if delivered > 0 {
		slog.Info("Notifications delivered", "locale", locale, "subscribers", delivered)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deliveries failed", failed, len(subs))
	}

	return nil
}

func (s *Service) send(chatID int64, text string) error {
	if err := s.limiter.Wait(s.ctx); err != nil {
		return err
	}

	_, err := s.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
	return err
}

func (s *Service) registerHandlers() {
	s.bot.Handle("/start", func(c tele.Context) error {
		locale := strings.TrimSpace(c.Message().Payload)
		if locale == "" {
			return c.Send(s.usageMessage(), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
		}

		if !s.endpoints.Has(locale) {
			return c.Send(fmt.Sprintf("Unknown locale %q. Use /start without arguments to list available locales.", locale))
		}

		if err := s.subRepo.UpsertSubscription(c.Chat().ID, locale); err != nil {
			slog.Error("Failed to store subscription", "chat_id", c.Chat().ID, "error", err)
			return c.Send("Something went wrong, please try again later.")
		}

		return c.Send(fmt.Sprintf("Subscribed to %s updates. You will be notified when new updates are published.", config.DisplayName(locale)))
	})

	s.bot.Handle("/stop", func(c tele.Context) error {
		if err := s.subRepo.DeleteSubscription(c.Chat().ID); err != nil {
			slog.Error("Failed to delete subscription", "chat_id", c.Chat().ID, "error", err)
			return c.Send("Something went wrong, please try again later.")
		}
		return c.Send("Unsubscribed. Use /start <locale> to subscribe again.")
	})

	s.bot.Handle("/latest", func(c tele.Context) error {
		sub, err := s.subRepo.GetSubscription(c.Chat().ID)
		if err != nil {
			slog.Error("Failed to load subscription", "chat_id", c.Chat().ID, "error", err)
			return c.Send("Something went wrong, please try again later.")
		}
		if sub == nil {
			return c.Send("You are not subscribed yet. Use /start <locale> first.")
		}

		records, err := s.ledgerRepo.GetRecords(sub.Locale)
		if err != nil {
			slog.Error("Failed to load ledger", "locale", sub.Locale, "error", err)
			return c.Send("Something went wrong, please try again later.")
		}
		if len(records) == 0 {
			return c.Send("No updates recorded for your locale yet.")
		}

		return c.Send(formatNotification(sub.Locale, records), &tele.SendOptions{
			ParseMode:             tele.ModeMarkdown,
			DisableWebPagePreview: true,
		})
	})
}

func (s *Service) usageMessage() string {
	endpoints := s.endpoints.GetEndpoints()
	locales := make([]string, 0, len(endpoints))
	for code := range endpoints {
		locales = append(locales, code)
	}
	sort.Strings(locales)

	var b strings.Builder
	b.WriteString("Subscribe with `/start <locale>`.\n\nAvailable locales:\n")
	for _, code := range locales {
		fmt.Fprintf(&b, "`%s` - %s\n", code, config.DisplayName(code))
	}
	return b.String()
}
