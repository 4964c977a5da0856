package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"peka/internal/amqp"
	"peka/internal/core"
	"peka/internal/log"
)

// ErrNotificationsDisabled is returned when no notification queue is configured.
var ErrNotificationsDisabled = errors.New("summary notifications are not configured (set AMQP_URL)")

type emailTemplate struct {
	subject   string
	lastMonth string
	inMonth   string
	currency  string
	decimal   string
}

var emailTemplates = map[core.Locale]emailTemplate{
	core.LocalePL: {
		subject:   "Podsumowanie miesiąca PEKA - %s",
		lastMonth: "<p>Kolejny wspaniały miesiąc w Poznaniu! Twoja łączna kwota którą wydałeś na przejazdy w zeszłym miesiącu wyniosła %s %s.</p>",
		inMonth:   "<p>Kolejny wspaniały miesiąc w Poznaniu! Twoja łączna kwota którą wydałeś na przejazdy w okresie %s wyniosła %s %s.</p>",
		currency:  "zł",
		decimal:   ",",
	},
	core.LocaleEN: {
		subject:   "PEKA monthly summary - %s",
		lastMonth: "<p>Another great month in Poznań! Last month you spent a total of %s %s on rides.</p>",
		inMonth:   "<p>Another great month in Poznań! In %s you spent a total of %s %s on rides.</p>",
		currency:  "PLN",
		decimal:   ".",
	},
}

// renderEmail builds the subject and HTML body of a summary email.
func renderEmail(locale core.Locale, label string, monthsAgo int, sum float64) (subject, html string) {
	tpl, ok := emailTemplates[locale]
	if !ok {
		tpl = emailTemplates[core.LocaleEN]
	}
	amount := strings.Replace(core.FormatPrice(sum), ".", tpl.decimal, 1)

	subject = fmt.Sprintf(tpl.subject, label)
	if monthsAgo == 1 {
		html = fmt.Sprintf(tpl.lastMonth, amount, tpl.currency)
	} else {
		html = fmt.Sprintf(tpl.inMonth, label, amount, tpl.currency)
	}
	return subject, html
}

type Notifier struct {
	store     PriceSummer
	publisher SummaryPublisher
	to        string
	from      string
	cfg       SummaryConfig
}

// NewNotifier creates the summary mailer. publisher may be nil when notifications
// are not configured.
func NewNotifier(store PriceSummer, publisher SummaryPublisher, to, from string, cfg SummaryConfig) *Notifier {
	return &Notifier{
		store:     store,
		publisher: publisher,
		to:        to,
		from:      from,
		cfg:       cfg,
	}
}

// SendMonthlySummary sums the month monthsAgo months back and publishes the email
// announcing it. Nothing is stored.
func (n *Notifier) SendMonthlySummary(ctx context.Context, monthsAgo int) (*amqp.SummaryMessage, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentNotify)

	if n.publisher == nil {
		return nil, ErrNotificationsDisabled
	}
	if err := validateMonthsAgo(monthsAgo); err != nil {
		return nil, err
	}

	from, to, label := n.cfg.window(monthsAgo)
	sum, err := n.store.SumPrices(ctx, from, to)
	if err != nil {
		return nil, err
	}

	subject, html := renderEmail(n.cfg.Locale, label, monthsAgo, sum)
	msg := amqp.NewSummaryMessage(log.ExecutionID(ctx), label, sum, subject, html, n.to, n.from)
	if err := n.publisher.PublishSummary(ctx, msg); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Summary notification queued",
		log.FieldMonth, label,
		log.FieldSum, sum)
	return msg, nil
}
