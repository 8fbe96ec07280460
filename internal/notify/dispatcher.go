// Package notify hace el fan-out de notificaciones (email SMTP y Web
// Push) disparadas por los módulos de dominio. Todo acá es best-effort:
// los errores se loguean y nunca vuelven al caller.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"cat-feeder/internal/domain/accounts"
	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/domain/push"
	"cat-feeder/internal/platform/logger"

	webpush "github.com/SherClockHolmes/webpush-go"
	mail "github.com/wneessen/go-mail"
)

const smtpTimeout = 10 * time.Second

// EmailSource resuelve los targets SMTP configurados por los usuarios.
type EmailSource interface {
	NotifyConfigs(ctx context.Context) ([]accounts.NotifyConfig, error)
}

// SubscriptionStore es la vista del dispatcher sobre las suscripciones
// push: listar para enviar, y dar de baja endpoints muertos.
type SubscriptionStore interface {
	List(ctx context.Context) ([]push.Subscription, error)
	Drop(ctx context.Context, endpoint string) error
}

type VAPIDKeys struct {
	PublicKey  string
	PrivateKey string
	Subject    string
}

type Dispatcher struct {
	emails EmailSource
	subs   SubscriptionStore
	vapid  VAPIDKeys
	log    logger.Logger

	// Inyectables para tests; en producción quedan los defaults.
	sendEmail func(cfg accounts.NotifyConfig, subject, body string) error
	sendPush  func(sub push.Subscription, payload []byte) (int, error)
}

func NewDispatcher(emails EmailSource, subs SubscriptionStore, vapid VAPIDKeys, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		emails: emails,
		subs:   subs,
		vapid:  vapid,
		log:    log,
	}
	d.sendEmail = d.smtpSend
	d.sendPush = d.webpushSend
	return d
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// FeedingLogged avisa por email y push que entró un feeding.
func (d *Dispatcher) FeedingLogged(ctx context.Context, pet pets.Pet, e feedings.FeedingEvent) {
	diet := e.DietType
	if diet == "" {
		diet = pet.DietType
	}
	if diet == "" {
		diet = "Unknown"
	}

	subject := fmt.Sprintf("Feeding logged: %s", pet.Name)
	body := fmt.Sprintf(
		"Pet: %s\nAmount: %dg\nDiet: %s\nFed at (UTC): %s\n",
		pet.Name, e.AmountGrams, diet, e.FedAt.UTC().Format(time.RFC3339),
	)
	d.fanOutEmail(ctx, subject, body)

	d.fanOutPush(ctx, pushPayload{
		Title: "Feeding logged",
		Body:  fmt.Sprintf("%s - %dg - %s", pet.Name, e.AmountGrams, diet),
		URL:   fmt.Sprintf("/pets/%s/profile", pet.ID),
	})
}

// LowStock avisa por push que el stock cruzó el umbral.
func (d *Dispatcher) LowStock(ctx context.Context, pet pets.Pet, item inventory.Item) {
	d.fanOutPush(ctx, pushPayload{
		Title: "Low food stock",
		Body:  fmt.Sprintf("%s low stock: %d sachets left", pet.Name, item.SachetCount),
		URL:   fmt.Sprintf("/pets/%s/profile", pet.ID),
	})
}

func (d *Dispatcher) fanOutEmail(ctx context.Context, subject, body string) {
	if d.emails == nil {
		return
	}
	configs, err := d.emails.NotifyConfigs(ctx)
	if err != nil {
		d.log.Warn("notify configs lookup failed", map[string]any{"err": err.Error()})
		return
	}
	for _, cfg := range configs {
		// Targets a medio configurar se saltean en silencio.
		if cfg.Host == "" || cfg.User == "" || cfg.Password == "" || cfg.From == "" || len(cfg.Recipients) == 0 {
			continue
		}
		if err := d.sendEmail(cfg, subject, body); err != nil {
			d.log.Warn("email send failed", map[string]any{"host": cfg.Host, "err": err.Error()})
		}
	}
}

func (d *Dispatcher) fanOutPush(ctx context.Context, p pushPayload) {
	if d.subs == nil || d.vapid.PublicKey == "" || d.vapid.PrivateKey == "" {
		return
	}
	subs, err := d.subs.List(ctx)
	if err != nil {
		d.log.Warn("push subscriptions lookup failed", map[string]any{"err": err.Error()})
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}

	for _, sub := range subs {
		status, err := d.sendPush(sub, payload)
		if err != nil {
			d.log.Warn("push send failed", map[string]any{"endpoint": sub.Endpoint, "err": err.Error()})
			continue
		}
		// 404/410 = suscripción muerta: se da de baja para no insistir.
		if status == http.StatusNotFound || status == http.StatusGone {
			if err := d.subs.Drop(ctx, sub.Endpoint); err != nil {
				d.log.Warn("push subscription cleanup failed", map[string]any{"endpoint": sub.Endpoint, "err": err.Error()})
			}
		}
	}
}

// smtpSend entrega un mensaje a un target SMTP: SSL implícito en 465,
// STARTTLS para el resto. Destinatarios deduplicados y ordenados.
func (d *Dispatcher) smtpSend(cfg accounts.NotifyConfig, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(cfg.From); err != nil {
		return err
	}
	if err := msg.To(dedupe(cfg.Recipients)...); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}

func (d *Dispatcher) webpushSend(sub push.Subscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      d.vapid.Subject,
		VAPIDPublicKey:  d.vapid.PublicKey,
		VAPIDPrivateKey: d.vapid.PrivateKey,
		TTL:             30,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
