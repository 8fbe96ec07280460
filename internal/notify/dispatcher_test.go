package notify

import (
	"context"
	"net/http"
	"reflect"
	"testing"
	"time"

	"cat-feeder/internal/domain/accounts"
	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/domain/push"
)

type fakeEmails struct {
	configs []accounts.NotifyConfig
}

func (f fakeEmails) NotifyConfigs(context.Context) ([]accounts.NotifyConfig, error) {
	return f.configs, nil
}

type fakeSubs struct {
	subs    []push.Subscription
	dropped []string
}

func (f *fakeSubs) List(context.Context) ([]push.Subscription, error) {
	return f.subs, nil
}

func (f *fakeSubs) Drop(_ context.Context, endpoint string) error {
	f.dropped = append(f.dropped, endpoint)
	return nil
}

func TestFeedingLogged_SkipsIncompleteConfigs(t *testing.T) {
	complete := accounts.NotifyConfig{
		Host: "smtp.example.com", Port: 587, User: "mailer",
		Password: "hunter2", From: "feeder@example.com",
		Recipients: []string{"a@example.com"},
	}
	missingHost := complete
	missingHost.Host = ""
	noRecipients := complete
	noRecipients.Recipients = nil

	d := NewDispatcher(fakeEmails{configs: []accounts.NotifyConfig{missingHost, complete, noRecipients}}, nil, VAPIDKeys{}, nil)

	var sent []accounts.NotifyConfig
	d.sendEmail = func(cfg accounts.NotifyConfig, subject, body string) error {
		sent = append(sent, cfg)
		if subject != "Feeding logged: Whiskers" {
			t.Errorf("unexpected subject: %q", subject)
		}
		return nil
	}

	d.FeedingLogged(context.Background(), pets.Pet{ID: "p1", Name: "Whiskers"}, feedings.FeedingEvent{
		AmountGrams: 85,
		FedAt:       time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
		DietType:    "Whiskas Poultry",
	})

	if len(sent) != 1 || sent[0].Host != "smtp.example.com" {
		t.Fatalf("expected only the complete config to send, got %+v", sent)
	}
}

func TestFeedingLogged_DietFallback(t *testing.T) {
	cfg := accounts.NotifyConfig{
		Host: "smtp.example.com", Port: 587, User: "mailer",
		Password: "hunter2", From: "feeder@example.com",
		Recipients: []string{"a@example.com"},
	}
	d := NewDispatcher(fakeEmails{configs: []accounts.NotifyConfig{cfg}}, nil, VAPIDKeys{}, nil)

	var gotBody string
	d.sendEmail = func(_ accounts.NotifyConfig, _, body string) error {
		gotBody = body
		return nil
	}

	// Evento sin dieta: cae a la dieta de la mascota.
	d.FeedingLogged(context.Background(), pets.Pet{ID: "p1", Name: "Whiskers", DietType: "Whiskas Poultry"}, feedings.FeedingEvent{
		AmountGrams: 85,
		FedAt:       time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
	})

	want := "Pet: Whiskers\nAmount: 85g\nDiet: Whiskas Poultry\nFed at (UTC): 2026-08-23T09:00:00Z\n"
	if gotBody != want {
		t.Fatalf("expected body %q, got %q", want, gotBody)
	}
}

func TestFanOutPush_DropsDeadSubscriptions(t *testing.T) {
	subs := &fakeSubs{subs: []push.Subscription{
		{Endpoint: "https://push.example/alive"},
		{Endpoint: "https://push.example/gone"},
	}}
	d := NewDispatcher(nil, subs, VAPIDKeys{PublicKey: "pub", PrivateKey: "priv", Subject: "mailto:x@example.com"}, nil)

	d.sendPush = func(sub push.Subscription, _ []byte) (int, error) {
		if sub.Endpoint == "https://push.example/gone" {
			return http.StatusGone, nil
		}
		return http.StatusCreated, nil
	}

	d.LowStock(context.Background(), pets.Pet{ID: "p1", Name: "Whiskers"}, inventory.Item{SachetCount: 3})

	if !reflect.DeepEqual(subs.dropped, []string{"https://push.example/gone"}) {
		t.Fatalf("expected the 410 endpoint dropped, got %v", subs.dropped)
	}
}

func TestFanOutPush_SkippedWithoutKeys(t *testing.T) {
	subs := &fakeSubs{subs: []push.Subscription{{Endpoint: "https://push.example/alive"}}}
	d := NewDispatcher(nil, subs, VAPIDKeys{}, nil)

	called := false
	d.sendPush = func(push.Subscription, []byte) (int, error) {
		called = true
		return http.StatusCreated, nil
	}

	d.LowStock(context.Background(), pets.Pet{ID: "p1", Name: "Whiskers"}, inventory.Item{SachetCount: 3})
	if called {
		t.Fatal("push sent without VAPID keys configured")
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"b@example.com", "a@example.com", "b@example.com"})
	want := []string{"a@example.com", "b@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
