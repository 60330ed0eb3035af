package stripe

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseAndValidateConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"secret_key":           " sk_test_ps ",
		"webhook_secret":       " whsec_ps ",
		"success_url":          "https://pagespark.site/billing/return?stripe_return=1",
		"cancel_url":           "https://pagespark.site/billing/return?stripe_cancel=1",
		"payment_method_types": []interface{}{"card"},
	})
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if cfg.SecretKey != "sk_test_ps" {
		t.Fatalf("secret key should be trimmed, got %q", cfg.SecretKey)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("api base url should default, got %s", cfg.APIBaseURL)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
}

func TestValidateConfigMissingWebhookSecret(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"secret_key":  "sk_test_ps",
		"success_url": "https://pagespark.site/billing/return",
		"cancel_url":  "https://pagespark.site/billing/cancel",
	})
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if err := ValidateConfig(cfg); err == nil || !strings.Contains(err.Error(), "webhook_secret") {
		t.Fatalf("want webhook_secret error, got %v", err)
	}
}

func stripeWebhookBody(t *testing.T, now time.Time) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"id":   "evt_tpl_29",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":         "checkout.session",
				"id":             "cs_tpl_29",
				"payment_status": "paid",
				"currency":       "usd",
				"amount_total":   2900,
				"created":        now.Unix(),
				"metadata": map[string]interface{}{
					"payment_id": "42",
					"payment_no": "PS20260901-000042",
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return body
}

func TestVerifyAndParseWebhookCheckoutCompleted(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_ps_test",
		WebhookToleranceSeconds: 300,
	}
	body := stripeWebhookBody(t, now)
	sig := computeSignature(cfg.WebhookSecret, now.Unix(), body)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=" + sig,
	}

	result, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if result.EventType != "checkout.session.completed" {
		t.Fatalf("unexpected event type: %s", result.EventType)
	}
	if result.PaymentID != 42 {
		t.Fatalf("payment id from metadata want 42 got %d", result.PaymentID)
	}
	if result.PaymentNo != "PS20260901-000042" {
		t.Fatalf("payment no from metadata want PS20260901-000042 got %s", result.PaymentNo)
	}
	if result.ProviderRef != "cs_tpl_29" {
		t.Fatalf("unexpected provider ref: %s", result.ProviderRef)
	}
	if result.Status != "success" {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.Amount != "29.00" {
		t.Fatalf("unexpected amount: %s", result.Amount)
	}
}

func TestVerifyAndParseWebhookInvalidSignature(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_ps_test",
		WebhookToleranceSeconds: 300,
	}
	body := stripeWebhookBody(t, now)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=deadbeef",
	}

	if _, err := VerifyAndParseWebhook(cfg, headers, body, now); err == nil {
		t.Fatal("tampered signature must be rejected")
	}
}

func TestVerifyAndParseWebhookStaleTimestamp(t *testing.T) {
	signedAt := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_ps_test",
		WebhookToleranceSeconds: 300,
	}
	body := stripeWebhookBody(t, signedAt)
	sig := computeSignature(cfg.WebhookSecret, signedAt.Unix(), body)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=" + sig,
	}

	if _, err := VerifyAndParseWebhook(cfg, headers, body, signedAt.Add(10*time.Minute)); err == nil {
		t.Fatal("timestamp outside tolerance must be rejected")
	}
}

func TestMinorAmountRoundTrip(t *testing.T) {
	minor, err := toMinorAmount("29.00", "USD")
	if err != nil {
		t.Fatalf("to minor amount failed: %v", err)
	}
	if minor != 2900 {
		t.Fatalf("minor amount want 2900 got %d", minor)
	}
	if got := fromMinorAmount(2900, "USD"); got != "29.00" {
		t.Fatalf("from minor amount want 29.00 got %s", got)
	}
	// 零小数币种不换算
	if minor, err = toMinorAmount("500", "JPY"); err != nil || minor != 500 {
		t.Fatalf("jpy minor amount want 500 got %d err %v", minor, err)
	}
}

func TestMapPaymentIntentStatus(t *testing.T) {
	if got := mapPaymentIntentStatus("succeeded"); got != "success" {
		t.Fatalf("expected success, got %s", got)
	}
	if got := mapPaymentIntentStatus("processing"); got != "pending" {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := mapPaymentIntentStatus("canceled"); got != "failed" {
		t.Fatalf("expected failed, got %s", got)
	}
}
