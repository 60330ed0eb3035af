package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:payment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Payment{}, &models.PaymentChannel{},
		&models.Category{}, &models.Template{}, &models.TemplatePurchase{}, &models.TemplateAnalytics{},
		&models.Plan{}, &models.Subscription{},
	); err != nil {
		t.Fatalf("migrate payment tables failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	templateRepo := repository.NewTemplateRepository(db)
	planRepo := repository.NewPlanRepository(db)
	svc := NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewPaymentChannelRepository(db),
		templateRepo,
		planRepo,
		repository.NewTemplatePurchaseRepository(db),
		NewSubscriptionService(repository.NewSubscriptionRepository(db), planRepo),
		NewAnalyticsService(repository.NewTemplateAnalyticsRepository(db), templateRepo),
		queueClient,
		&config.PaymentConfig{ExpireMinutes: 30},
	)
	return svc, db
}

func createPaymentTestTemplate(t *testing.T, db *gorm.DB, slug, price string) *models.Template {
	t.Helper()
	category := &models.Category{
		Slug:     slug + "-cat",
		NameJSON: models.JSON{"en-US": "Landing"},
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	amount, err := models.NewMoneyFromString(price)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	template := &models.Template{
		CategoryID:  category.ID,
		Slug:        slug,
		TitleJSON:   models.JSON{"en-US": "Test Template"},
		Framework:   constants.FrameworkNext,
		PriceAmount: amount,
		Currency:    constants.CurrencyUSD,
		Status:      constants.TemplateStatusLive,
	}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("create template failed: %v", err)
	}
	return template
}

func createStripeTestChannel(t *testing.T, db *gorm.DB, apiBaseURL string, active bool) *models.PaymentChannel {
	t.Helper()
	channel := &models.PaymentChannel{
		Name:            "Stripe Checkout",
		ProviderType:    constants.PaymentProviderStripe,
		InteractionMode: constants.PaymentInteractionRedirect,
		ConfigJSON: models.JSON{
			"secret_key":     "sk_test_payment",
			"webhook_secret": "whsec_payment",
			"success_url":    "https://pagespark.test/pay/success",
			"cancel_url":     "https://pagespark.test/pay/cancel",
			"api_base_url":   apiBaseURL,
		},
		IsActive: active,
	}
	if err := db.Create(channel).Error; err != nil {
		t.Fatalf("create channel failed: %v", err)
	}
	return channel
}

func TestAcquireFreeTemplate(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(time.Now().UnixNano() % 1_000_000)
	free := createPaymentTestTemplate(t, db, fmt.Sprintf("free-%d", userID), "0")
	paid := createPaymentTestTemplate(t, db, fmt.Sprintf("paid-%d", userID), "29.00")

	purchase, err := svc.AcquireFreeTemplate(userID, free.ID)
	if err != nil {
		t.Fatalf("acquire free template failed: %v", err)
	}
	if purchase.PaymentID != nil {
		t.Fatalf("free purchase should not reference a payment")
	}

	again, err := svc.AcquireFreeTemplate(userID, free.ID)
	if err != nil {
		t.Fatalf("repeat acquire should be idempotent: %v", err)
	}
	if again.ID != purchase.ID {
		t.Fatalf("repeat acquire returned a different purchase: %d vs %d", again.ID, purchase.ID)
	}

	if _, err := svc.AcquireFreeTemplate(userID, paid.ID); err != ErrPaymentInvalid {
		t.Fatalf("paid template should not be acquirable for free, got %v", err)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(2_000_000 + time.Now().UnixNano()%1_000_000)
	template := createPaymentTestTemplate(t, db, fmt.Sprintf("val-%d", userID), "49.00")
	free := createPaymentTestTemplate(t, db, fmt.Sprintf("val-free-%d", userID), "0")
	inactive := createStripeTestChannel(t, db, "https://api.stripe.test", false)

	if _, err := svc.CreatePayment(CreatePaymentInput{
		UserID: userID, Purpose: constants.PaymentPurposeTemplate, TemplateID: template.ID, ChannelID: inactive.ID + 999,
	}); err != ErrPaymentChannelNotFound {
		t.Fatalf("unknown channel: got %v", err)
	}
	if _, err := svc.CreatePayment(CreatePaymentInput{
		UserID: userID, Purpose: constants.PaymentPurposeTemplate, TemplateID: template.ID, ChannelID: inactive.ID,
	}); err != ErrPaymentChannelInactive {
		t.Fatalf("inactive channel: got %v", err)
	}

	active := createStripeTestChannel(t, db, "https://api.stripe.test", true)
	if _, err := svc.CreatePayment(CreatePaymentInput{
		UserID: userID, Purpose: constants.PaymentPurposeTemplate, TemplateID: free.ID, ChannelID: active.ID,
	}); err != ErrPaymentInvalid {
		t.Fatalf("free template should not be payable: got %v", err)
	}

	if _, err := svc.AcquireFreeTemplate(userID, free.ID); err != nil {
		t.Fatalf("acquire free failed: %v", err)
	}
	if err := db.Create(&models.TemplatePurchase{UserID: userID, TemplateID: template.ID, Currency: constants.CurrencyUSD}).Error; err != nil {
		t.Fatalf("seed purchase failed: %v", err)
	}
	if _, err := svc.CreatePayment(CreatePaymentInput{
		UserID: userID, Purpose: constants.PaymentPurposeTemplate, TemplateID: template.ID, ChannelID: active.ID,
	}); err != ErrTemplateAlreadyOwned {
		t.Fatalf("owned template: got %v", err)
	}
}

func TestCreatePaymentStripeCheckout(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(3_000_000 + time.Now().UnixNano()%1_000_000)
	template := createPaymentTestTemplate(t, db, fmt.Sprintf("checkout-%d", userID), "59.00")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_checkout_1","url":"https://checkout.stripe.test/c/pay/cs_test_checkout_1","status":"open"}`)
	}))
	defer server.Close()

	channel := createStripeTestChannel(t, db, server.URL, true)
	result, err := svc.CreatePayment(CreatePaymentInput{
		UserID:     userID,
		Purpose:    constants.PaymentPurposeTemplate,
		TemplateID: template.ID,
		ChannelID:  channel.ID,
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	payment := result.Payment
	if payment.Status != constants.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", payment.Status)
	}
	if payment.ProviderRef != "cs_test_checkout_1" {
		t.Fatalf("provider ref = %s", payment.ProviderRef)
	}
	if payment.PayURL == "" {
		t.Fatalf("pay url should be filled")
	}
	if payment.PaymentNo == "" || payment.Amount.String() != "59.00" {
		t.Fatalf("payment no/amount wrong: %s %s", payment.PaymentNo, payment.Amount.String())
	}

	// 未支付期间重复下单应复用同一支付单
	reused, err := svc.CreatePayment(CreatePaymentInput{
		UserID:     userID,
		Purpose:    constants.PaymentPurposeTemplate,
		TemplateID: template.ID,
		ChannelID:  channel.ID,
	})
	if err != nil {
		t.Fatalf("reuse create failed: %v", err)
	}
	if !reused.Reused || reused.Payment.ID != payment.ID {
		t.Fatalf("expected pending payment reuse, got new payment %d", reused.Payment.ID)
	}
}

func TestHandleCallbackTemplateSuccessIdempotent(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(4_000_000 + time.Now().UnixNano()%1_000_000)
	template := createPaymentTestTemplate(t, db, fmt.Sprintf("cb-%d", userID), "19.00")
	amount, _ := models.NewMoneyFromString("19.00")

	templateID := template.ID
	payment := &models.Payment{
		PaymentNo:       generatePaymentNo(),
		Purpose:         constants.PaymentPurposeTemplate,
		UserID:          userID,
		TemplateID:      &templateID,
		ChannelID:       1,
		ProviderType:    constants.PaymentProviderStripe,
		InteractionMode: constants.PaymentInteractionRedirect,
		Amount:          amount,
		Currency:        constants.CurrencyUSD,
		Status:          constants.PaymentStatusPending,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}

	if _, err := svc.HandleCallback(PaymentCallbackInput{
		PaymentID: payment.ID,
		Status:    constants.PaymentStatusSuccess,
		Amount:    amount,
		Currency:  constants.CurrencyUSD,
	}); err != nil {
		t.Fatalf("success callback failed: %v", err)
	}

	var stored models.Payment
	if err := db.First(&stored, payment.ID).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if stored.Status != constants.PaymentStatusSuccess || stored.PaidAt == nil {
		t.Fatalf("payment not marked paid: %s", stored.Status)
	}

	var purchases int64
	if err := db.Model(&models.TemplatePurchase{}).Where("user_id = ? AND template_id = ?", userID, template.ID).Count(&purchases).Error; err != nil {
		t.Fatalf("count purchases failed: %v", err)
	}
	if purchases != 1 {
		t.Fatalf("purchase count = %d, want 1", purchases)
	}

	var analytics models.TemplateAnalytics
	if err := db.Where("template_id = ?", template.ID).First(&analytics).Error; err != nil {
		t.Fatalf("analytics row missing: %v", err)
	}
	if analytics.Purchases != 1 || analytics.Revenue.String() != "19.00" {
		t.Fatalf("analytics = %d purchases / %s revenue", analytics.Purchases, analytics.Revenue.String())
	}

	// 重复回调：确认不重复落账
	if _, err := svc.HandleCallback(PaymentCallbackInput{
		PaymentID: payment.ID,
		Status:    constants.PaymentStatusSuccess,
		Amount:    amount,
		Currency:  constants.CurrencyUSD,
	}); err != nil {
		t.Fatalf("repeat callback failed: %v", err)
	}
	if err := db.Model(&models.TemplatePurchase{}).Where("user_id = ? AND template_id = ?", userID, template.ID).Count(&purchases).Error; err != nil {
		t.Fatalf("recount purchases failed: %v", err)
	}
	if purchases != 1 {
		t.Fatalf("purchase duplicated after repeat callback: %d", purchases)
	}
	if err := db.Where("template_id = ?", template.ID).First(&analytics).Error; err != nil {
		t.Fatalf("reload analytics failed: %v", err)
	}
	if analytics.Purchases != 1 {
		t.Fatalf("analytics re-applied: %d purchases", analytics.Purchases)
	}
}

func TestHandleCallbackSubscriptionSuccess(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(5_000_000 + time.Now().UnixNano()%1_000_000)
	price, _ := models.NewMoneyFromString("12.00")
	plan := &models.Plan{
		Code:        fmt.Sprintf("pro-%d", userID),
		NameJSON:    models.JSON{"en-US": "Pro"},
		PriceAmount: price,
		Currency:    constants.CurrencyUSD,
		Interval:    constants.PlanIntervalMonth,
		IsActive:    true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}

	planID := plan.ID
	payment := &models.Payment{
		PaymentNo:       generatePaymentNo(),
		Purpose:         constants.PaymentPurposeSubscription,
		UserID:          userID,
		PlanID:          &planID,
		ChannelID:       1,
		ProviderType:    constants.PaymentProviderStripe,
		InteractionMode: constants.PaymentInteractionRedirect,
		Amount:          price,
		Currency:        constants.CurrencyUSD,
		Status:          constants.PaymentStatusPending,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}

	paidAt := time.Now()
	if _, err := svc.HandleCallback(PaymentCallbackInput{
		PaymentID:   payment.ID,
		Status:      constants.PaymentStatusSuccess,
		ProviderRef: "cs_sub_1",
		Amount:      price,
		Currency:    constants.CurrencyUSD,
		PaidAt:      &paidAt,
	}); err != nil {
		t.Fatalf("subscription callback failed: %v", err)
	}

	var subscription models.Subscription
	if err := db.Where("user_id = ? AND plan_id = ?", userID, plan.ID).First(&subscription).Error; err != nil {
		t.Fatalf("subscription missing: %v", err)
	}
	if subscription.Status != constants.SubscriptionStatusActive {
		t.Fatalf("subscription status = %s", subscription.Status)
	}
	if subscription.CurrentPeriodEnd == nil {
		t.Fatalf("period end missing")
	}
	wantEnd := paidAt.AddDate(0, 1, 0)
	if diff := subscription.CurrentPeriodEnd.Sub(wantEnd); diff > time.Minute || diff < -time.Minute {
		t.Fatalf("period end = %v, want about %v", subscription.CurrentPeriodEnd, wantEnd)
	}
}

func TestHandleCallbackAmountMismatch(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(6_000_000 + time.Now().UnixNano()%1_000_000)
	template := createPaymentTestTemplate(t, db, fmt.Sprintf("mm-%d", userID), "39.00")
	amount, _ := models.NewMoneyFromString("39.00")
	wrong, _ := models.NewMoneyFromString("1.00")

	templateID := template.ID
	payment := &models.Payment{
		PaymentNo:    generatePaymentNo(),
		Purpose:      constants.PaymentPurposeTemplate,
		UserID:       userID,
		TemplateID:   &templateID,
		ChannelID:    1,
		ProviderType: constants.PaymentProviderStripe,
		Amount:       amount,
		Currency:     constants.CurrencyUSD,
		Status:       constants.PaymentStatusPending,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}

	if _, err := svc.HandleCallback(PaymentCallbackInput{
		PaymentID: payment.ID,
		Status:    constants.PaymentStatusSuccess,
		Amount:    wrong,
		Currency:  constants.CurrencyUSD,
	}); err != ErrPaymentAmountMismatch {
		t.Fatalf("amount mismatch: got %v", err)
	}
	if _, err := svc.HandleCallback(PaymentCallbackInput{
		PaymentID: payment.ID,
		Status:    constants.PaymentStatusSuccess,
		Amount:    amount,
		Currency:  "EUR",
	}); err != ErrPaymentCurrencyMismatch {
		t.Fatalf("currency mismatch: got %v", err)
	}
}

func TestExpirePayment(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	userID := uint(7_000_000 + time.Now().UnixNano()%1_000_000)
	amount, _ := models.NewMoneyFromString("9.00")
	expiredAt := time.Now().Add(-time.Minute)

	pending := &models.Payment{
		PaymentNo:    generatePaymentNo(),
		Purpose:      constants.PaymentPurposeTemplate,
		UserID:       userID,
		ChannelID:    1,
		ProviderType: constants.PaymentProviderStripe,
		Amount:       amount,
		Currency:     constants.CurrencyUSD,
		Status:       constants.PaymentStatusPending,
		ExpiredAt:    &expiredAt,
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("seed pending payment failed: %v", err)
	}
	paidAt := time.Now()
	succeeded := &models.Payment{
		PaymentNo:    generatePaymentNo(),
		Purpose:      constants.PaymentPurposeTemplate,
		UserID:       userID,
		ChannelID:    1,
		ProviderType: constants.PaymentProviderStripe,
		Amount:       amount,
		Currency:     constants.CurrencyUSD,
		Status:       constants.PaymentStatusSuccess,
		PaidAt:       &paidAt,
	}
	if err := db.Create(succeeded).Error; err != nil {
		t.Fatalf("seed success payment failed: %v", err)
	}

	updated, err := svc.ExpirePayment(pending.ID)
	if err != nil {
		t.Fatalf("expire payment failed: %v", err)
	}
	if updated.Status != constants.PaymentStatusExpired {
		t.Fatalf("status = %s, want expired", updated.Status)
	}

	untouched, err := svc.ExpirePayment(succeeded.ID)
	if err != nil {
		t.Fatalf("expire success payment errored: %v", err)
	}
	if untouched.Status != constants.PaymentStatusSuccess {
		t.Fatalf("success payment must not be expired, got %s", untouched.Status)
	}
}
