// cmd/storefront/main.go
//
// Composition root for the client engine: builds one identity resolver,
// one gateway and the stores, wires them together explicitly, and runs a
// small interactive-less demo flow against the commerce API.
package main

import (
	"context"
	"log"
	"time"

	"github.com/your-org/farmcrate-storefront/internal/account"
	"github.com/your-org/farmcrate-storefront/internal/cart"
	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/config"
	"github.com/your-org/farmcrate-storefront/internal/delivery"
	"github.com/your-org/farmcrate-storefront/internal/gateway"
	"github.com/your-org/farmcrate-storefront/internal/identity"
	"github.com/your-org/farmcrate-storefront/internal/pkg/logger"
	"github.com/your-org/farmcrate-storefront/internal/purchase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg)

	// One resolver, one gateway, passed by reference everywhere.
	resolver := identity.NewResolver(identity.NewFileStorage(cfg.Client.StatePath), appLog)
	resolver.Restore()

	gw := gateway.New(cfg, resolver, appLog)

	products := catalog.NewStore(gw, appLog)
	stock := delivery.NewStore(gw, appLog)
	cartStore := cart.NewStore(gw, resolver, stock, appLog)
	accounts := account.NewService(gw, resolver, appLog)

	cancel := cartStore.Subscribe(func() {
		appLog.WithField("total_items", cartStore.TotalItems()).
			WithField("subtotal", cartStore.TotalPrice()).
			Info("cart changed")
	})
	defer cancel()

	ctx, cancelCtx := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelCtx()

	appLog.WithField("session_id", resolver.SessionID()).Info("session established")

	// Development login: the dev server echoes the OTP so the full loop
	// can run without an SMS provider.
	if cfg.IsDevelopment() && resolver.AuthToken() == "" {
		if code, err := accounts.SendOTP(ctx, "+15550100"); err == nil && code != "" {
			if _, err := accounts.VerifyOTP(ctx, "+15550100", code); err != nil {
				appLog.WithError(err).Warn("dev login failed, continuing anonymously")
			}
		}
	}

	if err := cartStore.Load(ctx); err != nil {
		appLog.WithError(err).Fatal("failed to load cart")
	}

	list, err := products.Products(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("failed to load products")
	}
	if len(list) == 0 {
		appLog.Fatal("catalog is empty")
	}

	if err := stock.Refresh(ctx); err != nil {
		appLog.WithError(err).Fatal("failed to load delivery stock")
	}

	// Pick the first deliverable day for the first product.
	product := list[0]
	snapshot := stock.Snapshot()
	day := 0
	for candidate := 1; candidate <= 7; candidate++ {
		if purchase.IsDaySelectable(snapshot, candidate, stock.HeldFor(candidate)) {
			day = candidate
			break
		}
	}
	if day == 0 {
		appLog.Fatal("no delivery day is currently selectable")
	}

	err = cartStore.AddItem(ctx, &product, cart.AddRequest{
		Quantity:     2,
		PurchaseType: catalog.PurchaseTypeSubscription,
		IntervalKey:  "biweekly",
		DeliveryDay:  day,
	})
	if err != nil {
		appLog.WithError(err).Fatal("failed to add item")
	}

	for _, item := range cartStore.Items() {
		appLog.WithFields(map[string]interface{}{
			"product":  item.ProductName,
			"quantity": item.Quantity,
			"interval": item.SubscriptionInterval,
			"day":      item.DeliveryDay,
			"total":    item.Total,
		}).Info("cart item")
	}
}
