// Command settle prints the card settlement for one payment month, e.g.
//
//	settle -month 2024-10
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"warikan/internal/cli"
	"warikan/internal/core"
	applog "warikan/internal/log"
	"warikan/internal/services"
	"warikan/internal/zaim"
)

func main() {
	month := flag.String("month", "", "payment month as YYYY-MM (default: current month)")
	flag.Parse()

	cfg, logger := cli.Bootstrap(applog.ComponentLedger)
	if !cfg.ZaimConfigured() {
		logger.Error("Zaim credentials are not configured")
		os.Exit(1)
	}

	ym := core.YearMonthOf(time.Now().In(cfg.Location()))
	if *month != "" {
		t, err := time.Parse("2006-01", *month)
		if err != nil {
			logger.Error("Invalid -month, want YYYY-MM", "month", *month)
			os.Exit(2)
		}
		ym = core.YearMonthOf(t)
	}

	client, err := zaim.NewClient(cfg.ZaimBaseURL, zaim.Credentials{
		ConsumerKey:       cfg.ZaimConsumerKey,
		ConsumerSecret:    cfg.ZaimConsumerSecret,
		AccessToken:       cfg.ZaimAccessToken,
		AccessTokenSecret: cfg.ZaimAccessTokenSecret,
	}, zaim.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}))
	if err != nil {
		logger.Error("Failed to initialize Zaim client", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPClientTimeout)
	defer cancel()

	settler := services.NewCardSettlementService(services.NewCreditCardResolver(client, cfg.CardNameKeywords))
	settlement, err := settler.Settle(ctx, ym)
	if err != nil {
		logger.Error("Settlement failed", applog.FieldError, err, applog.FieldYear, ym.Year, applog.FieldMonth, ym.Month)
		os.Exit(1)
	}
	fmt.Println(settlement.FormatMessage())
}
