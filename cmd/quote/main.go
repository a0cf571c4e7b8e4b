// README: Command-line freight quote; resolves the tariff, looks up the route and prints the breakdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"frete/internal/config"
	"frete/internal/infra"
	"frete/internal/maps"
	"frete/internal/memo"
	"frete/internal/modules/pricing"
	"frete/internal/modules/session"
	"frete/internal/modules/tariff"
	"frete/internal/service"
	"frete/internal/types"
)

type options struct {
	date        string
	origin      string
	destination string
	difficulty  string
	perKm       string
	weight      string
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	req, err := opts.request()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.HTTP.Timeout)
	defer cancel()

	table, err := tariff.Load(ctx, tariff.SourceEmbedded, nil)
	if err != nil {
		log.Fatal(err)
	}

	var provider maps.Provider
	if cfg.Maps.APIKey != "" {
		google, err := maps.NewGoogleProvider(cfg.Maps.APIKey, cfg.Maps.QPS, maps.WithTimeout(cfg.Maps.Timeout))
		if err != nil {
			log.Fatal(err)
		}
		provider = google
	}

	quotes := service.NewQuoteService(
		table,
		provider,
		pricing.NewService(decimal.NewFromFloat(cfg.Pricing.VehicleCapacityKg)),
		memo.NewMemoryStore(),
		cfg.Memo.RouteTTL,
		logger.With(zap.String("cmd", "quote")),
	)
	quotes.SetRouteTimeout(cfg.HTTP.Timeout)

	q, sess, err := quotes.Quote(ctx, session.New(), req)
	if err != nil {
		if errors.Is(err, tariff.ErrInvalidDate) || errors.Is(err, pricing.ErrInvalidInput) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
	render(os.Stdout, q, sess)
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.date, "date", envOrDefault("FRETE_QUOTE_DATE", time.Now().Format(tariff.DateLayout)), "Trip date (dd/mm/yyyy)")
	flag.StringVar(&o.origin, "origin", os.Getenv("FRETE_QUOTE_ORIGIN"), "Origin place")
	flag.StringVar(&o.destination, "destination", os.Getenv("FRETE_QUOTE_DESTINATION"), "Destination place")
	flag.StringVar(&o.difficulty, "difficulty", envOrDefault("FRETE_QUOTE_DIFFICULTY", "0"), "Difficulty surcharge (BRL)")
	flag.StringVar(&o.perKm, "per-km", envOrDefault("FRETE_QUOTE_PER_KM", "0"), "Per-km surcharge rate (BRL/km)")
	flag.StringVar(&o.weight, "weight", os.Getenv("FRETE_QUOTE_WEIGHT"), "Cargo weight (kg), optional")
	flag.Parse()
	return o
}

func (o options) request() (service.QuoteRequest, error) {
	difficulty, err := parseAmount("difficulty", o.difficulty)
	if err != nil {
		return service.QuoteRequest{}, err
	}
	perKm, err := parseAmount("per-km", o.perKm)
	if err != nil {
		return service.QuoteRequest{}, err
	}
	var weight decimal.NullDecimal
	if strings.TrimSpace(o.weight) != "" {
		w, err := parseAmount("weight", o.weight)
		if err != nil {
			return service.QuoteRequest{}, err
		}
		weight = decimal.NullDecimal{Decimal: w, Valid: true}
	}
	return service.QuoteRequest{
		Date:                strings.TrimSpace(o.date),
		Origin:              o.origin,
		Destination:         o.destination,
		DifficultySurcharge: difficulty,
		PerKmSurchargeRate:  perKm,
		CargoWeightKg:       weight,
	}, nil
}

// parseAmount accepts both "1234.5" and the pt-BR "1.234,5".
func parseAmount(name, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("-%s: invalid amount %q", name, raw)
	}
	return d, nil
}

func render(w io.Writer, q service.Quote, sess session.Session) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	res := q.Result

	fmt.Fprintf(tw, "Date\t%s\n", q.Date.Format(tariff.DateLayout))
	if res.Entry != nil {
		fmt.Fprintf(tw, "Tariff\t%s (%s)\n", res.Entry.Label, res.Entry.EffectiveDate.Format(tariff.DateLayout))
		fmt.Fprintf(tw, "Coefficient\t%s BRL/km\n", res.Entry.Coefficient.StringFixed(4))
	}
	if q.Leg.DistanceKm.Valid {
		cached := ""
		if q.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(tw, "Distance\t%s km%s\n", q.Leg.DistanceKm.Decimal.StringFixed(2), cached)
	} else {
		fmt.Fprintf(tw, "Distance\tunavailable\n")
	}
	fmt.Fprintf(tw, "Outcome\t%s\n", res.Outcome)

	if res.Outcome != pricing.OutcomeNoTariff {
		b := res.Breakdown
		fmt.Fprintf(tw, "Distance cost\t%s\n", display(b.DistanceCost))
		fmt.Fprintf(tw, "Fixed fee\t%s\n", types.BRL(b.FixedFee).Display())
		fmt.Fprintf(tw, "Per-km surcharge\t%s\n", display(b.SurchargeDistanceCost))
		fmt.Fprintf(tw, "Difficulty surcharge\t%s\n", types.BRL(b.DifficultySurcharge).Display())
	}
	if res.TotalCost.Valid {
		fmt.Fprintf(tw, "Total\t%s\n", types.BRL(res.TotalCost.Decimal).Display())
	}
	if res.EffectiveRate.Valid {
		fmt.Fprintf(tw, "Effective rate\t%s BRL/km\n", res.EffectiveRate.Decimal.StringFixed(3))
	}
	if res.Deviation.Valid {
		pct := "0.0"
		if res.DeviationPct.Valid {
			pct = res.DeviationPct.Decimal.StringFixed(1)
		}
		fmt.Fprintf(tw, "Deviation\t%s BRL/km (%s%%, %s)\n", res.Deviation.Decimal.StringFixed(3), pct, res.Direction)
	}
	if res.WeightAdjustedTotal.Valid {
		fmt.Fprintf(tw, "Weight-adjusted total\t%s\n", types.BRL(res.WeightAdjustedTotal.Decimal).Display())
	}
	_ = tw.Flush()

	for _, note := range res.Notes {
		fmt.Fprintf(w, "note: %s\n", note)
	}
	if len(sess.Log) > 0 {
		fmt.Fprintln(w, "\nRoute log:")
		for _, e := range sess.Log {
			fmt.Fprintf(w, "  [%s] %s\n", e.Level, e.Message)
		}
	}
}

// display shows an undefined amount as "n/a" instead of zero.
func display(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return types.BRL(d.Decimal).Display()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
