package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"equitystek/server/config"
	"equitystek/server/internal/portfolio"
	"equitystek/server/internal/pricing"
	"equitystek/server/internal/valuation"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg, newLogger(cfg.LogLevel))
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func seedPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-plans",
		Short: "Load the plan catalogue file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				path = cfg.PlansFile
			}

			logger := newLogger(cfg.LogLevel)
			db, err := openDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = seedPlans(cmd.Context(), db, path, logger)
			return err
		},
	}
	cmd.Flags().String("file", "", "plan catalogue to load (defaults to PLANS_FILE)")
	return cmd
}

func valueCmd() *cobra.Command {
	var (
		sqft      int
		beds      int
		baths     string
		propType  string
		additions []string
		baseOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "value",
		Short: "Value a property offline with the configured rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			calc, err := valuation.NewCalculator(cfg.ValuationRates())
			if err != nil {
				return err
			}

			attrs := valuation.PropertyAttributes{
				SquareFeet:   sqft,
				PropertyType: propType,
			}
			if cmd.Flags().Changed("beds") {
				attrs.Bedrooms = &beds
			}
			if baths != "" {
				b, err := decimal.NewFromString(baths)
				if err != nil {
					return fmt.Errorf("invalid --baths: %w", err)
				}
				attrs.Bathrooms = &b
			}

			events := make([]valuation.MaintenanceEvent, 0, len(additions))
			for _, raw := range additions {
				added, err := decimal.NewFromString(raw)
				if err != nil {
					return fmt.Errorf("invalid --added %q: %w", raw, err)
				}
				events = append(events, valuation.MaintenanceEvent{EstimatedValueAdded: &added})
			}

			if baseOnly {
				base, err := calc.BaseValue(attrs)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]decimal.Decimal{"base_value": base})
			}

			v, err := calc.Calculate(attrs, events)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().IntVar(&sqft, "sqft", 0, "square feet")
	cmd.Flags().IntVar(&beds, "beds", 0, "bedrooms")
	cmd.Flags().StringVar(&baths, "baths", "", "bathrooms, may be fractional")
	cmd.Flags().StringVar(&propType, "type", "single_family", "property type")
	cmd.Flags().StringArrayVar(&additions, "added", nil, "estimated value added by one maintenance event; repeatable")
	cmd.Flags().BoolVar(&baseOnly, "base", false, "print only the attribute-derived base value")
	return cmd
}

func quoteCmd() *cobra.Command {
	var (
		planCode string
		from, to int
		file     string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a property count change on a catalogue plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				file = cfg.PlansFile
			}
			plans, err := config.LoadPlans(file)
			if err != nil {
				return err
			}

			for i := range plans {
				if plans[i].Code != planCode {
					continue
				}
				quote, err := pricing.Quote(portfolio.ToPlan(&plans[i]), from, to)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), quote)
			}
			return fmt.Errorf("plan %q not found in %s", planCode, file)
		},
	}

	cmd.Flags().StringVar(&planCode, "plan", "", "plan code")
	cmd.Flags().IntVar(&from, "from", 1, "current property count")
	cmd.Flags().IntVar(&to, "to", 1, "proposed property count")
	cmd.Flags().StringVar(&file, "file", "", "plan catalogue (defaults to PLANS_FILE)")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
