package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tripflow/agents"
	planner "tripflow/core"
	"tripflow/evaluation"
	"tripflow/logistics"
	"tripflow/observability"
	"tripflow/tools"
)

var (
	cfgFile     string
	origin      string
	destination string
	departDate  string
	returnDate  string
	checkIn     string
	checkOut    string
	interests   []string
	duration    int
	reportPath  string
	recipient   string
)

var rootCmd = &cobra.Command{
	Use:   "planner [request]",
	Short: "Tripflow - multi-day trip planning pipeline",
	Long: `Tripflow plans multi-day trips through a fixed pipeline of stages:
enhance the request, draft an itinerary, research flights, hotels, weather
and attractions, then assemble the final plan. Providers without configured
credentials fall back to deterministic offline data, so the pipeline always
completes.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tripflow.yaml)")
	rootCmd.Flags().StringVar(&origin, "origin", "", "trip origin city")
	rootCmd.Flags().StringVar(&destination, "destination", "", "trip destination city")
	rootCmd.Flags().StringVar(&departDate, "depart", "", "departure date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&returnDate, "return", "", "return date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&checkIn, "check-in", "", "hotel check-in date (defaults to departure)")
	rootCmd.Flags().StringVar(&checkOut, "check-out", "", "hotel check-out date (defaults to return)")
	rootCmd.Flags().StringSliceVar(&interests, "interests", nil, "comma-separated interests")
	rootCmd.Flags().IntVar(&duration, "duration", 0, "trip length in days")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "write the evaluation report to this path (.yaml or .json)")
	rootCmd.Flags().StringVar(&recipient, "email", "", "email the finished itinerary to this address")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".tripflow")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		// fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	for _, date := range []string{departDate, returnDate, checkIn, checkOut} {
		if date != "" && !tools.ValidDate(date) {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}
	}

	ctx := context.Background()

	shutdown, err := observability.SetupTracing(ctx, viper.GetString("TRIPFLOW_OTLP_ENDPOINT"))
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer shutdown(context.Background())

	toolCfg := tools.Config{
		AmadeusClientID:     viper.GetString("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: viper.GetString("AMADEUS_CLIENT_SECRET"),
		OpenWeatherAPIKey:   viper.GetString("OPENWEATHER_API_KEY"),
		AllowNetwork:        viper.GetBool("TRIPFLOW_ALLOW_NETWORK"),
	}

	var generator agents.Generator = agents.MockGenerator{}
	if apiKey := viper.GetString("OPENAI_API_KEY"); apiKey != "" {
		generator, err = agents.NewOpenAIGenerator(apiKey, viper.GetString("OPENAI_MODEL"))
		if err != nil {
			return fmt.Errorf("openai setup: %w", err)
		}
	} else {
		planner.InfoLog("[TOOLS] OPENAI_API_KEY not set, using offline generator")
	}

	orch := planner.NewOrchestrator(generator, tools.NewToolkit(toolCfg))
	if recipient != "" {
		smtpCfg := logistics.SMTPConfig{
			Email:    viper.GetString("SENDER_EMAIL"),
			Password: viper.GetString("SENDER_PASSWORD"),
			Server:   viper.GetString("SMTP_SERVER"),
			Port:     viper.GetInt("SMTP_PORT"),
		}
		orch.SetDelivery(logistics.TextRenderer{}, logistics.NewSMTPSender(smtpCfg), planner.DeliveryConfig{
			Recipient:   recipient,
			AutoDeliver: true,
		})
	}

	state := &planner.RunState{
		Request:     args[0],
		Origin:      origin,
		Destination: destination,
		DepartDate:  departDate,
		ReturnDate:  returnDate,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Interests:   interests,
		Duration:    duration,
	}

	start := time.Now()
	final := orch.Run(ctx, state)

	evaluator := evaluation.NewEvaluator()
	metrics := evaluator.EvaluateExecution(final, time.Since(start))
	quality := evaluator.EvaluateQuality(final)
	evaluator.Record(final.RunID, metrics, quality)

	fmt.Println("--- Plan ---")
	fmt.Println(final.Plan)

	if len(final.ToolResults) > 0 {
		fmt.Println("\n--- Tool Results ---")
		for capability, result := range final.ToolResults {
			fmt.Printf("%s (%s):\n%s\n", strings.ToUpper(capability), result.Provider, result.Summary())
		}
	}

	if len(final.Notes) > 0 {
		fmt.Println("\n--- Notes ---")
		for _, note := range final.Notes {
			fmt.Println("-", note)
		}
	}

	fmt.Printf("\nStages: %d/%d succeeded, overall quality %.1f/100\n",
		metrics.StagesSucceeded, metrics.StagesAttempted, quality.Overall())

	if reportPath != "" {
		if err := evaluator.SaveReport(reportPath); err != nil {
			return err
		}
	}
	return nil
}
