package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"frete/internal/ai"
	"frete/internal/service"
)

func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	userMessage := "Preciso levar 12 toneladas de Campinas até Belo Horizonte na sexta, com taxa de descarga de R$ 150"
	if len(os.Args) > 1 {
		userMessage = strings.Join(os.Args[1:], " ")
	}
	fmt.Printf("User: %s\n", userMessage)

	today := time.Now()
	intent, err := provider.ParseQuoteIntent(ctx, userMessage, today)
	if err != nil {
		log.Fatalf("Error parsing intent: %v", err)
	}

	fmt.Printf("AI Reply: %s\n", intent.Reply)
	fmt.Printf("Intent: %s\n", intent.Intent)
	if missing := intent.Missing(); len(missing) > 0 {
		fmt.Printf("Missing: %s\n", strings.Join(missing, ", "))
		return
	}

	req := service.IntentRequest(intent, today)
	fmt.Printf("Date: %s\n", req.Date)
	fmt.Printf("Origin: %s\n", req.Origin)
	fmt.Printf("Destination: %s\n", req.Destination)
	fmt.Printf("Difficulty surcharge: %s\n", req.DifficultySurcharge)
	fmt.Printf("Per-km surcharge: %s\n", req.PerKmSurchargeRate)
	if req.CargoWeightKg.Valid {
		fmt.Printf("Cargo weight: %s kg\n", req.CargoWeightKg.Decimal)
	}
}
