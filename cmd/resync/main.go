package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"hostelcore/internal/config"
	"hostelcore/internal/database"
	"hostelcore/internal/modules/roomstatus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer database.Close(db)

	res, err := roomstatus.NewSynchronizer(db, cfg.OperationTimeout, nil).ResyncAll(context.Background())
	if err != nil {
		log.Fatalf("room resync failed: %v", err)
	}

	log.Printf("room resync completed: checked=%d updated=%d", res.Checked, res.Updated)
}
