package main

import (
	"context"
	"fmt"
	"os"

	"github.com/obradata/obras_backend/config"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/services"
)

func main() {
	ctx := context.Background()

	db := config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}

	if err := services.SeedDemo(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("demo data seeded (login: admin / admin123)")
}
