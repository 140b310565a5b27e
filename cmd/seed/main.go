// Command seed loads demo accounts and listings for local development.
// Run with -d to wipe the seeded tables instead.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/etukas/marketplace/internal/config"
	"github.com/etukas/marketplace/internal/database"
	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/repository"
)

func main() {
	destroy := flag.Bool("d", false, "destroy seeded data instead of importing")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}
	if *destroy {
		wipe(ctx, db)
		log.Println("data destroyed")
		return
	}
	wipe(ctx, db)
	importData(ctx, db, cfg.BcryptCost)
	log.Println("data imported")
}

func wipe(ctx context.Context, db *sql.DB) {
	for _, table := range []string{"order_items", "orders", "bookings", "addresses", "listings", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("wipe %s: %v", table, err)
		}
	}
}

func importData(ctx context.Context, db *sql.DB, bcryptCost int) {
	users := repository.NewUserRepo(db)
	listings := repository.NewListingRepo(db)

	if _, err := users.Create(ctx, "Admin User", "admin@etukas.com", "123456", model.RoleAdmin, "9876543210", nil, bcryptCost); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	seller, err := users.Create(ctx, "John Seller", "seller@etukas.com", "123456", model.RoleSeller, "9876543211", []string{"Cement"}, bcryptCost)
	if err != nil {
		log.Fatalf("seed seller: %v", err)
	}
	if _, err := users.Create(ctx, "Jane Customer", "customer@etukas.com", "123456", model.RoleCustomer, "9876543212", nil, bcryptCost); err != nil {
		log.Fatalf("seed customer: %v", err)
	}

	// A small spread of listings around Hyderabad for geo-query demos.
	demo := []model.Listing{
		{
			UserID: seller.ID, Kind: model.KindProduct,
			Title: "UltraStrong Cement 50kg", Description: "High-grade OPC 53 cement bags, bulk pricing available.",
			Category: "Cement", Lat: 17.3850, Lng: 78.4867, Address: "Abids, Hyderabad",
			Product: &model.ProductDetails{Price: 420, Unit: "bag", Stock: 500, Brand: "UltraStrong"},
		},
		{
			UserID: seller.ID, Kind: model.KindService,
			Title: "Experienced Mason Crew", Description: "Brickwork, plastering and finishing for residential sites.",
			Category: "Masonry", Lat: 17.4010, Lng: 78.4700, Address: "Banjara Hills, Hyderabad",
			Service: &model.ServiceDetails{DailyRate: 1200, VisitCharge: 100, ExperienceYears: 8, Skills: []string{"brickwork", "plastering"}, Availability: "Mon-Sat"},
		},
		{
			UserID: seller.ID, Kind: model.KindMachine,
			Title: "JCB 3DX Backhoe Loader", Description: "Backhoe loader with operator for excavation and loading.",
			Category: "Earthmovers", Lat: 17.4399, Lng: 78.4983, Address: "Secunderabad",
			Machine: &model.MachineDetails{HourlyRate: 900, RateUnit: "hour", ModelName: "JCB 3DX", Capacity: "1 cum", OwnerOperator: true},
		},
	}
	for i := range demo {
		demo[i].Normalize()
		if _, err := listings.Create(ctx, &demo[i]); err != nil {
			log.Fatalf("seed listing %q: %v", demo[i].Title, err)
		}
	}
}
