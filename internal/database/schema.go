package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the marketplace tables when they do not exist yet.
// Listings use a single table with a `kind` discriminator and nullable
// variant columns; queries over kind-agnostic fields (category, location)
// therefore work uniformly across all three variants.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(120) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role ENUM('customer','seller','worker','owner','admin') NOT NULL DEFAULT 'customer',
			phone VARCHAR(32) NOT NULL,
			seller_id VARCHAR(16) NULL,
			seller_categories JSON NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email),
			UNIQUE KEY uq_users_seller_id (seller_id)
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			label VARCHAR(60) NOT NULL,
			address_line VARCHAR(255) NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_addresses_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			kind ENUM('product','service','machine') NOT NULL,
			title VARCHAR(100) NOT NULL,
			description VARCHAR(1000) NOT NULL,
			category VARCHAR(60) NOT NULL,
			images JSON NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			address VARCHAR(255) NULL,
			rating DOUBLE NOT NULL DEFAULT 0,
			num_reviews INT UNSIGNED NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			price DOUBLE NULL,
			unit VARCHAR(20) NULL,
			stock INT NULL,
			brand VARCHAR(60) NULL,
			specifications JSON NULL,
			hourly_rate DOUBLE NULL,
			daily_rate DOUBLE NULL,
			visit_charge DOUBLE NULL,
			experience_years INT NULL,
			skills JSON NULL,
			availability VARCHAR(60) NULL,
			is_verified BOOLEAN NULL,
			rate_unit ENUM('hour','day','feet','meter','trip','load') NULL,
			per_feet_rate DOUBLE NULL,
			model_name VARCHAR(100) NULL,
			capacity VARCHAR(60) NULL,
			owner_operator BOOLEAN NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_listings_category (category),
			KEY idx_listings_kind (kind),
			KEY idx_listings_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			listing_id BIGINT UNSIGNED NOT NULL,
			seller_id BIGINT UNSIGNED NOT NULL,
			status ENUM('pending','confirmed','completed','cancelled') NOT NULL DEFAULT 'pending',
			date DATETIME NOT NULL,
			duration INT NOT NULL DEFAULT 1,
			total_price DOUBLE NOT NULL,
			notes VARCHAR(500) NULL,
			customer_lat DOUBLE NULL,
			customer_lng DOUBLE NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_bookings_user (user_id),
			KEY idx_bookings_seller (seller_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			reference CHAR(36) NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			total_amount DOUBLE NOT NULL,
			status ENUM('pending','confirmed','shipped','delivered','cancelled') NOT NULL DEFAULT 'pending',
			address_line VARCHAR(255) NOT NULL,
			ship_lat DOUBLE NULL,
			ship_lng DOUBLE NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_orders_reference (reference),
			KEY idx_orders_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT UNSIGNED NOT NULL,
			listing_id BIGINT UNSIGNED NOT NULL,
			title VARCHAR(100) NOT NULL,
			price DOUBLE NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			seller_id BIGINT UNSIGNED NOT NULL,
			KEY idx_order_items_order (order_id),
			KEY idx_order_items_seller (seller_id)
		)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
