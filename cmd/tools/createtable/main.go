package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	// DSN needs multiStatements=true for the batched DDL below.
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS orders (
	  id CHAR(36) NOT NULL,
	  user_id CHAR(36) NULL,
	  guest_email VARCHAR(255) NULL,
	  status VARCHAR(32) NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'NGN',
	  total_cents INT NOT NULL,
	  is_paid TINYINT(1) NOT NULL DEFAULT 0,
	  paid_at DATETIME(3) NULL,
	  payment_ref VARCHAR(128) NULL,
	  payment_status VARCHAR(32) NULL,
	  payment_email VARCHAR(255) NULL,
	  price_paid VARCHAR(32) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_orders_user_id (user_id),
	  KEY ix_orders_paid (is_paid, paid_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS order_items (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  product_name VARCHAR(255) NOT NULL,
	  category VARCHAR(64) NOT NULL,
	  unit_price_cents INT NOT NULL,
	  quantity INT NOT NULL,
	  line_total_cents INT NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'NGN',
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_order_items_order_id (order_id),
	  CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS payments (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  provider VARCHAR(64) NOT NULL,
	  provider_ref VARCHAR(128) NULL,
	  status VARCHAR(32) NOT NULL,
	  amount_cents INT NOT NULL,
	  currency CHAR(3) NOT NULL,
	  idempotency_key VARCHAR(64) NOT NULL,
	  checkout_url VARCHAR(512) NULL,
	  error_message VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL,
	  updated_at DATETIME(3) NOT NULL,
	  PRIMARY KEY (id),
	  KEY ix_payments_order_id (order_id),
	  KEY ix_payments_provider_ref (provider_ref),
	  UNIQUE KEY ux_payments_order_idem (order_id, idempotency_key),
	  CONSTRAINT fk_payments_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS provider_events (
	  id CHAR(36) NOT NULL,
	  provider VARCHAR(64) NOT NULL,
	  event_id VARCHAR(191) NOT NULL,
	  event_type VARCHAR(64) NOT NULL,
	  payload_json JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL,
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_provider_events_provider_event (provider, event_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("orders, order_items, payments, provider_events tables created")
}
