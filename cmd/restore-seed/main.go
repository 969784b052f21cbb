// restore-seed is a one-shot tool to restore the account directory and item
// category mapping. Run it after migrating a fresh database, or when the seed
// rows have been accidentally wiped.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"millbooks/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring account directory...")
	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (name, legacy_pcode, address)
		VALUES
		  ('Mill Cash Counter',        'P-0001', NULL),
		  ('Mill Bank - Current A/C',  'P-0002', NULL),
		  ('Haji Paddy Traders',       'P-0101', 'Grain Market'),
		  ('Sethi Commission Shop',    'P-0102', 'Grain Market'),
		  ('City Rice Wholesalers',    'P-0201', 'Shahalam Market'),
		  ('Madina General Store',     'P-0202', 'Shahalam Market')
		ON CONFLICT (name) DO UPDATE
		  SET legacy_pcode = EXCLUDED.legacy_pcode,
		      address = EXCLUDED.address;
	`)
	if err != nil {
		log.Fatalf("Failed to restore accounts: %v", err)
	}

	log.Println("Restoring item category mapping...")
	_, err = tx.Exec(ctx, `
		INSERT INTO item_categories (item_name, category)
		VALUES
		  ('Basmati Paddy',       'paddy'),
		  ('1121 Paddy',          'paddy'),
		  ('Super Kernel Rice',   'head_rice'),
		  ('Head Rice',           'head_rice'),
		  ('Broken Rice',         'broken_rice'),
		  ('Tota Rice',           'broken_rice'),
		  ('Rice Bran',           'bran'),
		  ('Rice Husk',           'husk')
		ON CONFLICT (item_name) DO UPDATE
		  SET category = EXCLUDED.category;
	`)
	if err != nil {
		log.Fatalf("Failed to restore item categories: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
	os.Exit(0)
}
