package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing the seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and seed the database from CSV exports",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the tables if they do not exist",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSchema,
			},
			{
				Name:   "data",
				Usage:  "Load inventory, sales, BOM, vendor and PO data from CSV files",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSeeder,
			},
			{
				Name:   "all",
				Usage:  "Create the schema, then load the data",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := runSchema(c); err != nil {
						return fmt.Errorf("error creating schema: %w", err)
					}
					if err := runSeeder(c); err != nil {
						return fmt.Errorf("error seeding data: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		sku TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		on_order INTEGER NOT NULL DEFAULT 0,
		sales_last_30_days DOUBLE PRECISION NOT NULL DEFAULT 0,
		sales_last_90_days DOUBLE PRECISION NOT NULL DEFAULT 0,
		sales_last_180_days DOUBLE PRECISION NOT NULL DEFAULT 0,
		lead_time_days INTEGER NOT NULL DEFAULT 0,
		reorder_point DOUBLE PRECISION NOT NULL DEFAULT 0,
		moq INTEGER NOT NULL DEFAULT 0,
		vendor_id TEXT NOT NULL DEFAULT '',
		unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS historical_sales (
		sku TEXT NOT NULL,
		sale_date DATE NOT NULL,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (sku, sale_date)
	)`,
	`CREATE TABLE IF NOT EXISTS bom_components (
		finished_sku TEXT NOT NULL,
		component_sku TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (finished_sku, component_sku)
	)`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		lead_time_days INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		order_date DATE NOT NULL,
		expected_date DATE,
		actual_receive_date DATE,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_historical_sales_date ON historical_sales (sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_orders_vendor ON purchase_orders (vendor_id)`,
}

func runSchema(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	log.Println("Schema created successfully!")
	return nil
}

// tableSpec binds one seed CSV to its target table. Columns are matched by
// name against the CSV header; a column absent from the file is inserted as
// NULL/default.
type tableSpec struct {
	file     string
	table    string
	columns  []string
	required bool
	// position injects a per-group running index, used to preserve BOM
	// component order.
	position string
	groupBy  string
}

var seedSpecs = []tableSpec{
	{
		file:     "vendors.csv",
		table:    "vendors",
		columns:  []string{"id", "name", "lead_time_days"},
		required: false,
	},
	{
		file:  "inventory.csv",
		table: "inventory_items",
		columns: []string{
			"sku", "name", "stock", "on_order",
			"sales_last_30_days", "sales_last_90_days", "sales_last_180_days",
			"lead_time_days", "reorder_point", "moq", "vendor_id", "unit_cost",
		},
		required: true,
	},
	{
		file:     "sales.csv",
		table:    "historical_sales",
		columns:  []string{"sku", "sale_date", "quantity"},
		required: false,
	},
	{
		file:     "bom.csv",
		table:    "bom_components",
		columns:  []string{"finished_sku", "component_sku", "quantity"},
		required: false,
		position: "position",
		groupBy:  "finished_sku",
	},
	{
		file:     "purchase_orders.csv",
		table:    "purchase_orders",
		columns:  []string{"id", "vendor_id", "status", "order_date", "expected_date", "actual_receive_date", "total_amount"},
		required: false,
	},
}

func runSeeder(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	ctx := c.Context

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	for _, spec := range seedSpecs {
		path := filepath.Join(dataDir, spec.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if spec.required {
				return fmt.Errorf("required seed file missing: %s", path)
			}
			log.Printf("skipping %s: file not found", spec.file)
			continue
		}

		n, err := seedTable(ctx, tx, spec, path)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", spec.table, err)
		}
		log.Printf("seeded %d rows into %s", n, spec.table)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// seedTable truncates the target table and loads it from the CSV file. A full
// reload keeps repeated seed runs deterministic.
func seedTable(ctx context.Context, tx *sql.Tx, spec tableSpec, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+spec.table); err != nil {
		return 0, fmt.Errorf("failed to clear table: %w", err)
	}

	insertCols := spec.columns
	if spec.position != "" {
		insertCols = append(append([]string(nil), spec.columns...), spec.position)
	}
	placeholders := make([]string, len(insertCols))
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.table, strings.Join(insertCols, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var (
		count     int
		positions = make(map[string]int)
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read record: %w", err)
		}

		args := make([]interface{}, 0, len(insertCols))
		for _, col := range spec.columns {
			args = append(args, nullIfEmpty(fieldValue(record, colIndex, col)))
		}
		if spec.position != "" {
			group := fieldValue(record, colIndex, spec.groupBy)
			args = append(args, positions[group])
			positions[group]++
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return count, fmt.Errorf("failed to insert row %d: %w", count+1, err)
		}
		count++
	}

	return count, nil
}

func fieldValue(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
