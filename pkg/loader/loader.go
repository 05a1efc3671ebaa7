package loader

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/ledgerline/txnetl/pkg/models"
)

// Row is the persisted shape of a transformed transaction.
type Row struct {
	TransactionID   string    `gorm:"column:transaction_id;primary_key"`
	CustomerID      string    `gorm:"column:customer_id;not null"`
	FullName        string    `gorm:"column:full_name"`
	Phone           string    `gorm:"column:phone"`
	Email           string    `gorm:"column:email"`
	Amount          float64   `gorm:"column:amount;not null"`
	Currency        string    `gorm:"column:currency;size:3"`
	TransactionDate string    `gorm:"column:transaction_date;not null"`
	Type            string    `gorm:"column:transaction_type"`
	Country         string    `gorm:"column:country"`
	Flagged         bool      `gorm:"column:flagged"`
	CleansingNotes  string    `gorm:"column:cleansing_notes;type:text"`
	LoadedAt        time.Time `gorm:"column:loaded_at"`
}

func (Row) TableName() string {
	return "transactions"
}

// Summary is the post-load verification result.
type Summary struct {
	Total           int
	Flagged         int
	TotalAmount     float64
	UniqueCountries int
}

// Loader persists transformed transactions into a SQLite store, upserting
// by transaction ID and committing in fixed-size sub-batches.
type Loader struct {
	db        *gorm.DB
	batchSize int
	logger    *log.Logger
}

// Open connects to the database at path and creates the schema if needed.
func Open(path string, batchSize int, logger *log.Logger) (*Loader, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Row{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := db.Exec("CREATE VIEW IF NOT EXISTS flagged_transactions AS SELECT * FROM transactions WHERE flagged = 1").Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create flagged view: %w", err)
	}
	logger.Debug("schema initialized", "db", path)
	return &Loader{db: db, batchSize: batchSize, logger: logger}, nil
}

func (l *Loader) Close() error {
	return l.db.Close()
}

// Load upserts the batch, replace-on-conflict keyed on transaction ID. Rows
// are committed every batchSize records for write efficiency.
func (l *Loader) Load(transactions []*models.Transaction) (int, error) {
	loaded := 0
	now := time.Now().UTC()

	tx := l.db.Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	for _, t := range transactions {
		row := toRow(t, now)
		// Assign takes a map so zero values (flagged=false, amount=0)
		// still overwrite on replay.
		if err := tx.Where(Row{TransactionID: row.TransactionID}).
			Assign(rowValues(row)).
			FirstOrCreate(&Row{}).Error; err != nil {
			tx.Rollback()
			return loaded, fmt.Errorf("failed to load txn %s: %w", t.TransactionID, err)
		}
		loaded++

		if loaded%l.batchSize == 0 {
			if err := tx.Commit().Error; err != nil {
				return loaded, fmt.Errorf("failed to commit batch: %w", err)
			}
			l.logger.Debug("committed batch", "loaded", loaded)
			tx = l.db.Begin()
			if tx.Error != nil {
				return loaded, fmt.Errorf("failed to begin transaction: %w", tx.Error)
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return loaded, fmt.Errorf("failed to commit batch: %w", err)
	}

	l.logger.Info("load complete", "loaded", loaded)
	return loaded, nil
}

// Verify runs the post-load summary query used for run verification.
func (l *Loader) Verify() (Summary, error) {
	var s Summary
	row := l.db.Raw(`SELECT COUNT(*),
		COALESCE(SUM(flagged), 0),
		COALESCE(ROUND(SUM(amount), 2), 0),
		COUNT(DISTINCT country)
		FROM transactions`).Row()
	if err := row.Scan(&s.Total, &s.Flagged, &s.TotalAmount, &s.UniqueCountries); err != nil {
		return s, fmt.Errorf("verification query failed: %w", err)
	}
	return s, nil
}

func rowValues(r Row) map[string]interface{} {
	return map[string]interface{}{
		"customer_id":      r.CustomerID,
		"full_name":        r.FullName,
		"phone":            r.Phone,
		"email":            r.Email,
		"amount":           r.Amount,
		"currency":         r.Currency,
		"transaction_date": r.TransactionDate,
		"transaction_type": r.Type,
		"country":          r.Country,
		"flagged":          r.Flagged,
		"cleansing_notes":  r.CleansingNotes,
		"loaded_at":        r.LoadedAt,
	}
}

func toRow(t *models.Transaction, loadedAt time.Time) Row {
	amount, _ := t.Amount.Float64()
	return Row{
		TransactionID:   t.TransactionID,
		CustomerID:      t.CustomerID,
		FullName:        t.FullName,
		Phone:           t.Phone,
		Email:           t.Email,
		Amount:          amount,
		Currency:        t.Currency,
		TransactionDate: t.DateString(),
		Type:            t.Type,
		Country:         t.Country,
		Flagged:         t.Flagged,
		CleansingNotes:  t.NotesText(),
		LoadedAt:        loadedAt,
	}
}
