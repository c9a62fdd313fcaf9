package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"kpi-dashboard/pkg/models"
)

var (
	ErrInvalidTable  = errors.New("table invalide")
	ErrIncompleteDSN = errors.New("dsn incomplet (user/host/db)")
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb:// ou mysql:// → format MySQL driver
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", ErrIncompleteDSN
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// salesRow est une ligne brute telle que scannée depuis la table de ventes.
type salesRow struct {
	OrderID       string
	CustomerID    string
	PurchaseDate  time.Time
	Region        string
	Category      string
	Price         float64
	ShippingCost  sql.NullFloat64
	AmountPaid    float64
	PaymentMethod string
	Installments  int
	DeliveryDays  sql.NullFloat64
	Rating        sql.NullInt64
}

func (r salesRow) toRecord() (models.Record, error) {
	pm, err := models.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return models.Record{}, err
	}
	rec := models.Record{
		OrderID:       r.OrderID,
		CustomerID:    r.CustomerID,
		PurchaseDate:  r.PurchaseDate.UTC(),
		Region:        r.Region,
		Category:      r.Category,
		Price:         r.Price,
		ShippingCost:  r.ShippingCost.Float64,
		AmountPaid:    r.AmountPaid,
		PaymentMethod: pm,
		Installments:  r.Installments,
	}
	if r.DeliveryDays.Valid {
		rec.DeliveryDays = models.Float64(r.DeliveryDays.Float64)
	}
	if r.Rating.Valid {
		rec.Rating = models.Int(int(r.Rating.Int64))
	}
	return rec, rec.Validate()
}

func selectQuery(tableName string) (string, error) {
	if !tableNameRe.MatchString(tableName) {
		return "", ErrInvalidTable
	}
	return fmt.Sprintf(`
		SELECT
			order_id, customer_id, purchase_date, region, category,
			price, shipping_cost, amount_paid, payment_method, installments,
			delivery_days, rating
		FROM %s
		ORDER BY purchase_date, order_id
	`, tableName), nil
}

// LoadRecords lit toute la table de ventes. Les lignes invalides sont journalisées
// et comptées, jamais corrigées.
func LoadRecords(
	ctx context.Context,
	db *sql.DB,
	tableName string,
	logger logrus.FieldLogger,
	showProgress bool,
) ([]models.Record, models.LoadStats, error) {
	var stats models.LoadStats

	q, err := selectQuery(tableName)
	if err != nil {
		return nil, stats, err
	}

	var total int64
	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableName)
	if err := db.QueryRowContext(ctx, countQ).Scan(&total); err != nil {
		logger.WithError(err).Debug("Count query failed")
		total = -1
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(total, "loading "+tableName)
	}

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, stats, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		stats.Read++
		var r salesRow
		if err := rows.Scan(
			&r.OrderID, &r.CustomerID, &r.PurchaseDate, &r.Region, &r.Category,
			&r.Price, &r.ShippingCost, &r.AmountPaid, &r.PaymentMethod, &r.Installments,
			&r.DeliveryDays, &r.Rating,
		); err != nil {
			return nil, stats, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		rec, err := r.toRecord()
		if err != nil {
			stats.Rejected++
			logger.WithError(err).WithField("order_id", r.OrderID).Debug("Rejected row")
			continue
		}
		stats.Accepted++
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, stats, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	logger.WithFields(logrus.Fields{
		"table":    tableName,
		"read":     stats.Read,
		"accepted": stats.Accepted,
		"rejected": stats.Rejected,
	}).Info("Sales table loaded")

	return records, stats, nil
}
