// Package ingest transforme les sources externes en lignes validées pour le magasin.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"kpi-dashboard/pkg/models"
)

var ErrMissingColumn = errors.New("missing column")

// Colonnes canoniques et alias acceptés (export Olist en espagnol).
var columnAliases = map[string]string{
	"order_id":           "order_id",
	"customer_id":        "customer_id",
	"purchase_date":      "purchase_date",
	"fecha":              "purchase_date",
	"region":             "region",
	"estado":             "region",
	"category":           "category",
	"categoria":          "category",
	"price":              "price",
	"precio":             "price",
	"shipping_cost":      "shipping_cost",
	"costo_envio":        "shipping_cost",
	"amount_paid":        "amount_paid",
	"valor_total_pagado": "amount_paid",
	"payment_method":     "payment_method",
	"metodo_pago":        "payment_method",
	"installments":       "installments",
	"cuotas":             "installments",
	"delivery_days":      "delivery_days",
	"dias_entrega":       "delivery_days",
	"rating":             "rating",
}

var requiredColumns = []string{
	"order_id", "customer_id", "purchase_date", "region", "category",
	"price", "amount_paid", "payment_method", "installments",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadCSV lit un export tabulaire. Les lignes invalides sont journalisées,
// comptées dans LoadStats.Rejected et écartées, jamais corrigées.
func ReadCSV(r io.Reader, logger logrus.FieldLogger) ([]models.Record, models.LoadStats, error) {
	var stats models.LoadStats

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		if canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[canonical] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var records []models.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		stats.Read++

		rec, err := parseRow(row, cols)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			stats.Rejected++
			logger.WithError(err).WithField("line", line).Warn("Rejected row")
			continue
		}
		stats.Accepted++
		records = append(records, rec)
	}

	logger.WithFields(logrus.Fields{
		"read":     stats.Read,
		"accepted": stats.Accepted,
		"rejected": stats.Rejected,
	}).Info("CSV loaded")

	return records, stats, nil
}

func parseRow(row []string, cols map[string]int) (models.Record, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		rec models.Record
		err error
	)
	rec.OrderID = get("order_id")
	rec.CustomerID = get("customer_id")
	rec.Region = get("region")
	rec.Category = get("category")

	if rec.PurchaseDate, err = parseDate(get("purchase_date")); err != nil {
		return rec, err
	}
	if rec.Price, err = parseFloat("price", get("price")); err != nil {
		return rec, err
	}
	if s := get("shipping_cost"); s != "" {
		if rec.ShippingCost, err = parseFloat("shipping_cost", s); err != nil {
			return rec, err
		}
	}
	if rec.AmountPaid, err = parseFloat("amount_paid", get("amount_paid")); err != nil {
		return rec, err
	}
	if rec.PaymentMethod, err = models.ParsePaymentMethod(get("payment_method")); err != nil {
		return rec, err
	}
	if rec.Installments, err = strconv.Atoi(get("installments")); err != nil {
		return rec, fmt.Errorf("installments: %w", err)
	}
	if s := get("delivery_days"); s != "" {
		d, err := parseFloat("delivery_days", s)
		if err != nil {
			return rec, err
		}
		rec.DeliveryDays = &d
	}
	if s := get("rating"); s != "" {
		// Les exports pandas écrivent parfois "5.0".
		f, err := parseFloat("rating", s)
		if err != nil {
			return rec, err
		}
		if f != float64(int(f)) {
			return rec, fmt.Errorf("rating: not an integer: %q", s)
		}
		rec.Rating = models.Int(int(f))
	}
	return rec, nil
}

func parseFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s: not a finite number: %q", field, s)
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	// Le décalage de la source est conservé: année et mois sont ceux de la date locale de l'achat.
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("purchase_date: unsupported format %q", s)
}
