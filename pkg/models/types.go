package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

/*
LOAD → une ligne de vente (un article vendu) telle que fournie par le chargeur.
*/

// PaymentMethod est l'ensemble fermé des moyens de paiement acceptés.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentVoucher  PaymentMethod = "voucher"
	PaymentBankSlip PaymentMethod = "bank_slip"
	PaymentDebit    PaymentMethod = "debit"
)

// ParsePaymentMethod accepte les codes internes et les libellés du jeu Olist
// ("Credit Card", "Boleto", "Voucher", "Debit Card").
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "credit card", "credit_card":
		return PaymentCard, nil
	case "voucher":
		return PaymentVoucher, nil
	case "bank_slip", "bank-slip", "boleto":
		return PaymentBankSlip, nil
	case "debit", "debit card", "debit_card":
		return PaymentDebit, nil
	}
	return "", fmt.Errorf("moyen de paiement inconnu: %q", s)
}

// Record représente une ligne article d'une commande. Un même OrderID peut
// apparaître sur plusieurs lignes.
type Record struct {
	OrderID       string        `json:"order_id" validate:"required"`
	CustomerID    string        `json:"customer_id" validate:"required"`
	PurchaseDate  time.Time     `json:"purchase_date" validate:"required"`
	Region        string        `json:"region" validate:"required"`
	Category      string        `json:"category" validate:"required"`
	Price         float64       `json:"price" validate:"finite,gte=0"`
	ShippingCost  float64       `json:"shipping_cost" validate:"finite,gte=0"`
	AmountPaid    float64       `json:"amount_paid" validate:"finite,gte=0"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"oneof=card voucher bank_slip debit"`
	Installments  int           `json:"installments" validate:"gte=1"`
	DeliveryDays  *float64      `json:"delivery_days,omitempty" validate:"omitempty,finite,gte=0"` // nil: pas encore livré
	Rating        *int          `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`  // nil: pas d'avis
}

// Les parties de date sont dérivées de PurchaseDate, jamais stockées.

func (r Record) Year() int { return r.PurchaseDate.Year() }

func (r Record) Month() int { return int(r.PurchaseDate.Month()) }

// YearMonth renvoie "YYYY-MM".
func (r Record) YearMonth() string {
	return fmt.Sprintf("%04d-%02d", r.PurchaseDate.Year(), int(r.PurchaseDate.Month()))
}

func (r Record) Weekday() string { return r.PurchaseDate.Weekday().String() }

// Float64 et Int fabriquent les champs optionnels.
func Float64(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

/*
COMPUTE → tables dérivées
*/

// GroupRow est une ligne d'agrégat groupé; Values suit l'ordre des agrégats demandés.
type GroupRow struct {
	Key     string    `json:"key"`
	Values  []float64 `json:"values"`
	Records int       `json:"records"`
}

// Value renvoie le premier agrégat, cas le plus courant.
func (g GroupRow) Value() float64 {
	if len(g.Values) == 0 {
		return 0
	}
	return g.Values[0]
}

// DeliveryBucket résume une tranche de délai de livraison.
type DeliveryBucket struct {
	Label        string  `json:"label"`
	Lower        float64 `json:"lower"` // exclusif, sauf pour la première tranche
	Upper        float64 `json:"upper"` // inclusif; +Inf pour la dernière
	Records      int     `json:"records"`
	RatedRecords int     `json:"rated_records"`
	AvgRating    float64 `json:"avg_rating"`
	Orders       int     `json:"orders"`
}

// MarshalJSON écrit une borne supérieure infinie comme null.
func (b DeliveryBucket) MarshalJSON() ([]byte, error) {
	type plain DeliveryBucket
	out := struct {
		plain
		Upper *float64 `json:"upper"`
	}{plain: plain(b)}
	if !math.IsInf(b.Upper, 1) {
		out.Upper = &b.Upper
	}
	return json.Marshal(out)
}

// SeriesPoint est un point (période, valeur) d'une série ordonnée.
type SeriesPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// LoadStats compte les lignes lues, acceptées et rejetées par un chargeur.
type LoadStats struct {
	Read     int `json:"read"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// PeriodResult contient l'instantané d'un mois calendaire.
type PeriodResult struct {
	MonthYear string   `json:"month_year"` // "MM/YYYY"
	Snapshot  Snapshot `json:"snapshot"`
}
