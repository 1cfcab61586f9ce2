// Package canonical holds the in-memory schemas shared by every other
// package: positions, scheduled flows, the yield-curve long table, the
// cashflow table, and the regulatory time-bucket grid.
// All tables here are immutable once built; nothing in this package
// mutates a table after it is handed to a caller.
package canonical

import "github.com/shopspring/decimal"

// Money is the engine's monetary type for stored amounts (notionals,
// scheduled flows, emitted cashflows): a fixed-point decimal rounded to
// cents at emission. Schedules themselves are computed in float64 by the
// cashflow generators and converted to Money row by row.
type Money = decimal.Decimal

// Cents is the rounding precision applied to emitted cashflow amounts.
const Cents = 2

// RoundCents rounds m to Cents decimal places (half-away-from-zero).
func RoundCents(m Money) Money {
	return m.Round(Cents)
}

// ZeroMoney is the Money zero value.
func ZeroMoney() Money {
	return decimal.Zero
}

// MoneyFromFloat builds a Money from a float64. It is used both at the
// ingestion boundary and wherever float64 generator output becomes an
// emitted cashflow or synthetic position amount.
func MoneyFromFloat(f float64) Money {
	return decimal.NewFromFloat(f)
}
