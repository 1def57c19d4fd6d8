package models

import (
	"fmt"
	"time"
)

type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// TradeRecord is one row of a session's trade log. A BUY record and its
// matching SELL record together form one round trip. Exit fields stay nil
// until the position is closed.
type TradeRecord struct {
	Timestamp  time.Time
	Symbol     string
	Side       TradeSide
	EntryPrice float64
	ExitTime   *time.Time
	ExitPrice  *float64
	Quantity   float64
	Pnl        *float64
	ReturnPct  *float64
	OrderID    string
	Status     string
}

func (tr TradeRecord) String() string {
	return fmt.Sprintf("%s %s %s @%.2f", tr.Timestamp.Format(time.RFC3339), tr.Side, tr.Symbol, tr.EntryPrice)
}

// Ledger is the append-only trade log for a single session. Each execution
// driver owns its ledger exclusively; the matcher only ever reads one.
type Ledger struct {
	records []*TradeRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Records() []*TradeRecord {
	return l.records
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// OpenTrade returns the most recent BUY record whose exit has not been
// filled, or nil when the session is flat.
func (l *Ledger) OpenTrade() *TradeRecord {
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].Side == SideBuy && l.records[i].ExitTime == nil {
			return l.records[i]
		}
	}

	return nil
}

func (l *Ledger) RecordEntry(timestamp time.Time, symbol string, price, quantity float64, orderID, status string) (*TradeRecord, error) {
	if l.OpenTrade() != nil {
		return nil, OpenTradeExistsErr
	}

	record := &TradeRecord{
		Timestamp:  timestamp,
		Symbol:     symbol,
		Side:       SideBuy,
		EntryPrice: price,
		Quantity:   quantity,
		OrderID:    orderID,
		Status:     status,
	}

	l.records = append(l.records, record)
	return record, nil
}

// RecordExit closes the open BUY record and appends the corresponding SELL
// record, so a finished session logs one row per executed order.
func (l *Ledger) RecordExit(timestamp time.Time, price float64, orderID, status string) (*TradeRecord, error) {
	open := l.OpenTrade()
	if open == nil {
		return nil, NoOpenTradeErr
	}

	exitTime := timestamp
	exitPrice := price
	pnl := (price - open.EntryPrice) * open.Quantity
	returnPct := (price - open.EntryPrice) / open.EntryPrice * 100

	open.ExitTime = &exitTime
	open.ExitPrice = &exitPrice
	open.Pnl = &pnl
	open.ReturnPct = &returnPct

	record := &TradeRecord{
		Timestamp:  timestamp,
		Symbol:     open.Symbol,
		Side:       SideSell,
		EntryPrice: open.EntryPrice,
		ExitTime:   &exitTime,
		ExitPrice:  &exitPrice,
		Quantity:   open.Quantity,
		Pnl:        &pnl,
		ReturnPct:  &returnPct,
		OrderID:    orderID,
		Status:     status,
	}

	l.records = append(l.records, record)
	return record, nil
}

// RoundTrips returns the closed BUY records in session order.
func (l *Ledger) RoundTrips() []*TradeRecord {
	var trips []*TradeRecord
	for _, r := range l.records {
		if r.Side == SideBuy && r.ExitPrice != nil {
			trips = append(trips, r)
		}
	}

	return trips
}
