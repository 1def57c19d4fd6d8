package models

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
)

type TradeRecordDTO struct {
	Timestamp  string `csv:"timestamp"`
	Symbol     string `csv:"symbol"`
	Side       string `csv:"side"`
	EntryPrice string `csv:"entry_price"`
	ExitTime   string `csv:"exit_time"`
	ExitPrice  string `csv:"exit_price"`
	Quantity   string `csv:"quantity"`
	Pnl        string `csv:"pnl"`
	ReturnPct  string `csv:"return_pct"`
	OrderID    string `csv:"order_id"`
	Status     string `csv:"status"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}

	return formatFloat(*v)
}

func formatTimePtr(v *time.Time) string {
	if v == nil {
		return ""
	}

	return v.Format(time.RFC3339)
}

func parseFloatPtr(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func parseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (tr *TradeRecord) ToDTO() *TradeRecordDTO {
	return &TradeRecordDTO{
		Timestamp:  tr.Timestamp.Format(time.RFC3339),
		Symbol:     tr.Symbol,
		Side:       string(tr.Side),
		EntryPrice: formatFloat(tr.EntryPrice),
		ExitTime:   formatTimePtr(tr.ExitTime),
		ExitPrice:  formatFloatPtr(tr.ExitPrice),
		Quantity:   formatFloat(tr.Quantity),
		Pnl:        formatFloatPtr(tr.Pnl),
		ReturnPct:  formatFloatPtr(tr.ReturnPct),
		OrderID:    tr.OrderID,
		Status:     tr.Status,
	}
}

func (dto *TradeRecordDTO) ToTradeRecord() (*TradeRecord, error) {
	timestamp, err := time.Parse(time.RFC3339, dto.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid timestamp %q: %w", dto.Timestamp, err)
	}

	entryPrice, err := strconv.ParseFloat(dto.EntryPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid entry_price %q: %w", dto.EntryPrice, err)
	}

	quantity, err := strconv.ParseFloat(dto.Quantity, 64)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid quantity %q: %w", dto.Quantity, err)
	}

	exitTime, err := parseTimePtr(dto.ExitTime)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid exit_time %q: %w", dto.ExitTime, err)
	}

	exitPrice, err := parseFloatPtr(dto.ExitPrice)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid exit_price %q: %w", dto.ExitPrice, err)
	}

	pnl, err := parseFloatPtr(dto.Pnl)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid pnl %q: %w", dto.Pnl, err)
	}

	returnPct, err := parseFloatPtr(dto.ReturnPct)
	if err != nil {
		return nil, fmt.Errorf("ToTradeRecord: invalid return_pct %q: %w", dto.ReturnPct, err)
	}

	return &TradeRecord{
		Timestamp:  timestamp,
		Symbol:     dto.Symbol,
		Side:       TradeSide(dto.Side),
		EntryPrice: entryPrice,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		Quantity:   quantity,
		Pnl:        pnl,
		ReturnPct:  returnPct,
		OrderID:    dto.OrderID,
		Status:     dto.Status,
	}, nil
}

// SaveLedgerCsv writes the ledger to a CSV file, header included. An empty
// ledger still produces a headered file so downstream tooling can tell
// "no trades" apart from "no run".
func SaveLedgerCsv(filepath string, records []*TradeRecord) error {
	dtos := []*TradeRecordDTO{}
	for _, r := range records {
		dtos = append(dtos, r.ToDTO())
	}

	f, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("SaveLedgerCsv: failed to create %s: %w", filepath, err)
	}

	defer f.Close()

	if err := gocsv.MarshalFile(&dtos, f); err != nil {
		return fmt.Errorf("SaveLedgerCsv: failed to write %s: %w", filepath, err)
	}

	return nil
}

// LoadLedgerCsv reads a trade log back. A missing or empty file is an error
// at validation time, never silently zero trades.
func LoadLedgerCsv(filepath string) ([]*TradeRecord, error) {
	f, err := os.Open(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", LedgerNotFoundErr, filepath)
		}

		return nil, fmt.Errorf("LoadLedgerCsv: failed to open %s: %w", filepath, err)
	}

	defer f.Close()

	var dtos []*TradeRecordDTO
	if err := gocsv.UnmarshalFile(f, &dtos); err != nil {
		return nil, fmt.Errorf("LoadLedgerCsv: failed to parse %s: %w", filepath, err)
	}

	if len(dtos) == 0 {
		return nil, fmt.Errorf("%w: %s", EmptyLedgerErr, filepath)
	}

	records := make([]*TradeRecord, 0, len(dtos))
	for _, dto := range dtos {
		record, err := dto.ToTradeRecord()
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}
