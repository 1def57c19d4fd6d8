package models

import "fmt"

var UnknownTimeframeErr = fmt.Errorf("unknown timeframe format")
var NoOpenTradeErr = fmt.Errorf("no open trade to exit")
var OpenTradeExistsErr = fmt.Errorf("an open trade already exists")
var EmptyLedgerErr = fmt.Errorf("ledger contains no trade records")
var LedgerNotFoundErr = fmt.Errorf("ledger file not found")
var CandlesOutOfOrderErr = fmt.Errorf("candles are not in strictly increasing time order")
var PriceRequiredErr = fmt.Errorf("price required for limit orders")
