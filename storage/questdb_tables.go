package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riven-blade/binance-cex/pkg/binance/stream"
)

// table QuestDB 表定义，columns 与 ddl 中的列顺序一致
type table struct {
	name    string
	columns []string
	ddl     string
}

var (
	tradesTable = table{
		name:    "trades",
		columns: []string{"symbol", "trade_id", "price", "quantity", "buyer_maker", "ts"},
		ddl: `CREATE TABLE IF NOT EXISTS trades (
			symbol      SYMBOL,
			trade_id    LONG,
			price       DOUBLE,
			quantity    DOUBLE,
			buyer_maker BOOLEAN,
			ts          TIMESTAMP
		) TIMESTAMP(ts) PARTITION BY DAY
		DEDUP UPSERT KEYS(ts, symbol, trade_id);`,
	}

	aggTradesTable = table{
		name:    "agg_trades",
		columns: []string{"symbol", "agg_trade_id", "price", "quantity", "first_trade_id", "last_trade_id", "buyer_maker", "ts"},
		ddl: `CREATE TABLE IF NOT EXISTS agg_trades (
			symbol         SYMBOL,
			agg_trade_id   LONG,
			price          DOUBLE,
			quantity       DOUBLE,
			first_trade_id LONG,
			last_trade_id  LONG,
			buyer_maker    BOOLEAN,
			ts             TIMESTAMP
		) TIMESTAMP(ts) PARTITION BY DAY
		DEDUP UPSERT KEYS(ts, symbol, agg_trade_id);`,
	}

	klinesTable = table{
		name:    "klines",
		columns: []string{"symbol", "interval", "open_time", "close_time", "open", "high", "low", "close", "volume", "quote_volume", "trades"},
		ddl: `CREATE TABLE IF NOT EXISTS klines (
			symbol       SYMBOL,
			interval     SYMBOL,
			open_time    TIMESTAMP,
			close_time   TIMESTAMP,
			open         DOUBLE,
			high         DOUBLE,
			low          DOUBLE,
			close        DOUBLE,
			volume       DOUBLE,
			quote_volume DOUBLE,
			trades       LONG
		) TIMESTAMP(open_time) PARTITION BY DAY
		DEDUP UPSERT KEYS(open_time, symbol, interval);`,
	}

	bookTickersTable = table{
		name:    "book_tickers",
		columns: []string{"symbol", "update_id", "bid_price", "bid_qty", "ask_price", "ask_qty", "ts"},
		ddl: `CREATE TABLE IF NOT EXISTS book_tickers (
			symbol    SYMBOL,
			update_id LONG,
			bid_price DOUBLE,
			bid_qty   DOUBLE,
			ask_price DOUBLE,
			ask_qty   DOUBLE,
			ts        TIMESTAMP
		) TIMESTAMP(ts) PARTITION BY DAY
		DEDUP UPSERT KEYS(ts, symbol, update_id);`,
	}

	allTables = []table{tradesTable, aggTradesTable, klinesTable, bookTickersTable}
)

// row 待写入的一行
type row struct {
	table  table
	values []interface{}
}

// rowsFor 把事件转换为行，不落地的事件返回 nil
// 只写入已收盘的 K 线；bookTicker 没有事件时间，使用接收时间
func rowsFor(ev stream.Event, received time.Time) []row {
	switch e := ev.(type) {
	case stream.TradeEvent:
		return []row{{tradesTable, []interface{}{
			e.Symbol, e.TradeID, f64(e.Price), f64(e.Quantity), e.IsBuyerMaker, millis(e.TradeTime),
		}}}
	case stream.AggrTradesEvent:
		return []row{{aggTradesTable, []interface{}{
			e.Symbol, e.AggTradeID, f64(e.Price), f64(e.Quantity), e.FirstTradeID, e.LastTradeID, e.IsBuyerMaker, millis(e.TradeTime),
		}}}
	case stream.KlineEvent:
		k := e.Kline
		if !k.IsFinal {
			return nil
		}
		return []row{{klinesTable, []interface{}{
			k.Symbol, k.Interval, millis(k.StartTime), millis(k.CloseTime),
			f64(k.Open), f64(k.High), f64(k.Low), f64(k.Close), f64(k.Volume), f64(k.QuoteAssetVolume), k.NumberOfTrades,
		}}}
	case stream.BookTickerEvent:
		return []row{{bookTickersTable, []interface{}{
			e.Symbol, e.UpdateID, f64(e.BidPrice), f64(e.BidQty), f64(e.AskPrice), f64(e.AskQty), received.UTC(),
		}}}
	default:
		return nil
	}
}

// buildInsert 多行 INSERT，占位符从 $1 开始连续编号
func buildInsert(t table, rows [][]interface{}) (string, []interface{}) {
	width := len(t.columns)
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*width)

	for i, r := range rows {
		placeholders := make([]string, width)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*width+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, r...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		t.name, strings.Join(t.columns, ", "), strings.Join(values, ", "))
	return query, args
}

func f64(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func millis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
