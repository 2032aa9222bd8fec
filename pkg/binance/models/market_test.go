package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookDecode(t *testing.T) {
	raw := `{"lastUpdateId":1027024,"bids":[["4.00000000","431.00000000"]],"asks":[["4.00000200","12.00000000"],["4.1","1"]]}`

	var ob OrderBook
	require.NoError(t, json.Unmarshal([]byte(raw), &ob))
	assert.Equal(t, int64(1027024), ob.LastUpdateID)
	require.Len(t, ob.Bids, 1)
	require.Len(t, ob.Asks, 2)
	assert.True(t, ob.Bids[0].Price.Equal(decimal.NewFromInt(4)))
	assert.True(t, ob.Bids[0].Quantity.Equal(decimal.NewFromInt(431)))
	assert.Equal(t, "4.000002", ob.Asks[0].Price.String())
}

func TestPriceLevelRejectsWrongArity(t *testing.T) {
	var p PriceLevel
	assert.Error(t, json.Unmarshal([]byte(`["1"]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"price":"1"}`), &p))
}

func TestPriceLevelMarshal(t *testing.T) {
	out, err := json.Marshal(PriceLevel{Price: decimal.RequireFromString("1.5"), Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `["1.5","2"]`, string(out))
}

func TestKlineSummaryFromRow(t *testing.T) {
	raw := `[1499040000000,"0.01634790","0.80000000","0.01575800","0.01577100","148976.11427815",1499644799999,"2434.19055334",308,"1756.87402397","28.46694368","0"]`

	var row []interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	k, err := KlineSummaryFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, int64(1499040000000), k.OpenTime)
	assert.Equal(t, int64(1499644799999), k.CloseTime)
	assert.Equal(t, int64(308), k.NumberOfTrades)
	assert.Equal(t, "0.0163479", k.Open.String())
	assert.Equal(t, "28.46694368", k.TakerBuyQuoteAssetVolume.String())
}

func TestKlineSummaryFromRowErrors(t *testing.T) {
	_, err := KlineSummaryFromRow([]interface{}{1, "2"})
	assert.Error(t, err)

	row := []interface{}{"x", "1", "1", "1", "1", "1", 2, "1", 3, "1", "1"}
	_, err = KlineSummaryFromRow(row)
	assert.Error(t, err)

	row = []interface{}{1, "abc", "1", "1", "1", "1", 2, "1", 3, "1", "1"}
	_, err = KlineSummaryFromRow(row)
	assert.Error(t, err)
}
