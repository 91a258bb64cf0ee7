package helpers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/doped/schema"
)

var sample = []byte(`MSN,YYYYMM,Value,Column_Order,Description,Unit
CLPRBUS,197313,13992.07,1,Coal Production,Trillion Btu
CLIMBUS,197313,Not Available,2,Coal Imports,Trillion Btu
CLEXBUS,197313," 1,425.63 ",3,Coal Exports,Trillion Btu
BROKEN,197313
NUETBUS,197401,,4,Nuclear Electric Power Production,Trillion Btu
`)

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords(sample, schema.DefaultLayout)
	require.NoError(t, err)
	require.Len(t, records, 4, "short row is skipped")

	assert.Equal(t, "197313", records[0].Period)
	assert.Equal(t, 13992.07, records[0].Value)
	assert.Equal(t, "Coal Production", records[0].Description)

	assert.True(t, math.IsNaN(records[1].Value), "Not Available becomes NaN")
	assert.Equal(t, 1425.63, records[2].Value)
	assert.True(t, math.IsNaN(records[3].Value), "empty becomes NaN")
}

func TestParseRecordsMissingColumn(t *testing.T) {
	_, err := ParseRecords([]byte("YYYYMM,Value\n197313,1\n"), schema.DefaultLayout)
	assert.ErrorIs(t, err, schema.ErrMissingColumn)

	_, err = ParseRecords(sample, schema.Layout{Period: "YYYYMM"})
	assert.ErrorIs(t, err, schema.ErrMissingColumn)

	_, err = ParseRecords(nil, schema.DefaultLayout)
	assert.Error(t, err)
}

func TestParseRecordsAuto(t *testing.T) {
	records, layout, err := ParseRecordsAuto(sample)
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultLayout, layout)
	assert.Len(t, records, 4)
}

func TestParseRecordsView(t *testing.T) {
	view, err := ParseRecordsView(sample, schema.DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Len())
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, -3.5, ParseValue(" -3.5 "))
	assert.Equal(t, 1e3, ParseValue("1,000"))
	assert.True(t, math.IsNaN(ParseValue("NA")))
	assert.True(t, math.IsNaN(ParseValue("")))
}
