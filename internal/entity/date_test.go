package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(time.UnixMilli(1517644800123))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"Sat, 03 Feb 2018 08:00:00 GMT"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, d.Equal(back.Time))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2019, 5, 4, 5, 48, 15, 0, time.UTC)

	for _, s := range []string{
		"Sat, 04 May 2019 05:48:15 GMT",
		"2019-05-04T05:48:15Z",
		"2019-05-04T07:48:15+02:00",
		"2019-05-04T05:48:15.861Z",
	} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(d.Time), "%s parsed as %s", s, d)
		assert.Equal(t, time.UTC, d.Location())
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}

func TestAccountJSON(t *testing.T) {
	raw := []byte(`{"accountId":"123","name":"Kevin","balance":100,"lastUpdate":"Sat, 03 Feb 2018 08:00:00 GMT"}`)

	var account Account
	require.NoError(t, json.Unmarshal(raw, &account))
	assert.Equal(t, "123", account.AccountID)
	assert.True(t, decimal.NewFromInt(100).Equal(account.Balance))
	assert.Equal(t, "Sat, 03 Feb 2018 08:00:00 GMT", account.LastUpdate.String())
}
