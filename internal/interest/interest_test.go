package interest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int64
	}{
		{"same instant", date("2018-02-03T00:00:00Z"), date("2018-02-03T00:00:00Z"), 0},
		{"same day different hours", date("2018-02-03T00:00:01Z"), date("2018-02-03T23:59:59Z"), 0},
		{"crosses one midnight", date("2018-02-03T23:59:59Z"), date("2018-02-04T00:00:00Z"), 1},
		{"fixture period", time.UnixMilli(1517644800000), time.UnixMilli(1556948895861), 455},
		{"backwards", date("2018-02-04T10:00:00Z"), date("2018-02-03T10:00:00Z"), -1},
		{"offset zone normalized to UTC", date("2018-02-03T23:30:00-02:00"), date("2018-02-04T02:00:00Z"), 0},
		{"before epoch", date("1969-12-31T12:00:00Z"), date("1970-01-01T12:00:00Z"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.start, tt.end))
		})
	}
}

func TestYearFraction(t *testing.T) {
	tests := []struct {
		days int64
		want string
	}{
		{0, "0"},
		{1, "0"},
		{3, "0"},
		{4, "0.01"},
		{365, "1"},
		{455, "1.24"},
		{1679, "4.6"},
		// exact: 299300/365 is 820, a float d/365*100 lands just below it
		{2993, "8.2"},
		{-1, "-0.01"},
	}

	for _, tt := range tests {
		assert.True(t, decimal.RequireFromString(tt.want).Equal(YearFraction(tt.days)),
			"days=%d got=%s want=%s", tt.days, YearFraction(tt.days), tt.want)
	}
}

func TestCalculate(t *testing.T) {
	created := time.UnixMilli(1517644800000)
	later := time.UnixMilli(1556948895861)

	tests := []struct {
		name    string
		balance string
		start   time.Time
		end     time.Time
		want    string
	}{
		{"fixture deposit", "200", created, later, "4.96"},
		{"same day is zero", "304.96", later, later.Add(time.Hour), "0"},
		{"zero balance", "0", created, later, "0"},
		{"one year", "1000", date("2020-01-01T00:00:00Z"), date("2020-12-31T00:00:00Z"), "20"},
		{"rounds to cents", "33.33", date("2020-01-01T00:00:00Z"), date("2020-12-31T00:00:00Z"), "0.67"},
		{"backwards is negative", "1000", date("2021-01-01T00:00:00Z"), date("2020-01-01T00:00:00Z"), "-20.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(decimal.RequireFromString(tt.balance), tt.start, tt.end)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}
