package market

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Number is a provider numeric field. Suspended or delisted instruments come
// back with null or "-" instead of a number; both decode as absent.
type Number struct {
	Value float64
	Valid bool
}

func Num(v float64) Number { return Number{Value: v, Valid: true} }

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = Number{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("number field: %w", err)
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*n = Num(v)
		}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("number field %s: %w", b, err)
	}
	*n = Num(v)
	return nil
}

// RawQuote mirrors one element of the provider's data.diff array.
type RawQuote struct {
	Code              string `json:"f12"`
	Market            int    `json:"f13"`
	Title             string `json:"f14"`
	Price             Number `json:"f2"`
	PercentChange     Number `json:"f3"`
	Change            Number `json:"f4"`
	Volume            Number `json:"f5"`
	Amount            Number `json:"f6"`
	Amplitude         Number `json:"f7"`
	TurnoverRate      Number `json:"f8"`
	PE                Number `json:"f9"`
	VolumeRatio       Number `json:"f10"`
	FiveMinutePercent Number `json:"f11"`
	High              Number `json:"f15"`
	Low               Number `json:"f16"`
	Open              Number `json:"f17"`
	PrevClose         Number `json:"f18"`
	TotalValue        Number `json:"f20"`
	CirculatingValue  Number `json:"f21"`
	Speed             Number `json:"f22"`
	PB                Number `json:"f23"`
	SixtyDayPercent   Number `json:"f24"`
	YearToDatePercent Number `json:"f25"`
}

// QuoteFields is the f-code selector sent with every batch request. It lists
// every field RawQuote decodes.
const QuoteFields = "f2,f3,f4,f5,f6,f7,f8,f9,f10,f11,f12,f13,f14,f15,f16,f17,f18,f20,f21,f22,f23,f24,f25"

const percentExp = 2

// priceExp is the number of implied decimals in price-like fields. Hong Kong
// (116), the US segments (105-107) and London (155) carry three; everything
// else carries two.
func priceExp(mkt int) int32 {
	if mkt == 116 || (mkt >= 105 && mkt <= 107) || mkt == 155 {
		return 3
	}
	return 2
}

// PriceDivisor reports the divisor applied to price-like fields for a market code.
func PriceDivisor(mkt int) float64 {
	return math.Pow10(int(priceExp(mkt)))
}

func shift(n Number, exp int32) float64 {
	if !n.Valid {
		return 0
	}
	return decimal.NewFromFloat(n.Value).Shift(-exp).InexactFloat64()
}

// Normalize converts a raw record into a Quote. The divisor depends only on
// the record's own market code, never on the secid that was requested.
func Normalize(raw RawQuote) Quote {
	px := priceExp(raw.Market)
	return Quote{
		Code:              raw.Code,
		Title:             raw.Title,
		Price:             shift(raw.Price, px),
		PercentChange:     shift(raw.PercentChange, percentExp),
		Change:            shift(raw.Change, px),
		Amplitude:         shift(raw.Amplitude, percentExp),
		Open:              shift(raw.Open, px),
		PrevClose:         shift(raw.PrevClose, px),
		High:              shift(raw.High, px),
		Low:               shift(raw.Low, px),
		Volume:            shift(raw.Volume, 0),
		Amount:            shift(raw.Amount, 0),
		TurnoverRate:      shift(raw.TurnoverRate, percentExp),
		PE:                shift(raw.PE, percentExp),
		PB:                shift(raw.PB, percentExp),
		VolumeRatio:       shift(raw.VolumeRatio, percentExp),
		FiveMinutePercent: shift(raw.FiveMinutePercent, percentExp),
		TotalValue:        shift(raw.TotalValue, 0),
		CirculatingValue:  shift(raw.CirculatingValue, 0),
		Speed:             shift(raw.Speed, percentExp),
		SixtyDayPercent:   shift(raw.SixtyDayPercent, percentExp),
		YearToDatePercent: shift(raw.YearToDatePercent, percentExp),
	}
}
