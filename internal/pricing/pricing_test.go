package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

func defaultPricing() config.Pricing {
	return config.Pricing{
		CongressYear:           2026,
		EarlyBirdCutoff:        "2026-05-15",
		Timezone:               "Asia/Seoul",
		RegularEarlyBird:       240,
		RegularFull:            300,
		StudentEarlyBird:       120,
		StudentFull:            150,
		MembershipProfessional: 250,
		MembershipStudent:      150,
		Tolerance:              5,
	}
}

func newPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := New(defaultPricing())
	require.NoError(t, err)
	return p
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Pricing)
	}{
		{name: "bad timezone", mutate: func(c *config.Pricing) { c.Timezone = "Mars/Olympus" }},
		{name: "bad cutoff", mutate: func(c *config.Pricing) { c.EarlyBirdCutoff = "15.05.2026" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultPricing()
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestQuote_Cutoff(t *testing.T) {
	p := newPolicy(t)
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	lastInstant := time.Date(2026, 5, 15, 23, 59, 59, 999999999, seoul)

	tests := []struct {
		name      string
		tier      models.TicketType
		asOf      time.Time
		wantPrice int64
		wantEarly bool
	}{
		{name: "regular well before", tier: models.TicketRegular, asOf: time.Date(2026, 1, 1, 0, 0, 0, 0, seoul), wantPrice: 240, wantEarly: true},
		{name: "regular at cutoff instant", tier: models.TicketRegular, asOf: lastInstant, wantPrice: 240, wantEarly: true},
		{name: "regular just after cutoff", tier: models.TicketRegular, asOf: lastInstant.Add(time.Nanosecond), wantPrice: 300, wantEarly: false},
		{name: "student on cutoff day morning", tier: models.TicketStudent, asOf: time.Date(2026, 5, 15, 9, 0, 0, 0, seoul), wantPrice: 120, wantEarly: true},
		{name: "student after cutoff", tier: models.TicketStudent, asOf: time.Date(2026, 6, 1, 0, 0, 0, 0, seoul), wantPrice: 150, wantEarly: false},
		// 15:00 UTC 15 мая это уже 16 мая в Сеуле
		{name: "utc evening is next day in seoul", tier: models.TicketRegular, asOf: time.Date(2026, 5, 15, 15, 0, 0, 0, time.UTC), wantPrice: 300, wantEarly: false},
		{name: "utc afternoon still on cutoff day", tier: models.TicketRegular, asOf: time.Date(2026, 5, 15, 14, 59, 59, 0, time.UTC), wantPrice: 240, wantEarly: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := p.Quote(tt.tier, tt.asOf)
			assert.Equal(t, tt.tier, q.Tier)
			assert.True(t, q.Price.Equal(decimal.NewFromInt(tt.wantPrice)), "price %s", q.Price)
			assert.Equal(t, tt.wantEarly, q.IsEarlyBird)
			assert.True(t, q.Cutoff.Equal(lastInstant))
		})
	}
}

func TestQuote_Deterministic(t *testing.T) {
	p := newPolicy(t)
	asOf := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, p.Quote(models.TicketRegular, asOf), p.Quote(models.TicketRegular, asOf))
}

func TestQuote_FlipsOnce(t *testing.T) {
	p := newPolicy(t)
	start := p.Cutoff().Add(-48 * time.Hour)
	flips := 0
	prev := p.Quote(models.TicketStudent, start).IsEarlyBird
	for ts := start; ts.Before(p.Cutoff().Add(48 * time.Hour)); ts = ts.Add(17 * time.Minute) {
		cur := p.Quote(models.TicketStudent, ts).IsEarlyBird
		if cur != prev {
			flips++
			assert.False(t, cur)
		}
		prev = cur
	}
	assert.Equal(t, 1, flips)
}

func TestQuote_UnknownTierPanics(t *testing.T) {
	p := newPolicy(t)
	assert.Panics(t, func() { p.Quote(models.TicketWAHSMember, time.Now()) })
	assert.Panics(t, func() { p.Quote("vip", time.Now()) })
	assert.False(t, p.Supports(models.TicketWAHSMember))
	assert.True(t, p.Supports(models.TicketStudent))
}

func TestQuoteNow_UsesClock(t *testing.T) {
	p := newPolicy(t)
	p.now = func() time.Time { return p.Cutoff().Add(time.Hour) }
	q := p.QuoteNow(models.TicketRegular)
	assert.False(t, q.IsEarlyBird)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(300)))
}

func TestIsMembershipAmount_ToleranceBand(t *testing.T) {
	p := newPolicy(t)
	tests := []struct {
		amount string
		want   bool
	}{
		{"250", true},
		{"245", true},
		{"255", true},
		{"244.99", false},
		{"255.01", false},
		{"150.00", true},
		{"146", true},
		{"99", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsMembershipAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestIsCongressAmount(t *testing.T) {
	p := newPolicy(t)
	tests := []struct {
		amount string
		want   bool
	}{
		{"240", true},
		{"300", true},
		{"120", true},
		{"150", true},
		{"304.5", true},
		{"235", true},
		{"234.99", false},
		{"200", false},
		{"1", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsCongressAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestMembershipPrice(t *testing.T) {
	p := newPolicy(t)
	price, ok := p.MembershipPrice(models.MembershipProfessional)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(250)))

	_, ok = p.MembershipPrice("honorary")
	assert.False(t, ok)
}
