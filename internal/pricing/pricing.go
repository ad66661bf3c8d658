// Package pricing вычисляет стоимость билетов на конгресс с учётом
// раннего бронирования и проверяет попадание суммы платежа в ценовые диапазоны.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// Quote цена билета на момент asOf.
type Quote struct {
	Tier        models.TicketType `json:"tier"`
	Price       decimal.Decimal   `json:"price"`
	IsEarlyBird bool              `json:"is_early_bird"`
	Cutoff      time.Time         `json:"early_bird_cutoff"`
}

type tierPrices struct {
	earlyBird decimal.Decimal
	full      decimal.Decimal
}

// Policy хранит цены и момент окончания раннего бронирования.
// Все методы чистые: результат зависит только от аргументов.
type Policy struct {
	cutoff     time.Time
	tiers      map[models.TicketType]tierPrices
	membership map[models.MembershipType]decimal.Decimal
	tolerance  decimal.Decimal
	now        func() time.Time
}

// New собирает Policy из секции конфигурации pricing.
// Дата отсечки включительная: ранняя цена действует до конца дня по местному времени.
func New(cfg config.Pricing) (*Policy, error) {
	const op = "pricing.New"

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	day, err := time.ParseInLocation(time.DateOnly, cfg.EarlyBirdCutoff, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Policy{
		cutoff: day.AddDate(0, 0, 1).Add(-time.Nanosecond),
		tiers: map[models.TicketType]tierPrices{
			models.TicketRegular: {
				earlyBird: decimal.NewFromFloat(cfg.RegularEarlyBird),
				full:      decimal.NewFromFloat(cfg.RegularFull),
			},
			models.TicketStudent: {
				earlyBird: decimal.NewFromFloat(cfg.StudentEarlyBird),
				full:      decimal.NewFromFloat(cfg.StudentFull),
			},
		},
		membership: map[models.MembershipType]decimal.Decimal{
			models.MembershipProfessional: decimal.NewFromFloat(cfg.MembershipProfessional),
			models.MembershipStudent:      decimal.NewFromFloat(cfg.MembershipStudent),
		},
		tolerance: decimal.NewFromFloat(cfg.Tolerance),
		now:       time.Now,
	}, nil
}

// Cutoff возвращает последний момент, когда действует ранняя цена.
func (p *Policy) Cutoff() time.Time {
	return p.cutoff
}

// Tiers возвращает платные тарифы в фиксированном порядке.
func (p *Policy) Tiers() []models.TicketType {
	return []models.TicketType{models.TicketRegular, models.TicketStudent}
}

// Supports сообщает, есть ли у тарифа цена.
func (p *Policy) Supports(tier models.TicketType) bool {
	_, ok := p.tiers[tier]
	return ok
}

// Quote возвращает цену тарифа на момент asOf.
// Неизвестный тариф это ошибка программиста: функция паникует.
func (p *Policy) Quote(tier models.TicketType, asOf time.Time) Quote {
	prices, ok := p.tiers[tier]
	if !ok {
		panic(fmt.Sprintf("pricing: unknown tier %q", tier))
	}
	early := !asOf.After(p.cutoff)
	price := prices.full
	if early {
		price = prices.earlyBird
	}
	return Quote{
		Tier:        tier,
		Price:       price,
		IsEarlyBird: early,
		Cutoff:      p.cutoff,
	}
}

// QuoteNow возвращает цену тарифа на текущий момент.
func (p *Policy) QuoteNow(tier models.TicketType) Quote {
	return p.Quote(tier, p.now())
}

// MembershipPrice возвращает годовой взнос для типа членства.
func (p *Policy) MembershipPrice(t models.MembershipType) (decimal.Decimal, bool) {
	price, ok := p.membership[t]
	return price, ok
}

// Within сообщает, отличается ли amount от reference не более чем на допуск.
func (p *Policy) Within(amount, reference decimal.Decimal) bool {
	return amount.Sub(reference).Abs().LessThanOrEqual(p.tolerance)
}

// IsMembershipAmount проверяет попадание суммы в диапазон любого из взносов.
func (p *Policy) IsMembershipAmount(amount decimal.Decimal) bool {
	for _, t := range []models.MembershipType{models.MembershipProfessional, models.MembershipStudent} {
		if p.Within(amount, p.membership[t]) {
			return true
		}
	}
	return false
}

// IsCongressAmount проверяет попадание суммы в диапазон любой из четырёх цен билетов.
// Не зависит от текущей даты: платёж по ранней цене может прийти после отсечки.
func (p *Policy) IsCongressAmount(amount decimal.Decimal) bool {
	for _, tier := range p.Tiers() {
		prices := p.tiers[tier]
		if p.Within(amount, prices.earlyBird) || p.Within(amount, prices.full) {
			return true
		}
	}
	return false
}
