package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/alert"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/options"
	"github.com/trogers1052/carteira-dashboard/internal/quotes"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

// OptionCard is the rendered view of one option position
type OptionCard struct {
	Code            string               `json:"codigo"`
	Underlying      string               `json:"base"`
	OptionType      string               `json:"tipo"`
	Expiry          string               `json:"vencimento"`
	DaysToExpiry    int                  `json:"dias_para_vencimento"`
	Strike          string               `json:"strike"`
	PremiumPaid     string               `json:"preco_medio"`
	TargetPrice     string               `json:"preco_objetivo"`
	LastClose       string               `json:"ultimo_fechamento"`
	UnderlyingPrice string               `json:"preco_base"`
	IntrinsicValue  string               `json:"valor_intrinseco"`
	Classification  alert.Classification `json:"classificacao"`
	Label           string               `json:"alerta"`
	Color           string               `json:"cor"`
	Available       bool                 `json:"disponivel"`
	Error           string               `json:"erro,omitempty"`
}

// DecodeOption decodes code relative to the service clock
func (s *Service) DecodeOption(code string) (*options.Contract, error) {
	return options.Decode(code, s.now())
}

// ListOptions returns the stored option positions
func (s *Service) ListOptions(ctx context.Context) ([]models.OptionPosition, error) {
	if s.options == nil {
		return nil, ErrOptionsDisabled
	}
	out, err := s.options.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list option positions: %w", err)
	}
	return out, nil
}

// AddOption decodes code and stores the option with the given prices.
// An empty base uses the root of the code.
func (s *Service) AddOption(ctx context.Context, code, base, premium, target string) (*models.OptionPosition, error) {
	if s.options == nil {
		return nil, ErrOptionsDisabled
	}
	contract, err := s.DecodeOption(code)
	if err != nil {
		return nil, err
	}
	paid, err := parsePrice("preco_medio", premium)
	if err != nil {
		return nil, err
	}
	objective, err := parsePrice("preco_objetivo", target)
	if err != nil {
		return nil, err
	}

	o := contract.Position(base, paid, objective)
	if err := s.options.SaveOption(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to save option position: %w", err)
	}
	s.logger.Info("option saved", zap.String("code", o.Code), zap.String("type", o.OptionType))

	s.publish(models.EventOptionSaved, o.Code, func(e EventPublisher) error {
		return e.PublishOptionSaved(ctx, o)
	})
	return o, nil
}

// RemoveOption deletes the option for code
func (s *Service) RemoveOption(ctx context.Context, code string) error {
	if s.options == nil {
		return ErrOptionsDisabled
	}
	code = ticker.Normalize(code)
	if err := s.options.DeleteOption(ctx, code); err != nil {
		return err
	}
	s.logger.Info("option removed", zap.String("code", code))

	s.publish(models.EventOptionDeleted, code, func(e EventPublisher) error {
		return e.PublishOptionDeleted(ctx, code)
	})
	return nil
}

// OptionCards fetches option and underlying closes in one batch and values
// each contract. Records whose code no longer decodes get a card carrying
// the error and take no part in the fetch.
func (s *Service) OptionCards(ctx context.Context) ([]OptionCard, error) {
	stored, err := s.ListOptions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cards := make([]OptionCard, len(stored))
	valid := make([]bool, len(stored))

	var codes []string
	seen := make(map[string]bool)
	want := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	for i := range stored {
		o := &stored[i]
		contract, err := options.Decode(o.Code, now)
		if err != nil {
			s.logger.Warn("skipping malformed option code", zap.String("code", o.Code), zap.Error(err))
			cards[i] = OptionCard{
				Code:           ticker.Display(o.Code),
				Underlying:     ticker.Display(o.UnderlyingCode),
				Classification: alert.Unknown,
				Label:          alert.Unknown.Label(),
				Color:          alert.Unknown.Color(),
				Error:          err.Error(),
			}
			continue
		}
		o.OptionType = contract.OptionType
		if o.ExpiryDate.IsZero() {
			o.ExpiryDate = contract.Expiry
		}
		if o.Strike.IsZero() {
			o.Strike = contract.Strike
		}
		valid[i] = true
		want(o.Code)
		want(o.UnderlyingCode)
	}

	byCode := map[string]quotes.Result{}
	if len(codes) > 0 {
		byCode = quotes.ByCode(s.quotes.FetchAll(ctx, codes))
	}

	for i := range stored {
		if !valid[i] {
			continue
		}
		o := &stored[i]
		cards[i] = s.optionCard(o, byCode[o.Code], byCode[o.UnderlyingCode], now)
		s.refreshLastClose(ctx, o, byCode[o.Code])
	}
	return cards, nil
}

func (s *Service) optionCard(o *models.OptionPosition, own, underlying quotes.Result, now time.Time) OptionCard {
	c := OptionCard{
		Code:         ticker.Display(o.Code),
		Underlying:   ticker.Display(o.UnderlyingCode),
		OptionType:   o.OptionType,
		Expiry:       o.ExpiryDate.Format(models.DateLayout),
		DaysToExpiry: daysUntil(now, o.ExpiryDate),
		Strike:       locale.Format(o.Strike),
		PremiumPaid:  locale.Format(o.PremiumPaid),
		TargetPrice:  locale.Format(o.TargetPrice),
	}

	last := o.LastClose
	if own.Snapshot != nil && own.Snapshot.CurrentPrice != nil {
		last = own.Snapshot.CurrentPrice
	}
	if own.Err != nil {
		c.Error = own.Err.Error()
	}

	var spot *decimal.Decimal
	if underlying.Snapshot != nil {
		spot = underlying.Snapshot.CurrentPrice
	}
	if spot != nil {
		iv := o.IntrinsicValue(*spot)
		c.IntrinsicValue = locale.Format(iv)
	} else {
		c.IntrinsicValue = locale.Unavailable
		if c.Error == "" && underlying.Err != nil {
			c.Error = underlying.Err.Error()
		}
	}

	target := o.TargetPrice
	c.Available = last != nil
	c.LastClose = locale.FormatOptional(last)
	c.UnderlyingPrice = locale.FormatOptional(spot)
	c.Classification = alert.Classify(last, &target)
	c.Label = c.Classification.Label()
	c.Color = c.Classification.Color()
	return c
}

// refreshLastClose stores a newly fetched option close on the record
func (s *Service) refreshLastClose(ctx context.Context, o *models.OptionPosition, r quotes.Result) {
	if !r.OK() || r.Snapshot.Stale || r.Snapshot.CurrentPrice == nil {
		return
	}
	fresh := *r.Snapshot.CurrentPrice
	if o.LastClose != nil && o.LastClose.Equal(fresh) {
		return
	}
	o.LastClose = &fresh
	if err := s.options.SaveOption(ctx, o); err != nil {
		s.logger.Warn("failed to store option close", zap.String("code", o.Code), zap.Error(err))
	}
}

func daysUntil(now, expiry time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(day.Sub(today).Hours() / 24))
}
