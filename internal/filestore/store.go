// Package filestore keeps positions and option positions in a local JSON file.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

type document struct {
	Acoes  map[string]positionRecord `json:"acoes"`
	Opcoes map[string]optionRecord   `json:"opcoes"`
}

// Numeric fields hold a json.Number or a locale string typed by hand.
type positionRecord struct {
	PrecoMedio any `json:"preco_medio"`
	PrecoTeto  any `json:"preco_teto"`
}

type optionRecord struct {
	Base             string `json:"base"`
	Tipo             string `json:"tipo"`
	Vencimento       string `json:"vencimento"`
	Strike           any    `json:"strike"`
	PrecoMedio       any    `json:"preco_medio"`
	PrecoObjetivo    any    `json:"preco_objetivo"`
	UltimoFechamento any    `json:"ultimo_fechamento,omitempty"`
}

// Store reads and rewrites the whole file on every call
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// New returns a Store for path. The file is created on first write.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// ListPositions returns all positions sorted by code
func (s *Store) ListPositions(ctx context.Context) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Position, 0, len(doc.Acoes))
	for code, r := range doc.Acoes {
		out = append(out, s.position(code, r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// GetPosition returns the position for code
func (s *Store) GetPosition(ctx context.Context, code string) (*models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	code = ticker.Normalize(code)
	r, ok := doc.Acoes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	p := s.position(code, r)
	return &p, nil
}

// SavePosition inserts or replaces the entry for the position's code
func (s *Store) SavePosition(ctx context.Context, p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	p.Code = ticker.Normalize(p.Code)
	doc.Acoes[p.Code] = positionRecord{
		PrecoMedio: number(p.AvgPrice),
		PrecoTeto:  number(p.TargetPrice),
	}
	return s.save(doc)
}

// DeletePosition removes the entry for code
func (s *Store) DeletePosition(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	code = ticker.Normalize(code)
	if _, ok := doc.Acoes[code]; !ok {
		return fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	delete(doc.Acoes, code)
	return s.save(doc)
}

// ListOptions returns all option positions sorted by code
func (s *Store) ListOptions(ctx context.Context) ([]models.OptionPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.OptionPosition, 0, len(doc.Opcoes))
	for code, r := range doc.Opcoes {
		o := models.OptionPosition{
			Code:           code,
			UnderlyingCode: r.Base,
			OptionType:     r.Tipo,
			Strike:         s.stored(code, "strike", r.Strike),
			PremiumPaid:    s.stored(code, "preco_medio", r.PrecoMedio),
			TargetPrice:    s.stored(code, "preco_objetivo", r.PrecoObjetivo),
		}
		if r.UltimoFechamento != nil && r.UltimoFechamento != "" {
			last := s.stored(code, "ultimo_fechamento", r.UltimoFechamento)
			o.LastClose = &last
		}
		if r.Vencimento != "" {
			expiry, err := time.Parse(models.DateLayout, r.Vencimento)
			if err != nil {
				s.logger.Warn("unreadable option expiry", zap.String("code", code), zap.Error(err))
			}
			o.ExpiryDate = expiry
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// SaveOption inserts or replaces the entry for the option's code
func (s *Store) SaveOption(ctx context.Context, o *models.OptionPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	r := optionRecord{
		Base:          ticker.Normalize(o.UnderlyingCode),
		Tipo:          o.OptionType,
		Vencimento:    o.ExpiryDate.Format(models.DateLayout),
		Strike:        number(o.Strike),
		PrecoMedio:    number(o.PremiumPaid),
		PrecoObjetivo: number(o.TargetPrice),
	}
	if o.LastClose != nil {
		r.UltimoFechamento = number(*o.LastClose)
	}
	doc.Opcoes[ticker.Normalize(o.Code)] = r
	return s.save(doc)
}

// DeleteOption removes the entry for code
func (s *Store) DeleteOption(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	code = ticker.Normalize(code)
	if _, ok := doc.Opcoes[code]; !ok {
		return fmt.Errorf("%w: %s", models.ErrOptionNotFound, code)
	}
	delete(doc.Opcoes, code)
	return s.save(doc)
}

func (s *Store) position(code string, r positionRecord) models.Position {
	return models.Position{
		Code:        code,
		AvgPrice:    s.stored(code, "preco_medio", r.PrecoMedio),
		TargetPrice: s.stored(code, "preco_teto", r.PrecoTeto),
	}
}

// stored reads a hand-editable number, treating garbage as zero
func (s *Store) stored(code, field string, v any) decimal.Decimal {
	d, err := locale.ParseValue(v)
	if err != nil {
		s.logger.Warn("unreadable number in store file, using zero",
			zap.String("code", code), zap.String("field", field), zap.Error(err))
		return decimal.Zero
	}
	return d
}

func (s *Store) load() (*document, error) {
	doc := &document{}

	b, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	case len(bytes.TrimSpace(b)) > 0:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to parse store file %s: %w", s.path, err)
		}
	}

	doc.normalize()
	return doc, nil
}

// normalize re-keys hand-edited entries so lookups and fetches see full codes
func (d *document) normalize() {
	acoes := make(map[string]positionRecord, len(d.Acoes))
	for code, r := range d.Acoes {
		if code = ticker.Normalize(code); code != "" {
			acoes[code] = r
		}
	}
	opcoes := make(map[string]optionRecord, len(d.Opcoes))
	for code, r := range d.Opcoes {
		if code = ticker.Normalize(code); code != "" {
			r.Base = ticker.Normalize(r.Base)
			opcoes[code] = r
		}
	}
	d.Acoes, d.Opcoes = acoes, opcoes
}

// save writes to a temp file in the same directory and renames it over the target
func (s *Store) save(doc *document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store file: %w", err)
	}

	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync temp store file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
