package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"production-tracking-service/internal/models"
)

// MemoryStore is a process-local Store used by tests and STORE_DRIVER=memory.
// Fetches return deep copies so callers never alias stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	orders  map[uuid.UUID]*models.PurchaseOrder
	byKey   map[string]uuid.UUID
	catalog map[string]models.CatalogEntry
	runs    map[uuid.UUID]models.ImportRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:  make(map[uuid.UUID]*models.PurchaseOrder),
		byKey:   make(map[string]uuid.UUID),
		catalog: make(map[string]models.CatalogEntry),
		runs:    make(map[uuid.UUID]models.ImportRun),
	}
}

func (s *MemoryStore) FetchPurchaseOrders(ctx context.Context, poKeys []string) ([]models.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PurchaseOrder, 0, len(poKeys))
	seen := make(map[uuid.UUID]bool)
	for _, k := range poKeys {
		id, ok := s.byKey[k]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, copyPurchaseOrder(s.orders[id]))
	}
	return out, nil
}

func (s *MemoryStore) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[po.POKey]; exists {
		return fmt.Errorf("purchase order %s already exists", po.PO)
	}
	now := time.Now()
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	po.CreatedAt, po.UpdatedAt = now, now
	for i := range po.Lines {
		prepareLine(&po.Lines[i], po.ID, now)
	}
	stored := copyPurchaseOrder(po)
	s.orders[po.ID] = &stored
	s.byKey[po.POKey] = po.ID
	return nil
}

func (s *MemoryStore) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	po, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "supplier":
			po.Supplier = v.(string)
		case "factory":
			po.Factory = v.(string)
		case "customer":
			po.Customer = v.(string)
		case "season":
			po.Season = v.(string)
		case "category":
			po.Category = v.(string)
		case "channel":
			po.Channel = v.(string)
		case "currency":
			po.Currency = v.(string)
		case "inspection_status":
			po.InspectionStatus = v.(string)
		case "po_date":
			po.PODate = timeValue(v)
		case "etd":
			po.ETD = timeValue(v)
		case "booking":
			po.Booking = timeValue(v)
		case "closing":
			po.Closing = timeValue(v)
		case "shipping_date":
			po.ShippingDate = timeValue(v)
		case "updated_at":
		default:
			return fmt.Errorf("unknown purchase order column %q", col)
		}
	}
	po.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeletePurchaseOrder(ctx context.Context, poKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[poKey]
	if !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	delete(s.byKey, poKey)
	return nil
}

func (s *MemoryStore) CreateLineItem(ctx context.Context, line *models.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	po, ok := s.orders[line.PurchaseOrderID]
	if !ok {
		return ErrNotFound
	}
	for _, l := range po.Lines {
		if l.LineKey == line.LineKey {
			return fmt.Errorf("line %s already exists", line.LineKey)
		}
	}
	prepareLine(line, po.ID, time.Now())
	po.Lines = append(po.Lines, copyLine(line))
	return nil
}

func (s *MemoryStore) UpdateLineItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.findLine(id)
	if line == nil {
		return ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "size_run":
			line.SizeRun = v.(string)
		case "category":
			line.Category = v.(string)
		case "channel":
			line.Channel = v.(string)
		case "qty":
			line.Qty = v.(int)
		case "price":
			line.Price = v.(decimal.Decimal)
		case "amount":
			line.Amount = v.(decimal.Decimal)
		case "trial_upper":
			line.TrialUpper = timeValue(v)
		case "trial_lasting":
			line.TrialLasting = timeValue(v)
		case "lasting":
			line.Lasting = timeValue(v)
		case "finish_date":
			line.FinishDate = timeValue(v)
		case "updated_at":
		default:
			return fmt.Errorf("unknown line column %q", col)
		}
	}
	line.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) CreateSample(ctx context.Context, sample *models.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.findLine(sample.LineItemID)
	if line == nil {
		return ErrNotFound
	}
	if line.SampleByType(sample.TipoMuestra) != nil {
		return fmt.Errorf("sample %s already exists for line", sample.TipoMuestra)
	}
	prepareSample(sample, line.ID, time.Now())
	line.Samples = append(line.Samples, copySample(sample))
	return nil
}

func (s *MemoryStore) UpdateSample(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := s.findSample(id)
	if sample == nil {
		return ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "round":
			if r, ok := v.(*int); ok && r != nil {
				rv := *r
				sample.Round = &rv
			} else {
				sample.Round = nil
			}
		case "fecha_muestra":
			sample.FechaMuestra = timeValue(v)
		case "estado_muestra":
			sample.EstadoMuestra = models.SampleStatus(fmt.Sprint(v))
		case "notas":
			sample.Notas = v.(string)
		case "updated_at":
		default:
			return fmt.Errorf("unknown sample column %q", col)
		}
	}
	sample.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) FetchCatalogEntries(ctx context.Context, categories []string) ([]models.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}
	var out []models.CatalogEntry
	for _, e := range s.catalog {
		if wanted[e.Category] {
			out = append(out, e)
		}
	}
	return out, nil
}

// UpsertCatalogEntries keys rows on (category, name_key), the only
// conflict target the catalog table has.
func (s *MemoryStore) UpsertCatalogEntries(ctx context.Context, entries []models.CatalogEntry, opts UpsertOptions) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	now := time.Now()
	for _, e := range entries {
		key := e.Category + "::" + e.NameKey
		if existing, ok := s.catalog[key]; ok {
			if opts.IgnoreDuplicates {
				continue
			}
			e.ID = existing.ID
			e.CreatedAt = existing.CreatedAt
		} else {
			if e.ID == uuid.Nil {
				e.ID = uuid.New()
			}
			e.CreatedAt = now
		}
		s.catalog[key] = e
		affected++
	}
	return affected, nil
}

func (s *MemoryStore) SaveImportRun(ctx context.Context, run *models.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	s.runs[run.ID] = *run
	return nil
}

func (s *MemoryStore) GetImportRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Counts reports the number of stored POs, lines, samples and catalog rows
func (s *MemoryStore) Counts() (orders, lines, samples, catalog int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, po := range s.orders {
		orders++
		for _, l := range po.Lines {
			lines++
			samples += len(l.Samples)
		}
	}
	return orders, lines, samples, len(s.catalog)
}

func (s *MemoryStore) findLine(id uuid.UUID) *models.LineItem {
	for _, po := range s.orders {
		for i := range po.Lines {
			if po.Lines[i].ID == id {
				return &po.Lines[i]
			}
		}
	}
	return nil
}

func (s *MemoryStore) findSample(id uuid.UUID) *models.Sample {
	for _, po := range s.orders {
		for i := range po.Lines {
			for j := range po.Lines[i].Samples {
				if po.Lines[i].Samples[j].ID == id {
					return &po.Lines[i].Samples[j]
				}
			}
		}
	}
	return nil
}

func prepareLine(l *models.LineItem, poID uuid.UUID, now time.Time) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.PurchaseOrderID = poID
	l.CreatedAt, l.UpdatedAt = now, now
	for i := range l.Samples {
		prepareSample(&l.Samples[i], l.ID, now)
	}
}

func prepareSample(s *models.Sample, lineID uuid.UUID, now time.Time) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.EstadoMuestra == "" {
		s.EstadoMuestra = models.SampleStatusNotStarted
	}
	s.LineItemID = lineID
	s.CreatedAt, s.UpdatedAt = now, now
}

func timeValue(v interface{}) *time.Time {
	t, ok := v.(*time.Time)
	if !ok || t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copySample(s *models.Sample) models.Sample {
	c := *s
	c.FechaMuestra = copyTime(s.FechaMuestra)
	if s.Round != nil {
		r := *s.Round
		c.Round = &r
	}
	return c
}

func copyLine(l *models.LineItem) models.LineItem {
	c := *l
	c.TrialUpper = copyTime(l.TrialUpper)
	c.TrialLasting = copyTime(l.TrialLasting)
	c.Lasting = copyTime(l.Lasting)
	c.FinishDate = copyTime(l.FinishDate)
	c.Samples = make([]models.Sample, len(l.Samples))
	for i := range l.Samples {
		c.Samples[i] = copySample(&l.Samples[i])
	}
	return c
}

func copyPurchaseOrder(po *models.PurchaseOrder) models.PurchaseOrder {
	c := *po
	c.PODate = copyTime(po.PODate)
	c.ETD = copyTime(po.ETD)
	c.Booking = copyTime(po.Booking)
	c.Closing = copyTime(po.Closing)
	c.ShippingDate = copyTime(po.ShippingDate)
	c.Lines = make([]models.LineItem, len(po.Lines))
	for i := range po.Lines {
		c.Lines[i] = copyLine(&po.Lines[i])
	}
	return c
}
