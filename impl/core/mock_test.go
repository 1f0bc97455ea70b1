package core

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"qrlink/entity"
	"sort"
	"strconv"
	"sync"
)

// ── mock database ──

type mockDB struct {
	mu       sync.Mutex
	codes    map[string]*entity.QRCode
	scans    []*entity.ScanEvent
	inserts  int
	merges   int
	failNext error
	listErr  error
}

func newMockDB() *mockDB {
	return &mockDB{codes: make(map[string]*entity.QRCode)}
}

func (m *mockDB) takeFail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockDB) InsertQRCode(_ context.Context, qr *entity.QRCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFail(); err != nil {
		return err
	}
	if _, ok := m.codes[qr.Code]; ok {
		return entity.ErrDuplicate
	}
	stored := *qr
	m.codes[qr.Code] = &stored
	m.inserts++
	return nil
}

func (m *mockDB) GetQRCode(_ context.Context, code string) (*entity.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qr, ok := m.codes[code]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *qr
	return &out, nil
}

func (m *mockDB) MergeQRCode(_ context.Context, code string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	qr, ok := m.codes[code]
	if !ok {
		return entity.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			qr.Name = v.(string)
		case "target_url":
			qr.TargetURL = v.(string)
		case "is_active":
			qr.IsActive = v.(bool)
		}
	}
	m.merges++
	return nil
}

func (m *mockDB) DeleteQRCode(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[code]; !ok {
		return entity.ErrNotFound
	}
	delete(m.codes, code)
	return nil
}

func (m *mockDB) QRCodes(_ context.Context) iter.Seq2[*entity.QRCode, error] {
	m.mu.Lock()
	list := make([]*entity.QRCode, 0, len(m.codes))
	for _, qr := range m.codes {
		out := *qr
		list = append(list, &out)
	}
	listErr := m.listErr
	m.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })

	return func(yield func(*entity.QRCode, error) bool) {
		if listErr != nil {
			yield(nil, listErr)
			return
		}
		for _, qr := range list {
			if !yield(qr, nil) {
				return
			}
		}
	}
}

func (m *mockDB) IncrementScanCount(_ context.Context, code string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	qr, ok := m.codes[code]
	if !ok {
		return entity.ErrNotFound
	}
	qr.ScanCount += delta
	return nil
}

func (m *mockDB) AppendScan(_ context.Context, event *entity.ScanEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, event)
	return strconv.Itoa(len(m.scans)), nil
}

// blockingScanDB holds every scan log append until release is closed
type blockingScanDB struct {
	*mockDB
	started chan struct{}
	release chan struct{}
}

func newBlockingScanDB(db *mockDB) *blockingScanDB {
	return &blockingScanDB{
		mockDB:  db,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingScanDB) AppendScan(ctx context.Context, event *entity.ScanEvent) (string, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	return b.mockDB.AppendScan(ctx, event)
}

func (m *mockDB) scanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scans)
}

// ── mock collaborators ──

type seqGenerator struct {
	mu    sync.Mutex
	codes []string
	n     int
}

func (g *seqGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n < len(g.codes) {
		code := g.codes[g.n]
		g.n++
		return code
	}
	g.n++
	return "GEN" + strconv.Itoa(10000+g.n)
}

type mockEncoder struct {
	err error
}

func (e mockEncoder) Encode(payload string) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []byte("png:" + payload), nil
}

type mockBlob struct {
	mu      sync.Mutex
	err     error
	uploads map[string][]byte
}

func (b *mockBlob) ObjectPath(code string) string {
	return "qr_codes/" + code + ".png"
}

func (b *mockBlob) Upload(_ context.Context, name string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	if b.uploads == nil {
		b.uploads = make(map[string][]byte)
	}
	b.uploads[name] = data
	return "https://storage.example/" + name, nil
}

type mockCache struct {
	mu          sync.Mutex
	targets     map[string]entity.ScanTarget
	invalidated []string
	readErr     error
}

func newMockCache() *mockCache {
	return &mockCache{targets: make(map[string]entity.ScanTarget)}
}

func (c *mockCache) Target(_ context.Context, code string) (*entity.ScanTarget, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	t, ok := c.targets[code]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

func (c *mockCache) SetTarget(_ context.Context, code string, target entity.ScanTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets[code] = target
	return nil
}

func (c *mockCache) Invalidate(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.targets, code)
	c.invalidated = append(c.invalidated, code)
	return nil
}

var errStoreDown = errors.New("connection refused")

const testBaseURL = "https://qr.example.com/qr/scan"

func nopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func setupTestCore(codes ...string) (*Core, *mockDB) {
	db := newMockDB()
	c := New(db, &seqGenerator{codes: codes}, mockEncoder{}, testBaseURL, nopLogger())
	return c, db
}
