package core

import (
	"context"
	"iter"
	"log/slog"
	"qrlink/entity"
	"qrlink/lib/sl"
	"sync"
)

type Database interface {
	InsertQRCode(ctx context.Context, qr *entity.QRCode) error
	GetQRCode(ctx context.Context, code string) (*entity.QRCode, error)
	MergeQRCode(ctx context.Context, code string, fields map[string]interface{}) error
	DeleteQRCode(ctx context.Context, code string) error
	QRCodes(ctx context.Context) iter.Seq2[*entity.QRCode, error]
	IncrementScanCount(ctx context.Context, code string, delta int64) error
	AppendScan(ctx context.Context, event *entity.ScanEvent) (string, error)
}

type CodeGenerator interface {
	Generate() string
}

type ImageEncoder interface {
	Encode(payload string) ([]byte, error)
}

type BlobStore interface {
	ObjectPath(code string) string
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

type Cache interface {
	Target(ctx context.Context, code string) (*entity.ScanTarget, bool, error)
	SetTarget(ctx context.Context, code string, target entity.ScanTarget) error
	Invalidate(ctx context.Context, code string) error
}

// Core keeps no request state; everything persistent lives in the Database
type Core struct {
	db      Database
	gen     CodeGenerator
	enc     ImageEncoder
	blob    BlobStore
	cache   Cache
	baseURL string
	log     *slog.Logger

	mu       sync.Mutex
	stopping bool
	pending  sync.WaitGroup
}

func New(db Database, gen CodeGenerator, enc ImageEncoder, baseURL string, log *slog.Logger) *Core {
	if db == nil {
		panic("database is nil")
	}
	if gen == nil {
		panic("code generator is nil")
	}
	if enc == nil {
		panic("image encoder is nil")
	}
	return &Core{
		db:      db,
		gen:     gen,
		enc:     enc,
		baseURL: baseURL,
		log:     log.With(sl.Module("core")),
	}
}

// SetBlobStore enables image upload; without it records are created with a null image_url
func (c *Core) SetBlobStore(blob BlobStore) {
	c.blob = blob
}

func (c *Core) SetCache(cache Cache) {
	c.cache = cache
}

// Wait blocks until background scan log writes are finished.
// Scans arriving after Wait is called write their log entry inline.
func (c *Core) Wait() {
	c.mu.Lock()
	c.stopping = true
	c.mu.Unlock()
	c.pending.Wait()
}

func (c *Core) invalidate(ctx context.Context, code string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, code); err != nil {
		c.log.With(sl.Code(code), sl.Err(err)).Warn("cache invalidate")
	}
}
