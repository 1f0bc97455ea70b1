package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"qrlink/entity"
	"qrlink/lib/clock"
	"qrlink/lib/sl"
	"time"
)

const (
	maxIssueAttempts = 5
	uploadTimeout    = 5 * time.Second
)

func (c *Core) Create(ctx context.Context, req *entity.CreateRequest) (*entity.QRCode, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", entity.ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.issue(ctx, req)
}

// BulkCreate validates all items first; then every item is issued on its own,
// a failed item is reported and the rest still go through
func (c *Core) BulkCreate(ctx context.Context, req *entity.BulkRequest) (*entity.BulkResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", entity.ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &entity.BulkResult{
		Items: make([]*entity.QRCode, 0, len(req.Items)),
	}
	for i, item := range req.Items {
		qr, err := c.issue(ctx, item)
		if err != nil {
			c.log.With(slog.Int("index", i), sl.Err(err)).Error("bulk item")
			result.Failed = append(result.Failed, &entity.BulkFailure{Index: i, Err: err})
			continue
		}
		result.Items = append(result.Items, qr)
	}
	result.Count = len(result.Items)
	return result, nil
}

func (c *Core) issue(ctx context.Context, req *entity.CreateRequest) (*entity.QRCode, error) {
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		code := c.gen.Generate()
		qr := &entity.QRCode{
			Code:      code,
			Name:      req.Name,
			TargetURL: req.TargetURL,
			ScanURL:   entity.ScanURL(c.baseURL, code),
			IsActive:  true,
			CreatedAt: clock.Now(),
			ScanCount: 0,
		}
		if qr.Name == "" {
			qr.Name = entity.DefaultName(code)
		}
		// the image depends on the scan url only, so a collided code rewrites identical bytes
		qr.ImageURL = c.image(ctx, qr)

		err := c.db.InsertQRCode(ctx, qr)
		if errors.Is(err, entity.ErrDuplicate) {
			c.log.With(sl.Code(code), slog.Int("attempt", attempt)).Warn("code collision")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save qr code: %w", err)
		}
		c.log.With(sl.Code(code), slog.Bool("image", qr.ImageURL != nil)).Debug("qr code created")
		return qr, nil
	}
	return nil, fmt.Errorf("issue code: %d collisions in a row", maxIssueAttempts)
}

// image renders and uploads the code image; any failure degrades to a null image url
func (c *Core) image(ctx context.Context, qr *entity.QRCode) *string {
	log := c.log.With(sl.Code(qr.Code))

	png, err := c.enc.Encode(qr.ScanURL)
	if err != nil {
		log.With(sl.Err(err)).Warn("image encode")
		return nil
	}
	if c.blob == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	url, err := c.blob.Upload(ctx, c.blob.ObjectPath(qr.Code), png)
	if err != nil {
		log.With(sl.Err(err)).Warn("image upload")
		return nil
	}
	return &url
}

func (c *Core) List(ctx context.Context) iter.Seq2[*entity.QRCode, error] {
	return c.db.QRCodes(ctx)
}

func (c *Core) Update(ctx context.Context, code string, req *entity.UpdateRequest) (*entity.UpdateResult, error) {
	if req == nil {
		req = &entity.UpdateRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.db.GetQRCode(ctx, code); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, entity.ErrNoData
	}

	fields := req.Fields()
	if err := c.db.MergeQRCode(ctx, code, fields); err != nil {
		return nil, err
	}
	c.invalidate(ctx, code)

	return &entity.UpdateResult{Ok: true, Code: code, Updated: fields}, nil
}

func (c *Core) Delete(ctx context.Context, code string) (*entity.DeleteResult, error) {
	if err := c.db.DeleteQRCode(ctx, code); err != nil {
		return nil, err
	}
	c.invalidate(ctx, code)
	return &entity.DeleteResult{Ok: true, Deleted: code}, nil
}
