package qr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"log/slog"
	"net"
	"net/http"
	"qrlink/entity"
	"qrlink/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	Create(ctx context.Context, req *entity.CreateRequest) (*entity.QRCode, error)
	BulkCreate(ctx context.Context, req *entity.BulkRequest) (*entity.BulkResult, error)
	List(ctx context.Context) iter.Seq2[*entity.QRCode, error]
	Update(ctx context.Context, code string, req *entity.UpdateRequest) (*entity.UpdateResult, error)
	Delete(ctx context.Context, code string) (*entity.DeleteResult, error)
	Scan(ctx context.Context, code string, meta entity.ScanMeta) (string, error)
	Stats(ctx context.Context, code string) (*entity.QRCode, error)
	GlobalStats(ctx context.Context) (*entity.Stats, error)
}

const mod = "http.handlers.qr"

func requestLogger(logger *slog.Logger, r *http.Request) *slog.Logger {
	return logger.With(
		sl.Module(mod),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func Create(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		var req entity.CreateRequest
		if err := render.Bind(r, &req); err != nil {
			invalid(w, r, log, err)
			return
		}

		qr, err := handler.Create(r.Context(), &req)
		if err != nil {
			fail(w, r, log, err, CodeNotFound)
			return
		}
		log.With(sl.Code(qr.Code)).Info("qr code created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, qr)
	}
}

func Bulk(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		var req entity.BulkRequest
		if err := render.Bind(r, &req); err != nil {
			invalid(w, r, log, err)
			return
		}

		result, err := handler.BulkCreate(r.Context(), &req)
		if err != nil {
			fail(w, r, log, err, CodeNotFound)
			return
		}
		for _, f := range result.Failed {
			_, f.Error = status(f.Err, CodeNotFound)
		}
		log.With(
			slog.Int("requested", len(req.Items)),
			slog.Int("created", result.Count),
			slog.Int("failed", len(result.Failed)),
		).Info("bulk create")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, result)
	}
}

// listPage records read before the status is sent; a store error inside
// the first page is still reported with its own status
const listPage = 100

// List streams the json array while reading the store cursor. After the first
// page is sent, a store error ends the response without closing the array.
func List(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		next, stop := iter.Pull2(handler.List(r.Context()))
		defer stop()

		page := make([]*entity.QRCode, 0, listPage)
		qr, err, ok := next()
		for ; ok && len(page) < listPage; qr, err, ok = next() {
			if err != nil {
				fail(w, r, log, err, CodeNotFound)
				return
			}
			page = append(page, qr)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		enc := json.NewEncoder(w)
		count := 0
		write := func(item *entity.QRCode) bool {
			if count > 0 {
				_, _ = w.Write([]byte(","))
			}
			if err := enc.Encode(item); err != nil {
				log.With(sl.Err(err)).Error("list encode")
				return false
			}
			count++
			return true
		}

		_, _ = w.Write([]byte("["))
		for _, item := range page {
			if !write(item) {
				return
			}
		}
		for ; ok; qr, err, ok = next() {
			if err != nil {
				log.With(sl.Err(err), slog.Int("written", count)).Error("list interrupted")
				return
			}
			if !write(qr) {
				return
			}
		}
		_, _ = w.Write([]byte("]"))
		log.With(slog.Int("count", count)).Debug("list")
	}
}

func Update(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		log := requestLogger(logger, r).With(sl.Code(code))
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		// an empty body is an empty update, it is answered by the service
		var req entity.UpdateRequest
		if err := render.Bind(r, &req); err != nil && !errors.Is(err, io.EOF) {
			invalid(w, r, log, err)
			return
		}

		result, err := handler.Update(r.Context(), code, &req)
		if err != nil {
			fail(w, r, log, err, CodeNotFound)
			return
		}
		log.With(slog.Any("fields", result.Updated)).Info("qr code updated")

		render.JSON(w, r, result)
	}
}

func Delete(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		log := requestLogger(logger, r).With(sl.Code(code))
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		result, err := handler.Delete(r.Context(), code)
		if err != nil {
			fail(w, r, log, err, CodeNotFound)
			return
		}
		log.Info("qr code deleted")

		render.JSON(w, r, result)
	}
}

func Scan(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		log := requestLogger(logger, r).With(sl.Code(code))
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		target, err := handler.Scan(r.Context(), code, ScanMeta(r))
		if err != nil {
			fail(w, r, log, err, CodeQRNotFound)
			return
		}
		log.Debug("qr code scanned")

		http.Redirect(w, r, target, http.StatusFound)
	}
}

func Stats(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		log := requestLogger(logger, r).With(sl.Code(code))
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		qr, err := handler.Stats(r.Context(), code)
		if err != nil {
			fail(w, r, log, err, CodeNotFound)
			return
		}
		render.JSON(w, r, qr)
	}
}

func GlobalStats(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		if handler == nil {
			unavailable(w, r, log)
			return
		}

		stats, err := handler.GlobalStats(r.Context())
		if err != nil {
			fail(w, r, log, err, CodeNotFound)
			return
		}
		render.JSON(w, r, stats)
	}
}

// ScanMeta client details of a scan request; RemoteAddr is already resolved by the RealIP middleware
func ScanMeta(r *http.Request) entity.ScanMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return entity.ScanMeta{
		IP:             ip,
		UserAgent:      r.Header.Get("User-Agent"),
		Referrer:       r.Header.Get("Referer"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
}
