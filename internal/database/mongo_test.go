package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"qrlink/entity"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func testStore() *MongoDB {
	return &MongoDB{log: slog.New(slog.DiscardHandler)}
}

func TestClassify(t *testing.T) {
	m := testStore()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, entity.ErrNotFound},
		{"duplicate", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}, entity.ErrDuplicate},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), entity.ErrTimeout},
	}
	for _, tc := range cases {
		if got := m.classify("op", tc.err); !errors.Is(got, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	plain := errors.New("socket closed")
	got := m.classify("op", plain)
	if !errors.Is(got, plain) || errors.Is(got, entity.ErrTimeout) {
		t.Errorf("plain error must be wrapped as is, got %v", got)
	}
	if m.classify("op", nil) != nil {
		t.Error("nil error must stay nil")
	}
}

func TestWithID(t *testing.T) {
	fields := withID(bson.D{{"_id", "old"}, {"name", "x"}}, "AbCd1234")
	if len(fields) != 2 || fields[0].Key != "_id" || fields[0].Value != "AbCd1234" || fields[1].Key != "name" {
		t.Errorf("unexpected document %v", fields)
	}
}

func TestMerge_EmptyFields(t *testing.T) {
	m := testStore()
	if err := m.Merge(context.Background(), CollectionCodes, "AbCd1234", nil); !errors.Is(err, entity.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
