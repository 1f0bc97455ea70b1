package qrimage

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestEncode_PNG(t *testing.T) {
	enc, err := New(128, "medium")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := enc.Encode("https://qr.example.com/qr/scan/AbCd1234")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not a png: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("expected width 128, got %d", img.Bounds().Dx())
	}
}

func TestEncode_EmptyPayload(t *testing.T) {
	enc, _ := New(0, "")
	if _, err := enc.Encode(""); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestEncode_TooLong(t *testing.T) {
	enc, _ := New(0, "highest")
	if _, err := enc.Encode(strings.Repeat("x", 5000)); err == nil {
		t.Error("expected error for payload over qr capacity")
	}
}

func TestParseRecovery(t *testing.T) {
	for _, s := range []string{"low", "Medium", "high", "highest", ""} {
		if _, err := ParseRecovery(s); err != nil {
			t.Errorf("%q: unexpected error %v", s, err)
		}
	}
	if _, err := ParseRecovery("ultra"); err == nil {
		t.Error("expected error for unknown level")
	}
}
