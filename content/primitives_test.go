package content_test

import (
	"testing"

	"github.com/jaiminpan/kvhamt/blob"
	"github.com/jaiminpan/kvhamt/content"
	"github.com/jaiminpan/kvhamt/store/memstore"
)

func TestUint64RoundTrip(t *testing.T) {
	st := memstore.New()
	sink := blob.NewSink(st)
	v := content.Uint64(0xDEADBEEFCAFE)
	if err := v.Persist(sink); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	d, err := sink.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	source, err := blob.Open(st, d)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := content.DecodeUint64(source)
	if err != nil {
		t.Fatalf("DecodeUint64: %v", err)
	}
	if got != v {
		t.Fatalf("got %d, want %d", got, v)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	st := memstore.New()
	sink := blob.NewSink(st)
	v := content.Uint32(123456)
	if err := v.Persist(sink); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	d, err := sink.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	source, err := blob.Open(st, d)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := content.DecodeUint32(source)
	if err != nil {
		t.Fatalf("DecodeUint32: %v", err)
	}
	if got != v {
		t.Fatalf("got %d, want %d", got, v)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	st := memstore.New()
	sink := blob.NewSink(st)
	v := content.Bytes("the quick brown fox")
	if err := v.Persist(sink); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	d, err := sink.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	source, err := blob.Open(st, d)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := content.DecodeBytes(source)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if got != v {
		t.Fatalf("got %q, want %q", got, v)
	}
}

func TestUint64BytesOrdering(t *testing.T) {
	small := content.Uint64(1).Bytes()
	big := content.Uint64(2).Bytes()
	if string(small) >= string(big) {
		t.Fatalf("byte form of 1 does not sort before byte form of 2")
	}
}
