package memstore

import (
	"testing"

	"github.com/jaiminpan/kvhamt/digest"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	d := digest.Sum([]byte("payload"))
	if err := s.Put(d, []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(d)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("Get = %q, want %q", got, "payload")
	}
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, err := s.Get(digest.Sum([]byte("absent")))
	if err == nil {
		t.Fatalf("Get of missing key returned nil error")
	}
}

func TestHas(t *testing.T) {
	s := New()
	d := digest.Sum([]byte("payload"))
	if ok, _ := s.Has(d); ok {
		t.Fatalf("Has reported true before Put")
	}
	_ = s.Put(d, []byte("payload"))
	if ok, _ := s.Has(d); !ok {
		t.Fatalf("Has reported false after Put")
	}
}

func TestGetReturnsACopy(t *testing.T) {
	s := New()
	d := digest.Sum([]byte("payload"))
	_ = s.Put(d, []byte("payload"))
	got, _ := s.Get(d)
	got[0] = 'X'
	got2, _ := s.Get(d)
	if got2[0] == 'X' {
		t.Fatalf("mutating a Get result affected stored data")
	}
}

func TestBatchAccumulatesUntilSubmit(t *testing.T) {
	s := New()
	batch := s.NewBatch()
	d := digest.Sum([]byte("payload"))
	if err := batch.Put(d, []byte("payload")); err != nil {
		t.Fatalf("batch Put: %v", err)
	}
	if ok, _ := s.Has(d); ok {
		t.Fatalf("store saw the write before Submit")
	}
	if err := batch.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ok, _ := s.Has(d); !ok {
		t.Fatalf("store did not see the write after Submit")
	}
}

func TestBatchReset(t *testing.T) {
	s := New()
	batch := s.NewBatch()
	d := digest.Sum([]byte("payload"))
	_ = batch.Put(d, []byte("payload"))
	batch.Reset()
	if err := batch.Submit(); err != nil {
		t.Fatalf("Submit after Reset: %v", err)
	}
	if ok, _ := s.Has(d); ok {
		t.Fatalf("Reset batch still wrote its buffered entry")
	}
}
