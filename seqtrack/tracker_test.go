package seqtrack_test

import (
	"testing"

	"github.com/sdrtestbed/iqtransport/seqtrack"
)

func TestTable_FirstReadNeverDuplicate(t *testing.T) {
	var tbl seqtrack.Table
	if tbl.Check(seqtrack.OpReadIQ, seqtrack.BufferA, 5) {
		t.Fatal("first check should never be a duplicate")
	}
}

func TestTable_DuplicateAfterUpdate(t *testing.T) {
	var tbl seqtrack.Table
	tbl.Update(seqtrack.OpReadIQ, seqtrack.BufferA, 5)
	if !tbl.Check(seqtrack.OpReadIQ, seqtrack.BufferA, 5) {
		t.Fatal("expected duplicate after recording the same id")
	}
	if tbl.Check(seqtrack.OpReadIQ, seqtrack.BufferA, 6) {
		t.Fatal("different id should not be a duplicate")
	}
}

func TestTable_BuffersAreIndependent(t *testing.T) {
	var tbl seqtrack.Table
	tbl.Update(seqtrack.OpReadIQ, seqtrack.BufferA, 5)
	if tbl.Check(seqtrack.OpReadIQ, seqtrack.BufferB, 5) {
		t.Fatal("buffer B should be independent of buffer A")
	}
}

func TestTable_OpsAreIndependent(t *testing.T) {
	var tbl seqtrack.Table
	tbl.Update(seqtrack.OpReadIQ, seqtrack.BufferA, 5)
	if tbl.Check(seqtrack.OpReadRSSI, seqtrack.BufferA, 5) {
		t.Fatal("read_rssi should be independent of read_iq")
	}
}
