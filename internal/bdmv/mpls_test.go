package bdmv

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"bdpl/internal/model"
	"bdpl/internal/testsupport"
)

func episodeMPLS() []byte {
	return testsupport.BuildMPLS(testsupport.MPLSSpec{
		Items: []testsupport.PlayItemSpec{
			{
				ClipID: "00003", InSeconds: 0, OutSeconds: 89.5,
				Streams: []testsupport.StreamSpec{
					{CodingType: 0x1B, PID: 0x1011},
					{CodingType: 0x80, PID: 0x1100, Lang: "jpn"},
				},
			},
			{
				ClipID: "00007", InSeconds: 10, OutSeconds: 1400,
				Streams: []testsupport.StreamSpec{
					{CodingType: 0x1B, PID: 0x1011},
					{CodingType: 0x81, PID: 0x1100, Lang: "jpn"},
					{CodingType: 0x90, PID: 0x1200, Lang: "eng"},
				},
			},
		},
		Marks: []testsupport.MarkSpec{
			{Type: 1, RefItem: 0, Seconds: 0},
			{Type: 1, RefItem: 1, Seconds: 95},
		},
	})
}

func TestParseMPLS(t *testing.T) {
	pl, warnings, err := ParseMPLS("00001.mpls", episodeMPLS())
	if err != nil {
		t.Fatalf("ParseMPLS: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if pl.MPLS != "00001.mpls" || pl.Version != "0200" {
		t.Fatalf("header = %q %q", pl.MPLS, pl.Version)
	}
	if len(pl.PlayItems) != 2 {
		t.Fatalf("play items = %d, want 2", len(pl.PlayItems))
	}

	first := pl.PlayItems[0]
	if first.ClipID != "00003" || first.M2TS != "00003.m2ts" {
		t.Fatalf("clip = %q m2ts = %q", first.ClipID, first.M2TS)
	}
	if first.InTime != 0 || first.OutTime != testsupport.Ticks(89.5) {
		t.Fatalf("times = %d..%d", first.InTime, first.OutTime)
	}
	if len(first.Streams) != 2 {
		t.Fatalf("first item streams = %d, want 2", len(first.Streams))
	}
	if first.Streams[0].Codec != model.CodecH264 || first.Streams[0].PID != 0x1011 {
		t.Fatalf("video stream = %+v", first.Streams[0])
	}
	if first.Streams[1].Codec != model.CodecLPCM || first.Streams[1].Lang != "jpn" {
		t.Fatalf("audio stream = %+v", first.Streams[1])
	}

	second := pl.PlayItems[1]
	if len(second.Streams) != 3 {
		t.Fatalf("second item streams = %d, want 3", len(second.Streams))
	}
	if second.Streams[2].Codec != model.CodecPGS || second.Streams[2].Lang != "eng" {
		t.Fatalf("subtitle stream = %+v", second.Streams[2])
	}

	if len(pl.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(pl.Chapters))
	}
	if pl.Chapters[1].ID != 1 || pl.Chapters[1].Timestamp != testsupport.Ticks(95) {
		t.Fatalf("chapter 1 = %+v", pl.Chapters[1])
	}
}

func TestParseMPLSDurationInvariants(t *testing.T) {
	pl, _, err := ParseMPLS("00001.mpls", episodeMPLS())
	if err != nil {
		t.Fatalf("ParseMPLS: %v", err)
	}
	var sum uint64
	for _, pi := range pl.PlayItems {
		if pi.OutTime < pi.InTime {
			t.Fatalf("out %d < in %d", pi.OutTime, pi.InTime)
		}
		sum += uint64(pi.DurationTicks())
	}
	if pl.DurationTicks() != sum {
		t.Fatalf("playlist duration %d != item sum %d", pl.DurationTicks(), sum)
	}
}

func TestParseMPLSSegmentKeysStableAcrossReparse(t *testing.T) {
	data := episodeMPLS()
	first, _, err := ParseMPLS("00001.mpls", data)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, _, err := ParseMPLS("00001.mpls", data)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(first.SignatureLoose(250), second.SignatureLoose(250)) {
		t.Fatal("loose signatures differ across re-parse")
	}
	if first.SignatureExact() != second.SignatureExact() {
		t.Fatal("exact signatures differ across re-parse")
	}
}

func TestParseMPLSBadMagic(t *testing.T) {
	data := episodeMPLS()
	copy(data, "XXXX")
	_, _, err := ParseMPLS("00001.mpls", data)
	var mismatch *MagicMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want MagicMismatch", err)
	}
	if mismatch.Expected != "MPLS" || mismatch.Got != "XXXX" {
		t.Fatalf("mismatch = %+v", mismatch)
	}
}

func TestParseMPLSMalformedPlayItemSkipped(t *testing.T) {
	// The middle item's declared envelope is too small for the fixed play
	// item fields, so its parse overruns and the item is dropped. The
	// surrounding items still parse because the envelope boundary is honored.
	data := testsupport.BuildMPLS(testsupport.MPLSSpec{
		Items: []testsupport.PlayItemSpec{
			{ClipID: "00001", InSeconds: 0, OutSeconds: 120},
			{RawBody: bytes.Repeat([]byte{0xEE}, 20)},
			{ClipID: "00002", InSeconds: 0, OutSeconds: 90},
		},
	})

	pl, warnings, err := ParseMPLS("00009.mpls", data)
	if err != nil {
		t.Fatalf("ParseMPLS: %v", err)
	}
	if len(pl.PlayItems) != 2 {
		t.Fatalf("play items = %d, want 2 surviving", len(pl.PlayItems))
	}
	if pl.PlayItems[0].ClipID != "00001" || pl.PlayItems[1].ClipID != "00002" {
		t.Fatalf("surviving clips = %q, %q", pl.PlayItems[0].ClipID, pl.PlayItems[1].ClipID)
	}
	if !hasWarning(warnings, model.WarnMalformedSection) {
		t.Fatalf("warnings = %v, want MALFORMED_SECTION", warnings)
	}
}

func TestParseMPLSOutBeforeInRejected(t *testing.T) {
	spec := testsupport.MPLSSpec{
		Items: []testsupport.PlayItemSpec{
			{ClipID: "00001", InSeconds: 300, OutSeconds: 10},
			{ClipID: "00002", InSeconds: 0, OutSeconds: 90},
		},
	}
	pl, warnings, err := ParseMPLS("00004.mpls", testsupport.BuildMPLS(spec))
	if err != nil {
		t.Fatalf("ParseMPLS: %v", err)
	}
	if len(pl.PlayItems) != 1 || pl.PlayItems[0].ClipID != "00002" {
		t.Fatalf("play items = %+v, want only 00002", pl.PlayItems)
	}
	if !hasWarning(warnings, model.WarnMalformedSection) {
		t.Fatalf("warnings = %v, want MALFORMED_SECTION", warnings)
	}
}

func TestParseMPLSTruncated(t *testing.T) {
	data := episodeMPLS()
	_, _, err := ParseMPLS("00001.mpls", data[:10])
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func hasWarning(warnings []model.Warning, code model.WarningCode) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
