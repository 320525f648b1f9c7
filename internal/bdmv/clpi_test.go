package bdmv

import (
	"errors"
	"testing"

	"bdpl/internal/model"
	"bdpl/internal/testsupport"
)

func TestParseCLPI(t *testing.T) {
	data := testsupport.BuildCLPI([]testsupport.StreamSpec{
		{CodingType: 0x1B, PID: 0x1011},
		{CodingType: 0x86, PID: 0x1100, Lang: "jpn"},
		{CodingType: 0x90, PID: 0x1200, Lang: "eng"},
	})

	clip, warnings, err := ParseCLPI("00007", data)
	if err != nil {
		t.Fatalf("ParseCLPI: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if clip.ClipID != "00007" {
		t.Fatalf("clip id = %q", clip.ClipID)
	}
	if len(clip.Streams) != 3 {
		t.Fatalf("streams = %d, want 3", len(clip.Streams))
	}

	tests := []struct {
		idx   int
		codec model.Codec
		pid   uint16
		lang  string
	}{
		{0, model.CodecH264, 0x1011, ""},
		{1, model.CodecDTSHDMA, 0x1100, "jpn"},
		{2, model.CodecPGS, 0x1200, "eng"},
	}
	for _, tc := range tests {
		s := clip.Streams[tc.idx]
		if s.Codec != tc.codec || s.PID != tc.pid || s.Lang != tc.lang {
			t.Errorf("stream %d = %+v, want codec=%s pid=%#x lang=%q", tc.idx, s, tc.codec, tc.pid, tc.lang)
		}
	}
}

func TestParseCLPIUnknownCodingType(t *testing.T) {
	data := testsupport.BuildCLPI([]testsupport.StreamSpec{
		{CodingType: 0xFF, PID: 0x1011},
		{CodingType: 0x81, PID: 0x1100, Lang: "eng"},
	})

	clip, _, err := ParseCLPI("00001", data)
	if err != nil {
		t.Fatalf("ParseCLPI: %v", err)
	}
	if len(clip.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(clip.Streams))
	}
	if clip.Streams[0].Codec != model.CodecUnknown {
		t.Fatalf("unknown coding type codec = %q, want UNKNOWN", clip.Streams[0].Codec)
	}
	// The stream after the unknown one still parses correctly.
	if clip.Streams[1].Codec != model.CodecAC3 || clip.Streams[1].Lang != "eng" {
		t.Fatalf("following stream = %+v", clip.Streams[1])
	}
}

func TestParseCLPIBadMagic(t *testing.T) {
	data := testsupport.BuildCLPI(nil)
	copy(data, "MPLS")
	_, _, err := ParseCLPI("00001", data)
	var mismatch *MagicMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want MagicMismatch", err)
	}
}

func TestParseCLPIEmptyProgramInfo(t *testing.T) {
	clip, warnings, err := ParseCLPI("00002", testsupport.BuildCLPI(nil))
	if err != nil {
		t.Fatalf("ParseCLPI: %v", err)
	}
	if len(clip.Streams) != 0 || len(warnings) != 0 {
		t.Fatalf("streams = %d warnings = %d, want 0/0", len(clip.Streams), len(warnings))
	}
}
