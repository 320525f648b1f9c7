package bdmv

import (
	"errors"
	"reflect"
	"testing"

	"bdpl/internal/model"
	"bdpl/internal/testsupport"
)

func TestParseMovieObject(t *testing.T) {
	data := testsupport.BuildMovieObject(
		[]testsupport.CommandSpec{
			testsupport.PlayPLCommand(1),
			testsupport.JumpTitleCommand(2),
		},
		[]testsupport.CommandSpec{
			testsupport.PlayPLAtMarkCommand(2, 5),
		},
	)

	mobj, warnings, err := ParseMovieObject(data)
	if err != nil {
		t.Fatalf("ParseMovieObject: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if mobj.Version != "0200" || len(mobj.Objects) != 2 {
		t.Fatalf("parsed %d objects, version %q", len(mobj.Objects), mobj.Version)
	}

	if got := mobj.Objects[0].ReferencedPlaylists(); !reflect.DeepEqual(got, []string{"00001"}) {
		t.Fatalf("object 0 playlists = %v", got)
	}
	if got := mobj.Objects[0].ReferencedTitles(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("object 0 titles = %v", got)
	}
	if got := mobj.Objects[1].ReferencedPlaylists(); !reflect.DeepEqual(got, []string{"00002"}) {
		t.Fatalf("object 1 playlists = %v", got)
	}

	wantMap := map[string][]int{"00001": {0}, "00002": {1}}
	if got := mobj.PlaylistToObjects(); !reflect.DeepEqual(got, wantMap) {
		t.Fatalf("PlaylistToObjects = %v, want %v", got, wantMap)
	}
}

func TestParseMovieObjectUnknownOpcode(t *testing.T) {
	data := testsupport.BuildMovieObject(
		[]testsupport.CommandSpec{
			testsupport.UnknownCommand(),
			testsupport.PlayPLCommand(3),
		},
	)

	mobj, warnings, err := ParseMovieObject(data)
	if err != nil {
		t.Fatalf("ParseMovieObject: %v", err)
	}
	// The unknown command is preserved but uninterpreted.
	if len(mobj.Objects[0].Commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(mobj.Objects[0].Commands))
	}
	if mobj.Objects[0].Commands[0].IsKnown() {
		t.Fatal("reserved group decoded as known")
	}
	if got := mobj.Objects[0].ReferencedPlaylists(); !reflect.DeepEqual(got, []string{"00003"}) {
		t.Fatalf("playlists = %v", got)
	}
	if len(warnings) != 1 || warnings[0].Code != model.WarnUnknownOpcode {
		t.Fatalf("warnings = %v, want one UNKNOWN_OPCODE", warnings)
	}
}

func TestParseMovieObjectBadMagic(t *testing.T) {
	data := testsupport.BuildMovieObject()
	copy(data, "INDX")
	_, _, err := ParseMovieObject(data)
	var mismatch *MagicMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want MagicMismatch", err)
	}
}

func TestPlaylistStem(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00000"},
		{2, "00002"},
		{123, "00123"},
		{99999, "99999"},
	}
	for _, tc := range tests {
		if got := PlaylistStem(tc.in); got != tc.want {
			t.Errorf("PlaylistStem(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
