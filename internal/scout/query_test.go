package scout_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/freeeve/scout/internal/chess"
	"github.com/freeeve/scout/internal/db"
	"github.com/freeeve/scout/internal/scout"
)

func TestCompileRuleOrder(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []scout.Rule
	}{
		{
			"all fields",
			`{"fen":"8/8/p7/8/8/1B3N2/8/8","material":"KBNKP","stm":"WHITE","result":"1-0"}`,
			[]scout.Rule{scout.RulePattern, scout.RuleMaterial, scout.RuleWhite, scout.RuleResult, scout.RuleEnd},
		},
		{
			"material and stm",
			`{"material":"KBNKP","stm":"BLACK"}`,
			[]scout.Rule{scout.RuleMaterial, scout.RuleBlack, scout.RuleEnd},
		},
		{
			"fen only",
			`{"fen":"8/8/p7/8/8/1B3N2/8/8"}`,
			[]scout.Rule{scout.RulePattern, scout.RuleEnd},
		},
		{
			"result only",
			`{"result":"1/2-1/2"}`,
			[]scout.Rule{scout.RuleResult, scout.RuleEnd},
		},
		{
			"empty query",
			`{}`,
			[]scout.Rule{scout.RuleNone},
		},
		{
			"unrecognized result dropped",
			`{"result":"2-0"}`,
			[]scout.Rule{scout.RuleNone},
		},
		{
			"unrecognized result dropped, others kept",
			`{"stm":"WHITE","result":"resigned"}`,
			[]scout.Rule{scout.RuleWhite, scout.RuleEnd},
		},
		{
			"unknown fields ignored",
			`{"depth":4,"stm":"WHITE"}`,
			[]scout.Rule{scout.RuleWhite, scout.RuleEnd},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := scout.Compile([]byte(tt.payload), nil)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if !reflect.DeepEqual(sc.Rules, tt.want) {
				t.Errorf("rules = %v, want %v", sc.Rules, tt.want)
			}
		})
	}
}

func TestCompilePattern(t *testing.T) {
	sc, err := scout.Compile([]byte(`{"fen":"8/8/p7/8/8/1B3N2/8/8"}`), nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	a6 := chess.SquareBB(40)
	b3 := chess.SquareBB(17)
	f3 := chess.SquareBB(21)

	if sc.Pattern.All != a6|b3|f3 {
		t.Errorf("All = %x, want %x", sc.Pattern.All, a6|b3|f3)
	}
	if sc.Pattern.White != b3|f3 {
		t.Errorf("White = %x, want %x", sc.Pattern.White, b3|f3)
	}
	want := []scout.PiecePattern{
		{Type: chess.Pawn, Mask: a6},
		{Type: chess.Knight, Mask: f3},
		{Type: chess.Bishop, Mask: b3},
	}
	if !reflect.DeepEqual(sc.Pattern.Pieces, want) {
		t.Errorf("Pieces = %v, want %v", sc.Pattern.Pieces, want)
	}
}

func TestCompileOperands(t *testing.T) {
	sc, err := scout.Compile([]byte(`{"material":"KNNK","result":"1-0"}`), nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	wantKey, err := chess.ParseMaterial("KNNK")
	if err != nil {
		t.Fatal(err)
	}
	if sc.MatKey != wantKey {
		t.Errorf("MatKey = %x, want %x", sc.MatKey, wantKey)
	}
	if sc.Result != db.ResultWhiteWin {
		t.Errorf("Result = %v, want 1-0", sc.Result)
	}
	if sc.Start != chess.NewStartingPosition() {
		t.Errorf("Start should default to the standard starting position")
	}
}

func TestCompileMalformedPayload(t *testing.T) {
	_, err := scout.Compile([]byte(`{"material":`), nil)
	if err == nil {
		t.Fatal("malformed payload must fail")
	}
	var perr *scout.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %T, want *ParseError", err)
	}
}

func TestCompileEngineErrors(t *testing.T) {
	if _, err := scout.Compile([]byte(`{"fen":"8/8/8/x"}`), nil); err == nil {
		t.Error("bad FEN must fail")
	} else {
		var perr *scout.ParseError
		if errors.As(err, &perr) {
			t.Error("engine decode failure must not be a ParseError")
		}
	}
	if _, err := scout.Compile([]byte(`{"material":"KXK"}`), nil); err == nil {
		t.Error("bad material signature must fail")
	}
}
