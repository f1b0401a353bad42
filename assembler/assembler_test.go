package assembler_test

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/Urethramancer/battleai/assembler"
)

func newAssembler(opts ...assembler.Option) (*assembler.Assembler, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return assembler.New(append([]assembler.Option{assembler.WithLogger(logger)}, opts...)...), hook
}

// Assembles source and checks against an expected byte sequence (in hex).
func assembleAndMatchHex(t *testing.T, asm *assembler.Assembler, name, src, expectedHex string) *assembler.Program {
	t.Helper()

	expectedHex = strings.ToLower(strings.Join(strings.Fields(expectedHex), ""))
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		t.Fatalf("[%s] invalid expected hex string: %v", name, err)
	}

	prog := asm.Assemble(src)
	code, err := prog.Bytes()
	if err != nil {
		t.Fatalf("[%s] %v\n%s", name, err, spew.Sdump(prog.Instructions))
	}
	if len(code) != len(expected) {
		t.Fatalf("[%s] expected %d bytes, got %d\nexpected: % X\ngot:      % X",
			name, len(expected), len(code), expected, code)
	}
	for i := range code {
		if code[i] != expected[i] {
			t.Errorf("[%s] mismatch at byte %d\nexpected: % X\ngot:      % X",
				name, i, expected, code)
			break
		}
	}
	if uint32(len(code)) != prog.Size {
		t.Errorf("[%s] size %d, emitted %d bytes", name, prog.Size, len(code))
	}
	return prog
}

func TestBasicEncodings(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{"Score", "score 10", "04 0A"},
		{"ScoreNegative", "score -1", "04 FF"},
		{"ScoreHex", "score 0x80", "04 80"},
		{"ScoreDollarHex", "score $10", "04 10"},
		{"ScoreChar", "score 'A'", "04 41"},
		{"ScoreCharAt", "score '@'", "04 40"},
		{"ScoreCharComma", "score ','", "04 2C"},
		{"ScoreCharSlash", "score '/' // comment", "04 2F"},
		{"CharOperands", "if_equal ',', L @ comma\nL:", "13 2C 06 00 00 00"},
		{"ScoreOctal", "score 010", "04 08"},
		{"End", "end", "5A"},
		{"BackwardGoto", "Label1:\n  goto Label1", "59 00 00 00 00"},
		{"ForwardGoto", "goto Fwd\nscore 1\nFwd:\nend", "59 07 00 00 00 04 01 5A"},
		{"Halfword", "if_has_move 0, 0x1234, L\nL:", "3F 00 34 12 08 00 00 00"},
		{"WordLiteral", "if_less_than_ptr 0x02024C07, L\nL:", "15 07 4C 02 02 09 00 00 00"},
		{"StatLevel", "if_stat_level_less_than 1, 2, 6, L\nL:\nend", "39 01 02 06 08 00 00 00 5A"},
		{"Call", "call Sub\nend\nSub:\nscore 3\nend", "58 06 00 00 00 5A 04 03 5A"},
	}
	asm, _ := newAssembler()
	for _, tc := range tests {
		assembleAndMatchHex(t, asm, tc.name, tc.src, tc.hex)
	}
}

func TestMacroEncodings(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{"UserFaster", "if_user_faster T\nT:\nend", "28 00 06 00 00 00 5A"},
		{"TargetFaster", "if_target_faster T\nT:\nend", "28 01 06 00 00 00 5A"},
		{"DoubleBattle", "if_double_battle L\nL:\nend", "4C 13 01 07 00 00 00 5A"},
		{"NotDoubleBattle", "if_not_double_battle L\nL:", "4C 13 00 07 00 00 00"},
		{"Ability", "if_ability AI_USER, ABILITY_LEVITATE, L\nL:\nend", "60 01 1A 13 01 09 00 00 00 5A"},
		{"NoAbility", "if_no_ability AI_USER, ABILITY_LEVITATE, L\nL:", "60 01 1A 13 00 09 00 00 00"},
		{"Type", "if_type AI_TARGET, 2, L\nL:", "5F 00 02 13 01 09 00 00 00"},
		{"NoType", "if_no_type AI_TARGET, 2, L\nL:", "5F 00 02 13 00 09 00 00 00"},
		{"Encored", "if_any_move_encored AI_TARGET, L\nL:", "43 00 01 07 00 00 00"},
		{"Disabled", "if_any_move_disabled AI_TARGET, L\nL:", "43 00 00 07 00 00 00"},
		{"AliasWithConstant", "get_user_type1", "22 03"},
	}
	asm, _ := newAssembler(assembler.WithConstants(map[string]int64{
		"AI_TARGET":        0,
		"AI_USER":          1,
		"AI_TYPE1_USER":    3,
		"ABILITY_LEVITATE": 26,
	}))
	for _, tc := range tests {
		assembleAndMatchHex(t, asm, tc.name, tc.src, tc.hex)
	}
}

func TestCommentsAndDirectives(t *testing.T) {
	src := `
@ header comment
// another
# and another
	.include "constants.inc"
AI_Start:: @ global label
	score 1 @ inline
	score 2 // inline
	.align 2
AI_Next:
	end
`
	asm, _ := newAssembler()
	prog := assembleAndMatchHex(t, asm, "Comments", src, "04 01 04 02 5A")
	if off, ok := prog.Symbols.Lookup("AI_Start"); !ok || off != 0 {
		t.Errorf("AI_Start = %d, %v", off, ok)
	}
	if off, ok := prog.Symbols.Lookup("AI_Next"); !ok || off != 4 {
		t.Errorf("AI_Next = %d, %v", off, ok)
	}
	if len(prog.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", prog.Diagnostics)
	}
}

func TestLabelsBindToNextInstruction(t *testing.T) {
	asm, _ := newAssembler()
	prog := asm.Assemble("A:\nB:\nscore 1\nC:\nend\nD:")
	want := assembler.Symbols{"A": 0, "B": 0, "C": 2, "D": 3}
	if !reflect.DeepEqual(prog.Symbols, want) {
		t.Errorf("symbols %v, want %v", prog.Symbols, want)
	}
	if got := prog.Symbols.Names(); !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("names %v", got)
	}
}

func TestUnknownMnemonicIsDropped(t *testing.T) {
	asm, hook := newAssembler()
	prog := assembleAndMatchHex(t, asm, "Unknown", "score 1\nbogus 1, 2\nL:\ngoto L", "04 01 59 02 00 00 00")

	if !prog.Failed() {
		t.Fatal("expected failure")
	}
	errs := prog.Errors()
	if len(errs) != 1 || errs[0].Line != 2 {
		t.Fatalf("errors: %v", errs)
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.ErrorLevel || e.Data["mnemonic"] != "bogus" || e.Data["line"] != 2 {
		t.Errorf("unexpected log entry: %s", spew.Sdump(e))
	}
}

func TestDuplicateLabelKeepsFirst(t *testing.T) {
	asm, _ := newAssembler()
	prog := assembleAndMatchHex(t, asm, "Duplicate", "A:\nscore 1\nA:\nscore 2\ngoto A", "04 01 04 02 59 00 00 00 00")
	errs := prog.Errors()
	if len(errs) != 1 || errs[0].Line != 3 {
		t.Errorf("errors: %v", errs)
	}
}

func TestBestEffortWarnings(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{"MissingOperands", "if_user_goes 0", "28 00 00 00 00 00"},
		{"ExtraOperands", "end 5", "5A"},
		{"EmptyOperands", "score ,", "04 00"},
		{"Overflow", "score 300", "04 2C"},
		{"LabelInByteSlot", "L:\nscore L", "04 00"},
	}
	for _, tc := range tests {
		asm, hook := newAssembler()
		prog := assembleAndMatchHex(t, asm, tc.name, tc.src, tc.hex)
		if prog.Failed() {
			t.Errorf("[%s] warnings must not fail: %v", tc.name, prog.Diagnostics)
		}
		if len(prog.Diagnostics) == 0 {
			t.Errorf("[%s] expected a warning", tc.name)
		}
		if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
			t.Errorf("[%s] warning not logged", tc.name)
		}
	}
}

func TestStructuralMacroArity(t *testing.T) {
	asm, _ := newAssembler()
	prog := assembleAndMatchHex(t, asm, "Arity", "if_ability 1, 2\nend", "5A")
	if !prog.Failed() {
		t.Error("missing macro operands must be an error")
	}

	prog = assembleAndMatchHex(t, asm, "Extra", "if_user_faster L, 9\nL:", "28 00 06 00 00 00")
	if prog.Failed() || len(prog.Diagnostics) != 1 {
		t.Errorf("diagnostics: %v", prog.Diagnostics)
	}
}

func TestDeferredSymbols(t *testing.T) {
	asm, _ := newAssembler()
	prog := asm.Assemble("if_status AI_USER, STATUS1_SLEEP, L\nL:\nend")

	var got []string
	for _, c := range prog.Cells() {
		got = append(got, c.String())
	}
	want := []string{
		"0x09", "B0(AI_USER)",
		"B0(STATUS1_SLEEP)", "B1(STATUS1_SLEEP)", "B2(STATUS1_SLEEP)", "B3(STATUS1_SLEEP)",
		"0x0A", "0x00", "0x00", "0x00",
		"0x5A",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cells\nwant %v\ngot  %v", want, got)
	}
	if d := prog.Deferred(); !reflect.DeepEqual(d, []string{"AI_USER", "STATUS1_SLEEP"}) {
		t.Errorf("deferred %v", d)
	}
	if _, err := prog.Bytes(); err == nil {
		t.Error("Bytes must fail with deferred symbols")
	}
	if len(prog.Diagnostics) != 0 {
		t.Errorf("deferred symbols are not problems: %v", prog.Diagnostics)
	}

	ops := prog.Instructions[0].Operands
	kinds := []assembler.OperandKind{ops[0].Kind, ops[1].Kind, ops[2].Kind}
	if !reflect.DeepEqual(kinds, []assembler.OperandKind{assembler.OperandSymbol, assembler.OperandSymbol, assembler.OperandOffset}) {
		t.Errorf("operand kinds %v", kinds)
	}
}

const sample = `
AI_CheckBadMove:
	if_target_faster AI_CBM_Fast
	get_considered_move_effect
	if_equal EFFECT_SLEEP, AI_CBM_Sleep
	if_ability AI_TARGET, ABILITY_INSOMNIA, AI_CBM_Minus10
	end
AI_CBM_Fast:
	if_hp_less_than AI_USER, 20, AI_CBM_Minus10
	if_has_move AI_USER, MOVE_PROTECT, AI_CBM_Sleep
	goto AI_End
AI_CBM_Sleep:
	if_status AI_TARGET, STATUS1_SLEEP, AI_CBM_Minus10
	if_double_battle AI_End
	score +1
	end
AI_CBM_Minus10:
	score -10
AI_End:
	end
`

func TestOffsetsAreContiguous(t *testing.T) {
	asm, _ := newAssembler()
	prog := asm.Assemble(sample)
	if len(prog.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", prog.Diagnostics)
	}
	var pc uint32
	for _, e := range prog.Instructions {
		if e.Offset != pc {
			t.Fatalf("%s at %04X, expected %04X", e.Source, e.Offset, pc)
		}
		if n := uint32(len(e.Cells())); n != e.Size() {
			t.Fatalf("%s: %d cells, size %d", e.Source, n, e.Size())
		}
		pc += e.Size()
	}
	if pc != prog.Size || uint32(len(prog.Cells())) != prog.Size {
		t.Errorf("size %d, walked %d", prog.Size, pc)
	}
	if off := prog.Symbols["AI_End"]; off != prog.Size-1 {
		t.Errorf("AI_End at %d, size %d", off, prog.Size)
	}
}

func TestDeterministic(t *testing.T) {
	asm, _ := newAssembler()
	a, b := asm.Assemble(sample), asm.Assemble(sample)
	if !reflect.DeepEqual(a.Cells(), b.Cells()) || !reflect.DeepEqual(a.Symbols, b.Symbols) {
		t.Error("two runs differ")
	}
}

func TestAssembleFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, src := range []string{"score 1", sample, "bogus"} {
		p := filepath.Join(dir, "s"+string(rune('0'+i))+".s")
		if err := os.WriteFile(p, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	asm, _ := newAssembler()
	progs, err := asm.AssembleFiles(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(progs) != 3 || progs[0].Size != 2 || progs[1].Size != asm.Assemble(sample).Size || !progs[2].Failed() {
		t.Errorf("unexpected programs: %s", spew.Sdump(progs))
	}

	_, err = asm.AssembleFiles(context.Background(), append(paths, filepath.Join(dir, "missing.s")))
	if err == nil {
		t.Error("missing file must fail")
	}
}
