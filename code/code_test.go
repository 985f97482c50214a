package code

import "testing"

func TestMakeAndReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		wantWidth []int
	}{
		{LOCAL_U8_LOAD, []int{5}, []int{1}},
		{GLOBAL_U24_STORE, []int{0xABCDEF}, []int{3}},
		{CALL, []int{0x010203}, []int{3}},
		{NATIVE, []int{0x12, 0x3456}, []int{1, 2}},
		{LEAVE, []int{2, 1}, []int{1, 1}},
	}

	for _, tt := range tests {
		ins := Make(tt.op, tt.operands...)
		def, err := Lookup(byte(tt.op))
		if err != nil {
			t.Fatalf("Lookup(%v) errored: %s", tt.op, err)
		}
		operands, read := ReadOperands(def, Instructions(ins[1:]))
		if read != len(ins)-1 {
			t.Fatalf("read=%d, want %d", read, len(ins)-1)
		}
		for i, want := range tt.operands {
			if operands[i] != want {
				t.Errorf("operand %d = %d, want %d", i, operands[i], want)
			}
		}
	}
}

func TestMakeEnterRoundTrips(t *testing.T) {
	ins := MakeEnter(3, 7, "Main")
	if Opcode(ins[0]) != ENTER {
		t.Fatalf("expected ENTER opcode, got %d", ins[0])
	}
	argsSize, localsSize, name, read := ReadEnter(Instructions(ins[1:]))
	if argsSize != 3 || localsSize != 7 || name != "Main" {
		t.Errorf("got (%d, %d, %q), want (3, 7, \"Main\")", argsSize, localsSize, name)
	}
	if read != len(ins)-1 {
		t.Errorf("read=%d, want %d", read, len(ins)-1)
	}
}

func TestMakeSwitchRoundTrips(t *testing.T) {
	cases := []SwitchCase{{Value: 1, Offset: 10}, {Value: 2, Offset: -4}}
	body := MakeSwitch(cases)
	if int(body[0]) != len(cases) {
		t.Fatalf("case count byte = %d, want %d", body[0], len(cases))
	}
	got, read := ReadSwitch(Instructions(body))
	if read != len(body) {
		t.Errorf("read=%d, want %d", read, len(body))
	}
	for i, c := range cases {
		if got[i] != c {
			t.Errorf("case %d = %+v, want %+v", i, got[i], c)
		}
	}
}

func TestInstructionsString(t *testing.T) {
	ins := Instructions{}
	ins = append(ins, Make(PUSH_CONST_1)...)
	ins = append(ins, Make(IADD)...)
	ins = append(ins, MakeEnter(0, 2, "t")...)
	ins = append(ins, Make(LEAVE, 0, 0)...)

	out := ins.String()
	if out == "" {
		t.Fatal("expected non-empty disassembly")
	}
}

func TestLookupUndefinedOpcode(t *testing.T) {
	if _, err := Lookup(0xFF); err == nil {
		t.Fatal("expected error for undefined opcode")
	}
}
