package machine

import "fmt"

// Opcode is a single-byte VM instruction.
type Opcode uint8

// "x ADD y" style stack pictures describe the operand stack before and
// after the instruction. OP<u8> and OP<u16> indicate immediate operands
// following the opcode in the byte stream; <const> is an index into the
// chunk's constant pool.
const ( //nolint:revive
	CONSTANT Opcode = iota //             - CONSTANT<const>  value

	NIL   //                              - NIL   nil
	TRUE  //                              - TRUE  true
	FALSE //                              - FALSE false
	POP   //                            x POP    -

	GETLOCAL     //                     - GETLOCAL<u8>      value
	SETLOCAL     //                 value SETLOCAL<u8>      value
	GETGLOBAL    //                     - GETGLOBAL<const>  value
	DEFINEGLOBAL //                 value DEFINEGLOBAL<const> -
	SETGLOBAL    //                 value SETGLOBAL<const>  value
	GETUPVALUE   //                     - GETUPVALUE<u8>    value
	SETUPVALUE   //                 value SETUPVALUE<u8>    value

	EQUAL   //                        x y EQUAL    bool
	GREATER //                        x y GREATER  bool
	LESS    //                        x y LESS     bool

	ADD      //                       x y ADD      x+y
	SUBTRACT //                       x y SUBTRACT x-y
	MULTIPLY //                       x y MULTIPLY x*y
	DIVIDE   //                       x y DIVIDE   x/y

	NOT    //                           x NOT    bool
	NEGATE //                           x NEGATE -x

	PRINT //                            x PRINT  -

	JUMP      //                        - JUMP<u16>      -     ip += offset
	JUMPFALSE //                     cond JUMPFALSE<u16> cond  ip += offset if falsey; does not pop
	LOOP      //                        - LOOP<u16>      -     ip -= offset

	CALL         // fn arg1 .. argn CALL<u8:n> result
	CLOSURE      //               - CLOSURE<const> closure    then u8,u8 (isLocal, index) per upvalue
	CLOSEUPVALUE //               x CLOSEUPVALUE -            moves x into its open upvalue
	RETURN       //          result RETURN -

	// Class-family opcodes are reserved extension points; the compiler never
	// emits them and the dispatch loop treats them as unknown instructions.
	CLASS
	METHOD
	GETPROPERTY
	SETPROPERTY
	INVOKE
	INHERIT
	GETSUPER
	SUPERINVOKE

	opcodeMax = SUPERINVOKE
)

var opcodeNames = [...]string{
	ADD:          "add",
	CALL:         "call",
	CLASS:        "class",
	CLOSEUPVALUE: "closeupvalue",
	CLOSURE:      "closure",
	CONSTANT:     "constant",
	DEFINEGLOBAL: "defineglobal",
	DIVIDE:       "divide",
	EQUAL:        "equal",
	FALSE:        "false",
	GETGLOBAL:    "getglobal",
	GETLOCAL:     "getlocal",
	GETPROPERTY:  "getproperty",
	GETSUPER:     "getsuper",
	GETUPVALUE:   "getupvalue",
	GREATER:      "greater",
	INHERIT:      "inherit",
	INVOKE:       "invoke",
	JUMP:         "jump",
	JUMPFALSE:    "jumpfalse",
	LESS:         "less",
	LOOP:         "loop",
	METHOD:       "method",
	MULTIPLY:     "multiply",
	NEGATE:       "negate",
	NIL:          "nil",
	NOT:          "not",
	POP:          "pop",
	PRINT:        "print",
	RETURN:       "return",
	SETGLOBAL:    "setglobal",
	SETLOCAL:     "setlocal",
	SETUPVALUE:   "setupvalue",
	SUBTRACT:     "subtract",
	SUPERINVOKE:  "superinvoke",
	TRUE:         "true",
}

func (op Opcode) String() string {
	if op <= opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
