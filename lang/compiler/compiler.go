// Package compiler implements the single-pass Lox compiler: a Pratt parser
// that consumes scanner tokens and emits bytecode straight into the chunk
// of the function being compiled, resolving lexical scope and closure
// capture as it goes. There is no AST.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/svetlins/glox/lang/machine"
	"github.com/svetlins/glox/lang/scanner"
	"github.com/svetlins/glox/lang/token"
)

// ErrCompile is returned by Compile when the source had errors; the
// individual diagnostics have already been written to the error writer.
var ErrCompile = errors.New("compile error")

// Compile compiles a top-level script and returns its function (arity 0,
// no name). Compile-time constants are allocated on the provided heap, and
// the compiler registers itself as a GC root provider for the duration so
// that in-flight functions survive collections triggered by its own
// allocations.
func Compile(src string, heap *machine.Heap, stderr io.Writer) (*machine.Function, error) {
	p := &parser{heap: heap, stderr: stderr}
	p.scanner.Init(src)

	heap.AddRoots(p)
	defer heap.RemoveRoots(p)

	p.initCompiler(&funcCompiler{}, kindScript)
	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn := p.endCompiler()

	if p.hadError {
		return nil, ErrCompile
	}
	return fn, nil
}

type funcKind uint8

const (
	kindScript funcKind = iota
	kindFunction
)

// A local is a declared variable of the function being compiled. depth is
// -1 between declaration and the end of its initializer, which is what
// makes `var a = a;` detectable.
type local struct {
	name     token.Token
	depth    int
	captured bool
}

// An upvalue descriptor records how a captured variable is reached: a
// local slot of the enclosing function, or one of the enclosing function's
// own upvalues.
type upvalue struct {
	isLocal bool
	index   uint8
}

const maxLocals = 256

// A funcCompiler is the per-function compiler context. They form a stack,
// linked through enclosing, pushed and popped around each nested function
// declaration; this chain is what MarkRoots exposes to the collector.
type funcCompiler struct {
	enclosing  *funcCompiler
	function   *machine.Function
	kind       funcKind
	locals     [maxLocals]local
	localCount int
	upvalues   [maxLocals]upvalue
	scopeDepth int
}

type parser struct {
	scanner  scanner.Scanner
	heap     *machine.Heap
	stderr   io.Writer
	curr     *funcCompiler
	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
}

// MarkRoots implements machine.RootMarker: every function on the compiler
// stack is a root while compilation is in flight.
func (p *parser) MarkRoots(h *machine.Heap) {
	for fc := p.curr; fc != nil; fc = fc.enclosing {
		h.MarkObject(fc.function)
	}
}

// ---- error reporting ----

// errorAt reports a diagnostic for tok and enters panic mode, which
// swallows further diagnostics until the parser synchronizes on a
// statement boundary.
func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	fmt.Fprintf(p.stderr, "[line %d] Error", tok.Line)
	switch tok.Kind {
	case token.EOF:
		fmt.Fprint(p.stderr, " at end")
	case token.ILLEGAL:
		// the lexeme is the scan error message, not source text
	default:
		fmt.Fprintf(p.stderr, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(p.stderr, ": %s\n", msg)
	p.hadError = true
}

func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }
func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }

// synchronize exits panic mode at the next statement boundary: just past a
// semicolon, or just before a statement-starting keyword.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMI {
			return
		}
		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// ---- token plumbing ----

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Next()
		if p.current.Kind != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) consume(kind token.Kind, msg string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) check(kind token.Kind) bool { return p.current.Kind == kind }

func (p *parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

// ---- emitting ----

func (p *parser) currentChunk() *machine.Chunk { return &p.curr.function.Chunk }

func (p *parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *parser) emitOp(op machine.Opcode) { p.emitByte(byte(op)) }

func (p *parser) emitOps(op machine.Opcode, operand byte) {
	p.emitOp(op)
	p.emitByte(operand)
}

func (p *parser) emitReturn() {
	p.emitOp(machine.NIL)
	p.emitOp(machine.RETURN)
}

// makeConstant appends v to the constant pool, enforcing the one-byte
// operand range.
func (p *parser) makeConstant(v machine.Value) byte {
	idx := p.currentChunk().AddConstant(v)
	if idx > math.MaxUint8 {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (p *parser) emitConstant(v machine.Value) {
	p.emitOps(machine.CONSTANT, p.makeConstant(v))
}

// emitJump writes op with a two-byte placeholder operand and returns the
// placeholder's offset for patchJump.
func (p *parser) emitJump(op machine.Opcode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return p.currentChunk().Len() - 2
}

// patchJump back-fills the placeholder at offset with the distance from
// the end of the operand to the current end of the chunk.
func (p *parser) patchJump(offset int) {
	jump := p.currentChunk().Len() - offset - 2
	if jump > math.MaxUint16 {
		p.error("Too much code to jump over.")
	}
	p.currentChunk().Code[offset] = byte(jump >> 8)
	p.currentChunk().Code[offset+1] = byte(jump)
}

// emitLoop writes a backward jump to loopStart.
func (p *parser) emitLoop(loopStart int) {
	p.emitOp(machine.LOOP)
	offset := p.currentChunk().Len() - loopStart + 2
	if offset > math.MaxUint16 {
		p.error("Loop body too large.")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset))
}

// ---- compiler stack ----

// initCompiler pushes fc as the current context. Slot 0 of every function
// is reserved for the callee itself. The function is allocated before fc
// is published as the current context: MarkRoots walks the chain from
// p.curr, and a frame with a nil function on it would poison the
// collector. Interning the name comes after publication so the fresh
// function is already a root if that allocation collects.
func (p *parser) initCompiler(fc *funcCompiler, kind funcKind) {
	fc.enclosing = p.curr
	fc.kind = kind
	fc.function = p.heap.NewFunction()
	p.curr = fc
	if kind != kindScript {
		fc.function.Name = p.heap.CopyString(p.previous.Lexeme)
	}

	fc.locals[0] = local{depth: 0}
	fc.localCount = 1
}

// endCompiler seals the current function with an implicit `return nil` and
// pops the context, returning the completed function.
func (p *parser) endCompiler() *machine.Function {
	p.emitReturn()
	fn := p.curr.function
	p.curr = p.curr.enclosing
	return fn
}

func (p *parser) beginScope() { p.curr.scopeDepth++ }

// endScope discards the locals of the closing block. Captured locals are
// closed into their upvalues instead of being plainly popped.
func (p *parser) endScope() {
	fc := p.curr
	fc.scopeDepth--
	for fc.localCount > 0 && fc.locals[fc.localCount-1].depth > fc.scopeDepth {
		if fc.locals[fc.localCount-1].captured {
			p.emitOp(machine.CLOSEUPVALUE)
		} else {
			p.emitOp(machine.POP)
		}
		fc.localCount--
	}
}

// ---- variables ----

func identifiersEqual(a, b token.Token) bool { return a.Lexeme == b.Lexeme }

// identifierConstant interns the identifier's name and stores it in the
// constant pool for the global-access opcodes.
func (p *parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(machine.ObjectValue(p.heap.CopyString(name.Lexeme)))
}

// resolveLocal finds name among fc's locals, innermost declaration first.
// Returns -1 when the name is not a local of this function.
func (p *parser) resolveLocal(fc *funcCompiler, name token.Token) int {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if identifiersEqual(l.name, name) {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// addUpvalue records that the current function reaches a captured variable
// through the given descriptor, de-duplicating so that each distinct
// variable occupies one upvalue slot.
func (p *parser) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	n := fc.function.UpvalueCount
	for i := 0; i < n; i++ {
		uv := &fc.upvalues[i]
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if n == maxLocals {
		p.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[n] = upvalue{isLocal: isLocal, index: index}
	fc.function.UpvalueCount++
	return n
}

// resolveUpvalue recursively asks the enclosing compiler for name. A hit
// on an enclosing local marks it captured (so endScope closes it) and adds
// a local descriptor; a hit further out chains through the enclosing
// function's own upvalues.
func (p *parser) resolveUpvalue(fc *funcCompiler, name token.Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if slot := p.resolveLocal(fc.enclosing, name); slot != -1 {
		fc.enclosing.locals[slot].captured = true
		return p.addUpvalue(fc, uint8(slot), true)
	}
	if up := p.resolveUpvalue(fc.enclosing, name); up != -1 {
		return p.addUpvalue(fc, uint8(up), false)
	}
	return -1
}

func (p *parser) addLocal(name token.Token) {
	fc := p.curr
	if fc.localCount == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	fc.locals[fc.localCount] = local{name: name, depth: -1}
	fc.localCount++
}

// declareVariable registers the variable just parsed as a local of the
// current scope. Globals are late-bound by name and have nothing to
// declare.
func (p *parser) declareVariable() {
	fc := p.curr
	if fc.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.depth != -1 && l.depth < fc.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) parseVariable(msg string) byte {
	p.consume(token.IDENT, msg)
	p.declareVariable()
	if p.curr.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) markInitialized() {
	fc := p.curr
	if fc.scopeDepth == 0 {
		return
	}
	fc.locals[fc.localCount-1].depth = fc.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.curr.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOps(machine.DEFINEGLOBAL, global)
}

// namedVariable lowers an identifier reference or assignment, preferring
// locals, then upvalues, then falling back to late-bound globals.
func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp machine.Opcode
	arg := p.resolveLocal(p.curr, name)
	switch {
	case arg != -1:
		getOp, setOp = machine.GETLOCAL, machine.SETLOCAL
	default:
		if arg = p.resolveUpvalue(p.curr, name); arg != -1 {
			getOp, setOp = machine.GETUPVALUE, machine.SETUPVALUE
		} else {
			arg = int(p.identifierConstant(name))
			getOp, setOp = machine.GETGLOBAL, machine.SETGLOBAL
		}
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitOps(setOp, byte(arg))
	} else {
		p.emitOps(getOp, byte(arg))
	}
}

// ---- expressions ----

// precedence levels, lowest binds loosest
type precedence int

const (
	precNone precedence = iota
	precAssignment           // =
	precOr                   // or
	precAnd                  // and
	precEquality             // == !=
	precComparison           // < > <= >=
	precTerm                 // + -
	precFactor               // * /
	precUnary                // ! -
	precCall                 // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

var rules [token.NumKinds]rule

// The table is populated here rather than in the var declaration because
// the handlers reach back into it through parsePrecedence.
func init() {
	rules[token.LPAREN] = rule{prefix: grouping, infix: call, prec: precCall}
	rules[token.MINUS] = rule{prefix: unary, infix: binary, prec: precTerm}
	rules[token.PLUS] = rule{infix: binary, prec: precTerm}
	rules[token.SLASH] = rule{infix: binary, prec: precFactor}
	rules[token.STAR] = rule{infix: binary, prec: precFactor}
	rules[token.BANG] = rule{prefix: unary}
	rules[token.BANGEQ] = rule{infix: binary, prec: precEquality}
	rules[token.EQEQ] = rule{infix: binary, prec: precEquality}
	rules[token.GT] = rule{infix: binary, prec: precComparison}
	rules[token.GE] = rule{infix: binary, prec: precComparison}
	rules[token.LT] = rule{infix: binary, prec: precComparison}
	rules[token.LE] = rule{infix: binary, prec: precComparison}
	rules[token.IDENT] = rule{prefix: variable}
	rules[token.STRING] = rule{prefix: stringLit}
	rules[token.NUMBER] = rule{prefix: number}
	rules[token.AND] = rule{infix: and, prec: precAnd}
	rules[token.OR] = rule{infix: or, prec: precOr}
	rules[token.FALSE] = rule{prefix: literal}
	rules[token.TRUE] = rule{prefix: literal}
	rules[token.NIL] = rule{prefix: literal}
}

func getRule(kind token.Kind) *rule { return &rules[kind] }

// parsePrecedence parses an expression at the given precedence or tighter:
// one prefix expression, then every infix operator that binds at least as
// strongly. The prefix handler is told whether an `=` here would be an
// assignment so that only valid targets accept one.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := getRule(p.previous.Kind).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Kind).prec {
		p.advance()
		getRule(p.previous.Kind).infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func number(p *parser, _ bool) {
	n, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(machine.Number(n))
}

// stringLit strips the surrounding quotes and interns the contents.
func stringLit(p *parser, _ bool) {
	lex := p.previous.Lexeme
	s := p.heap.CopyString(lex[1 : len(lex)-1])
	p.emitConstant(machine.ObjectValue(s))
}

func variable(p *parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func literal(p *parser, _ bool) {
	switch p.previous.Kind {
	case token.FALSE:
		p.emitOp(machine.FALSE)
	case token.TRUE:
		p.emitOp(machine.TRUE)
	case token.NIL:
		p.emitOp(machine.NIL)
	}
}

func unary(p *parser, _ bool) {
	op := p.previous.Kind
	p.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		p.emitOp(machine.NEGATE)
	case token.BANG:
		p.emitOp(machine.NOT)
	}
}

// binary lowers the compound comparisons to their primitive duals:
// a != b is !(a == b), a >= b is !(a < b), a <= b is !(a > b).
func binary(p *parser, _ bool) {
	op := p.previous.Kind
	p.parsePrecedence(getRule(op).prec + 1)

	switch op {
	case token.PLUS:
		p.emitOp(machine.ADD)
	case token.MINUS:
		p.emitOp(machine.SUBTRACT)
	case token.STAR:
		p.emitOp(machine.MULTIPLY)
	case token.SLASH:
		p.emitOp(machine.DIVIDE)
	case token.EQEQ:
		p.emitOp(machine.EQUAL)
	case token.BANGEQ:
		p.emitOp(machine.EQUAL)
		p.emitOp(machine.NOT)
	case token.GT:
		p.emitOp(machine.GREATER)
	case token.GE:
		p.emitOp(machine.LESS)
		p.emitOp(machine.NOT)
	case token.LT:
		p.emitOp(machine.LESS)
	case token.LE:
		p.emitOp(machine.GREATER)
		p.emitOp(machine.NOT)
	}
}

// and short-circuits: when the left operand is falsey it stays as the
// expression's value and the right operand is skipped entirely.
func and(p *parser, _ bool) {
	endJump := p.emitJump(machine.JUMPFALSE)
	p.emitOp(machine.POP)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

// or short-circuits through a falsey-jump over an unconditional jump: a
// truthy left operand keeps its value and skips the right operand.
func or(p *parser, _ bool) {
	elseJump := p.emitJump(machine.JUMPFALSE)
	endJump := p.emitJump(machine.JUMP)

	p.patchJump(elseJump)
	p.emitOp(machine.POP)
	p.parsePrecedence(precOr)

	p.patchJump(endJump)
}

func call(p *parser, _ bool) {
	argc := p.argumentList()
	p.emitOps(machine.CALL, argc)
}

func (p *parser) argumentList() byte {
	var argc int
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argc == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argc)
}

// ---- declarations and statements ----

func (p *parser) declaration() {
	switch {
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(machine.NIL)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	// a function may refer to itself by name, so it is initialized before
	// its body is compiled
	p.markInitialized()
	p.function(kindFunction)
	p.defineVariable(global)
}

// function compiles a function body in a fresh compiler context and emits
// the CLOSURE instruction with one (isLocal, index) descriptor pair per
// captured variable.
func (p *parser) function(kind funcKind) {
	var fc funcCompiler
	p.initCompiler(&fc, kind)
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.curr.function.Arity++
			if p.curr.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			param := p.parseVariable("Expect parameter name.")
			p.defineVariable(param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	fn := p.endCompiler()
	p.emitOps(machine.CLOSURE, p.makeConstant(machine.ObjectValue(fn)))
	for i := 0; i < fn.UpvalueCount; i++ {
		uv := fc.upvalues[i]
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(uv.index)
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emitOp(machine.PRINT)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emitOp(machine.POP)
}

// ifStatement pops the condition exactly once on each branch: JUMPFALSE
// leaves it on the stack, so both the then-path and the else-path start
// with a POP.
func (p *parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(machine.JUMPFALSE)
	p.emitOp(machine.POP)
	p.statement()
	elseJump := p.emitJump(machine.JUMP)

	p.patchJump(thenJump)
	p.emitOp(machine.POP)
	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := p.currentChunk().Len()
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(machine.JUMPFALSE)
	p.emitOp(machine.POP)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(machine.POP)
}

// forStatement desugars to the while primitives. The increment clause
// executes after the body, so it is emitted first and jumped over: body,
// loop to increment, increment, loop to condition.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMI):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := p.currentChunk().Len()
	exitJump := -1
	if !p.match(token.SEMI) {
		p.expression()
		p.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = p.emitJump(machine.JUMPFALSE)
		p.emitOp(machine.POP)
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(machine.JUMP)
		incrementStart := p.currentChunk().Len()
		p.expression()
		p.emitOp(machine.POP)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(machine.POP)
	}
	p.endScope()
}

func (p *parser) returnStatement() {
	if p.curr.kind == kindScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(token.SEMI) {
		p.emitReturn()
		return
	}
	p.expression()
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.emitOp(machine.RETURN)
}
