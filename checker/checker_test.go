package checker_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/checker"
	"github.com/takoeight0821/rustscript/env"
	"github.com/takoeight0821/rustscript/internal/testutil"
	"github.com/takoeight0821/rustscript/lexer"
	"github.com/takoeight0821/rustscript/parser"
	"github.com/takoeight0821/rustscript/types"
	"github.com/takoeight0821/rustscript/utils"
)

func node(kind ast.Kind, lexeme string) ast.Node {
	return ast.Node{Kind: kind, Lexeme: lexeme, Line: 1}
}

var (
	num   = node(ast.Number, "1")
	str   = node(ast.String, `"s"`)
	plus  = node(ast.Plus, "+")
	minus = node(ast.Minus, "-")
	star  = node(ast.Star, "*")
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()

	tokens, err := lexer.Lex(source)
	require.NoError(t, err)
	prog, err := parser.NewParser(tokens).Program()
	require.NoError(t, err)

	return prog
}

func check(t *testing.T, source string) (*env.Scope, []checker.Diagnostic) {
	t.Helper()

	c := checker.New(testutil.NewTestLogger(t))
	global := c.Program(parse(t, source))

	return global, c.Diagnostics()
}

func TestBinaryOperators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		expr  []ast.Node
		want  types.Type
		diags int
	}{
		{"number minus number", []ast.Node{num, minus, num}, types.Number, 0},
		{"string minus string", []ast.Node{str, minus, str}, types.String, 1},
		{"string plus string", []ast.Node{str, plus, str}, types.String, 0},
		{"number plus string", []ast.Node{num, plus, str}, types.String, 1},
		{"chain of two", []ast.Node{num, plus, num, star, num}, types.Number, 0},
		{"chain with mismatch", []ast.Node{num, plus, num, plus, str}, types.String, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checker.New(testutil.NewTestLogger(t))
			got := c.Check(tt.expr, env.NewGlobal())
			assert.Equal(t, tt.want, got)
			assert.Len(t, c.Diagnostics(), tt.diags)
		})
	}
}

func TestLetBindsInCurrentScope(t *testing.T) {
	t.Parallel()

	c := checker.New(nil)
	scope := env.NewGlobal().Child()
	typ := c.Check([]ast.Node{node(ast.Let, "let"), ast.Marker(ast.StringType, "x", 1), str}, scope)
	assert.Equal(t, types.String, typ)

	got, err := scope.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, types.String, got)

	_, err = scope.Parent().Lookup("x")
	assert.Error(t, err)
}

func TestLetRoundTrip(t *testing.T) {
	t.Parallel()

	global, diags := check(t, `let x = "hi";`)
	assert.Empty(t, diags)

	typ, err := global.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, types.String, typ)
}

func TestUndefinedVariable(t *testing.T) {
	t.Parallel()

	c := checker.New(nil)
	typ := c.Check([]ast.Node{ast.Marker(ast.NumberType, "nope", 3)}, env.NewGlobal())
	assert.Equal(t, types.Unknown, typ)

	require.Len(t, c.Diagnostics(), 1)
	d := c.Diagnostics()[0]
	assert.Equal(t, 3, d.Line)
	assert.Equal(t, "nope", d.Lexeme)
	assert.Equal(t, "at 3: `nope`, undefined variable: nope is not defined", d.Error())
}

func TestSetReportsMismatch(t *testing.T) {
	t.Parallel()

	c := checker.New(nil)
	scope := env.NewGlobal()
	scope.Define("x", types.Number)

	typ := c.Check([]ast.Node{node(ast.Set, "="), ast.Marker(ast.NumberType, "x", 1), str}, scope)
	assert.Equal(t, types.String, typ)
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, "cannot assign string to x of type number", c.Diagnostics()[0].Message)
}

func TestUnrecognizedShape(t *testing.T) {
	t.Parallel()

	c := checker.New(nil)
	assert.Equal(t, types.Unknown, c.Check([]ast.Node{node(ast.Comma, ",")}, env.NewGlobal()))
	assert.Equal(t, types.Unknown, c.Check(nil, env.NewGlobal()))
	assert.Len(t, c.Diagnostics(), 2)
}

func TestBlockScope(t *testing.T) {
	t.Parallel()

	prog := parse(t, `{ let a = 1; let b = "s"; }`)
	c := checker.New(nil)
	global := env.NewGlobal()

	assert.Equal(t, types.String, c.Check(prog.Nodes, global))
	assert.Empty(t, c.Diagnostics())

	_, err := global.Lookup("a")
	assert.Error(t, err)

	empty := []ast.Node{node(ast.LeftBrace, "{"), node(ast.RightBrace, "}")}
	assert.Equal(t, types.Unknown, c.Check(empty, global))
}

func TestStatements(t *testing.T) {
	t.Parallel()

	prog := parse(t, `fn main() {} let x = 1; if (x == 1) { } else { } class A { m() {} }`)
	stmts := checker.Statements(prog.Nodes)
	require.Len(t, stmts, 4)

	assert.Equal(t, ast.Main, stmts[0][len(stmts[0])-1].Kind)
	assert.Equal(t, ast.Let, stmts[1][0].Kind)
	assert.Equal(t, ast.If, stmts[2][0].Kind)
	assert.Equal(t, ast.RightBrace, stmts[2][len(stmts[2])-1].Kind)
	assert.Equal(t, ast.Class, stmts[3][0].Kind)
}

func TestSamplesCheckClean(t *testing.T) {
	t.Parallel()

	files, err := utils.FindSourceFiles("../testdata")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		source, err := os.ReadFile(file)
		require.NoError(t, err)

		_, diags := check(t, string(source))
		assert.Empty(t, diags, file)
	}
}

func TestProgramDiagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			"parameter types",
			`fn f(n: number) { let s = "a"; n = s; }`,
			[]string{"cannot assign string to n of type number"},
		},
		{
			"call arity",
			`fn add(a: number, b: number) {} fn main() { add(1); }`,
			[]string{"add expects 2 arguments, got 1"},
		},
		{
			"call argument type",
			`fn add(a: number, b: number) {} fn main() { add(1, "x"); }`,
			[]string{"argument b of add must be number, got string"},
		},
		{
			"print argument",
			`fn main() { print("{}", ghost); }`,
			[]string{"undefined variable: ghost is not defined"},
		},
		{
			"comparison",
			`fn main() { let a = 1; if (a == "x") { print("no"); } }`,
			[]string{"cannot compare number and string"},
		},
		{
			"long chain",
			`fn main() { let a = 1; a = a + 1 + 2 + 3 + 4; }`,
			nil,
		},
		{
			"long chain with strings",
			`fn main() { let a = 1; a = a + 1 + "s" + 2; }`,
			[]string{"mismatched types number and string", "mismatched types string and number"},
		},
		{
			"loop variable scope",
			`fn main() { for (let i = 0; i < 3; i = i + 1) { print("{}", i); } print("{}", i); }`,
			[]string{"undefined variable: i is not defined"},
		},
		{
			"else branch",
			`fn main() { let a = 1; if (a < 2) a = 3; else a = "s"; }`,
			[]string{"cannot assign string to a of type number"},
		},
		{
			"bool parameter",
			`fn f(b: bool) { b = 1; }`,
			nil,
		},
		{
			"outer binding from deep block",
			`let x = 1; fn main() { { { { x = 2; } } } }`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := check(t, tt.source)

			var got []string
			for _, d := range diags {
				got = append(got, d.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPass(t *testing.T) {
	t.Parallel()

	prog := parse(t, `fn main() { let a = 1; a = "s"; }`)
	pass := checker.NewPass(testutil.NewTestLogger(t))

	require.NoError(t, pass.Init(prog))
	out, err := pass.Run(prog)
	require.NoError(t, err)
	assert.Same(t, prog, out)
	assert.Len(t, pass.Diagnostics(), 1)

	require.NoError(t, pass.Init(prog))
	assert.Empty(t, pass.Diagnostics())
}
